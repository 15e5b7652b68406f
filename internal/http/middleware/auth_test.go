package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

func newAuthRouter(t *testing.T, secret string) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	authService := services.NewAuthService(log, secret)
	am := NewAuthMiddleware(log, authService)
	r := gin.New()
	r.POST("/guarded", am.RequireServiceToken(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString("service_subject")})
	})
	return r, authService
}

func TestRequireServiceToken_MissingToken(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "false")
	r, _ := newAuthRouter(t, "test-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestRequireServiceToken_ValidToken(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "false")
	r, authService := newAuthRouter(t, "test-secret")

	token, err := authService.IssueToken("probe", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRequireServiceToken_WrongSecret(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "false")
	r, _ := newAuthRouter(t, "test-secret")

	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	other := services.NewAuthService(log, "other-secret")
	token, err := other.IssueToken("probe", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token signed with another secret, got %d", w.Code)
	}
}

func TestRequireServiceToken_AuthDisabled(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "true")
	r, _ := newAuthRouter(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with AUTH_DISABLED, got %d", w.Code)
	}
}
