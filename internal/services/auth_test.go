package services

import (
	"errors"
	"testing"
	"time"

	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
)

func TestAuthService_RoundTrip(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), "test-secret")

	token, err := svc.IssueToken("reporting-job", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	subject, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if subject != "reporting-job" {
		t.Fatalf("subject = %q, want reporting-job", subject)
	}
}

func TestAuthService_WrongSecret(t *testing.T) {
	issuer := NewAuthService(testutil.Logger(t), "secret-a")
	verifier := NewAuthService(testutil.Logger(t), "secret-b")

	token, err := issuer.IssueToken("svc", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := verifier.ValidateToken(token); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("ValidateToken with wrong secret: err = %v, want ErrUnauthorized", err)
	}
}

func TestAuthService_ExpiredToken(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), "test-secret")

	token, err := svc.IssueToken("svc", time.Millisecond)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := svc.ValidateToken(token); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("ValidateToken expired: err = %v, want ErrUnauthorized", err)
	}
}

func TestAuthService_Garbage(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), "test-secret")
	if _, err := svc.ValidateToken("not-a-jwt"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("ValidateToken garbage: err = %v, want ErrUnauthorized", err)
	}
}

func TestAuthService_NoSecret(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), "")
	if _, err := svc.IssueToken("svc", time.Hour); err == nil {
		t.Fatal("expected IssueToken to fail without a secret")
	}
	if _, err := svc.ValidateToken("anything"); err == nil {
		t.Fatal("expected ValidateToken to fail without a secret")
	}
}
