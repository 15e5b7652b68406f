package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type RegionService interface {
	List(dbc dbctx.Context) ([]*types.Region, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Region, error)
	ListBranches(dbc dbctx.Context, regionCode string) ([]*types.Branch, error)
}

type regionService struct {
	db       *gorm.DB
	log      *logger.Logger
	regions  repos.RegionRepo
	branches repos.BranchRepo
}

func NewRegionService(db *gorm.DB, baseLog *logger.Logger, regions repos.RegionRepo, branches repos.BranchRepo) RegionService {
	return &regionService{
		db:       db,
		log:      baseLog.With("service", "RegionService"),
		regions:  regions,
		branches: branches,
	}
}

func (s *regionService) List(dbc dbctx.Context) ([]*types.Region, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	return s.regions.List(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction})
}

func (s *regionService) GetByCode(dbc dbctx.Context, code string) (*types.Region, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("missing region code: %w", errs.ErrInvalidArgument)
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	region, err := s.regions.GetByCode(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, code)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, fmt.Errorf("region %s: %w", code, errs.ErrNotFound)
	}
	return region, nil
}

func (s *regionService) ListBranches(dbc dbctx.Context, regionCode string) ([]*types.Branch, error) {
	region, err := s.GetByCode(dbc, regionCode)
	if err != nil {
		return nil, err
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	return s.branches.ListByRegionID(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, region.ID)
}
