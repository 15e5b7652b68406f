package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

const (
	DefaultSeed     = 42
	DefaultRegions  = 24
	DefaultBranches = 60
	DefaultMonths   = 36
)

// defaultStart is the first observed month of the synthetic series.
var defaultStart = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// Config controls the synthetic dataset. Zero values fall back to the
// defaults above, so Config{} seeds the standard demo network.
type Config struct {
	Seed     int64
	Regions  int
	Branches int
	Months   int
	Start    time.Time

	// Reset wipes existing network and series rows before inserting. Without
	// it, seeding a non-empty database fails.
	Reset bool
}

func (c Config) withDefaults() Config {
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Regions <= 0 {
		c.Regions = DefaultRegions
	}
	if c.Branches <= 0 {
		c.Branches = DefaultBranches
	}
	if c.Months <= 0 {
		c.Months = DefaultMonths
	}
	if c.Start.IsZero() {
		c.Start = defaultStart
	}
	return c
}

// Dataset is a generated network before persistence. Observations reference
// regions positionally; RegionID is stamped after the region insert returns
// generated ids.
type Dataset struct {
	Regions      []*types.Region
	Branches     []*types.Branch
	Observations []*types.MonthlyObservation

	// BranchRegion and ObservationRegion map each row to its region's index
	// in Regions.
	BranchRegion      []int
	ObservationRegion []int
}

// regionSites are the place names the generator draws from, grouped by
// province. 24 entries so the default config uses each exactly once.
var regionSites = []struct {
	Name     string
	Province string
}{
	{"Toronto Central", "ON"},
	{"Scarborough", "ON"},
	{"Mississauga", "ON"},
	{"Ottawa Valley", "ON"},
	{"Hamilton-Niagara", "ON"},
	{"London-Middlesex", "ON"},
	{"Kitchener-Waterloo", "ON"},
	{"Kingston-Frontenac", "ON"},
	{"Vancouver Downtown", "BC"},
	{"Burnaby-New Westminster", "BC"},
	{"Surrey-Delta", "BC"},
	{"Richmond", "BC"},
	{"Victoria-Saanich", "BC"},
	{"Kelowna-Okanagan", "BC"},
	{"Calgary Centre", "AB"},
	{"Calgary Northeast", "AB"},
	{"Edmonton Downtown", "AB"},
	{"Edmonton Mill Woods", "AB"},
	{"Red Deer", "AB"},
	{"Lethbridge", "AB"},
	{"Montreal Ville-Marie", "QC"},
	{"Laval", "QC"},
	{"Quebec City", "QC"},
	{"Gatineau", "QC"},
}

// provinceExtents bound the coordinates branches are scattered across,
// one box per province's main urban corridor.
var provinceExtents = map[string]struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}{
	"ON": {43.0, 45.5, -79.5, -75.5},
	"BC": {49.0, 49.3, -123.2, -122.8},
	"AB": {51.0, 51.1, -114.2, -113.9},
	"QC": {45.4, 45.6, -73.8, -73.5},
}

// DemandScore is the composite priority used for branch placement and
// pipeline ordering. Kept exported so tests and callers can recompute it.
func DemandScore(population int, avgMonthlyTransactions float64, smallBusinessDensity int) float64 {
	return float64(population)/100000*0.4 +
		avgMonthlyTransactions/100000*0.3 +
		float64(smallBusinessDensity)/500*0.3
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func round6(v float64) float64 { return math.Round(v*1000000) / 1000000 }

func seasonalMultiplier(m time.Month) float64 {
	switch m {
	case time.November, time.December:
		return 1.15
	case time.January, time.February:
		return 0.90
	case time.June, time.July, time.August:
		return 1.05
	default:
		return 1.0
	}
}

// Generate builds the full synthetic dataset. Same config, same dataset.
func Generate(cfg Config) *Dataset {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	ds := &Dataset{}

	for i := 0; i < cfg.Regions; i++ {
		site := regionSites[i%len(regionSites)]
		name := site.Name
		if i >= len(regionSites) {
			name = fmt.Sprintf("%s %d", site.Name, i/len(regionSites)+1)
		}

		population := 50000 + rng.Intn(450001)
		medianIncome := 45000 + rng.Intn(50001)
		smallBiz := 100 + rng.Intn(1901)
		avgTx := math.Floor(float64(population) * (0.4 + rng.Float64()*0.4))

		// Digital adoption tracks income, capped; in-branch preference is
		// its complement.
		digital := float64(medianIncome)/100000*0.7 + 0.15 + rng.Float64()*0.10
		if digital > 0.85 {
			digital = 0.85
		}
		digital = round3(digital)

		ds.Regions = append(ds.Regions, &types.Region{
			Code:                   fmt.Sprintf("RG%03d", i+1),
			Name:                   name,
			Province:               site.Province,
			Population:             population,
			MedianIncome:           medianIncome,
			DigitalAdoptionRate:    digital,
			InBranchPreference:     round3(1 - digital),
			SmallBusinessDensity:   smallBiz,
			AvgMonthlyTransactions: avgTx,
			DemandScore:            DemandScore(population, avgTx, smallBiz),
		})
	}

	// Branch placement favors high-demand regions.
	totalDemand := 0.0
	for _, r := range ds.Regions {
		totalDemand += r.DemandScore
	}
	for i := 0; i < cfg.Branches; i++ {
		regionIdx := len(ds.Regions) - 1
		pick := rng.Float64() * totalDemand
		acc := 0.0
		for j, r := range ds.Regions {
			acc += r.DemandScore
			if pick < acc {
				regionIdx = j
				break
			}
		}

		branchType := types.BranchTypeFullService
		switch roll := rng.Float64(); {
		case roll < 0.7:
			branchType = types.BranchTypeFullService
		case roll < 0.9:
			branchType = types.BranchTypeExpress
		default:
			branchType = types.BranchTypeFlagship
		}

		region := ds.Regions[regionIdx]
		extent := provinceExtents[region.Province]
		ds.Branches = append(ds.Branches, &types.Branch{
			Code:                fmt.Sprintf("B%04d", i+1),
			Name:                fmt.Sprintf("%s Branch %d", region.Name, i+1),
			City:                region.Name,
			Province:            region.Province,
			Latitude:            round6(extent.LatMin + rng.Float64()*(extent.LatMax-extent.LatMin)),
			Longitude:           round6(extent.LonMin + rng.Float64()*(extent.LonMax-extent.LonMin)),
			BranchType:          branchType,
			StaffCount:          8 + rng.Intn(18),
			MonthlyTransactions: 3000 + rng.Float64()*12000,
			OpenedYear:          1995 + rng.Intn(26),
		})
		ds.BranchRegion = append(ds.BranchRegion, regionIdx)
	}

	// Monthly series: region base demand with a gentle upward trend, fixed
	// seasonal shape, and uniform noise.
	for regionIdx, r := range ds.Regions {
		for i := 0; i < cfg.Months; i++ {
			month := cfg.Start.AddDate(0, i, 0)
			growth := 1 + (float64(i)/float64(cfg.Months))*0.06
			noise := 0.95 + rng.Float64()*0.1
			tx := r.AvgMonthlyTransactions * growth * seasonalMultiplier(month.Month()) * noise

			ds.Observations = append(ds.Observations, &types.MonthlyObservation{
				Month:        month,
				Transactions: tx,
			})
			ds.ObservationRegion = append(ds.ObservationRegion, regionIdx)
		}
	}

	return ds
}

// Seeder persists generated datasets.
type Seeder struct {
	db           *gorm.DB
	log          *logger.Logger
	regions      repos.RegionRepo
	branches     repos.BranchRepo
	observations repos.MonthlyObservationRepo
}

func NewSeeder(
	db *gorm.DB,
	baseLog *logger.Logger,
	regions repos.RegionRepo,
	branches repos.BranchRepo,
	observations repos.MonthlyObservationRepo,
) *Seeder {
	return &Seeder{
		db:           db,
		log:          baseLog.With("service", "Seeder"),
		regions:      regions,
		branches:     branches,
		observations: observations,
	}
}

// Seed generates and inserts the dataset in one transaction. Returns the
// dataset with database ids stamped onto every row.
func (s *Seeder) Seed(dbc dbctx.Context, cfg Config) (*Dataset, error) {
	cfg = cfg.withDefaults()
	ds := Generate(cfg)

	err := s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		existing, err := s.regions.List(txc)
		if err != nil {
			return fmt.Errorf("list regions: %w", err)
		}
		if len(existing) > 0 {
			if !cfg.Reset {
				return fmt.Errorf("database already seeded (%d regions); pass reset to replace: %w", len(existing), errs.ErrConflict)
			}
			for _, table := range []string{
				"forecast_point", "region_forecast", "coverage_snapshot",
				"expansion_recommendation", "monthly_observation", "branch", "region",
			} {
				if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
					return fmt.Errorf("reset %s: %w", table, err)
				}
			}
		}

		inserted, err := s.regions.Create(txc, ds.Regions)
		if err != nil {
			return fmt.Errorf("insert regions: %w", err)
		}
		ds.Regions = inserted

		for i, b := range ds.Branches {
			b.RegionID = ds.Regions[ds.BranchRegion[i]].ID
		}
		if len(ds.Branches) > 0 {
			if ds.Branches, err = s.branches.Create(txc, ds.Branches); err != nil {
				return fmt.Errorf("insert branches: %w", err)
			}
		}

		for i, o := range ds.Observations {
			o.RegionID = ds.Regions[ds.ObservationRegion[i]].ID
		}
		if len(ds.Observations) > 0 {
			if ds.Observations, err = s.observations.UpsertMany(txc, ds.Observations); err != nil {
				return fmt.Errorf("insert observations: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Seeded synthetic network",
		"regions", len(ds.Regions),
		"branches", len(ds.Branches),
		"observations", len(ds.Observations),
	)
	return ds, nil
}
