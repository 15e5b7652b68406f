package seed

import (
	"math"
	"testing"
	"time"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(Config{Seed: 7})
	b := Generate(Config{Seed: 7})

	if len(a.Regions) != len(b.Regions) || len(a.Branches) != len(b.Branches) || len(a.Observations) != len(b.Observations) {
		t.Fatalf("datasets differ in size: %d/%d/%d vs %d/%d/%d",
			len(a.Regions), len(a.Branches), len(a.Observations),
			len(b.Regions), len(b.Branches), len(b.Observations))
	}
	for i := range a.Regions {
		if a.Regions[i].Code != b.Regions[i].Code ||
			a.Regions[i].Population != b.Regions[i].Population ||
			a.Regions[i].AvgMonthlyTransactions != b.Regions[i].AvgMonthlyTransactions {
			t.Fatalf("region %d differs between runs with same seed", i)
		}
	}
	for i := range a.Observations {
		if a.Observations[i].Transactions != b.Observations[i].Transactions {
			t.Fatalf("observation %d differs between runs with same seed", i)
		}
	}
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	a := Generate(Config{Seed: 1})
	b := Generate(Config{Seed: 2})
	if a.Regions[0].Population == b.Regions[0].Population &&
		a.Regions[0].AvgMonthlyTransactions == b.Regions[0].AvgMonthlyTransactions {
		t.Fatal("expected different seeds to produce different regions")
	}
}

func TestGenerate_Defaults(t *testing.T) {
	ds := Generate(Config{})
	if len(ds.Regions) != DefaultRegions {
		t.Fatalf("regions = %d, want %d", len(ds.Regions), DefaultRegions)
	}
	if len(ds.Branches) != DefaultBranches {
		t.Fatalf("branches = %d, want %d", len(ds.Branches), DefaultBranches)
	}
	if len(ds.Observations) != DefaultRegions*DefaultMonths {
		t.Fatalf("observations = %d, want %d", len(ds.Observations), DefaultRegions*DefaultMonths)
	}
}

func TestGenerate_RegionRanges(t *testing.T) {
	ds := Generate(Config{Seed: 3})
	seenProvince := map[string]bool{}
	for _, r := range ds.Regions {
		if r.Population < 50000 || r.Population > 500000 {
			t.Fatalf("region %s population %d out of range", r.Code, r.Population)
		}
		if r.DemandScore <= 0 {
			t.Fatalf("region %s demand score %v not positive", r.Code, r.DemandScore)
		}
		want := DemandScore(r.Population, r.AvgMonthlyTransactions, r.SmallBusinessDensity)
		if math.Abs(r.DemandScore-want) > 1e-9 {
			t.Fatalf("region %s demand score %v, want %v", r.Code, r.DemandScore, want)
		}
		if r.MedianIncome < 45000 || r.MedianIncome > 95000 {
			t.Fatalf("region %s median income %d out of range", r.Code, r.MedianIncome)
		}
		if r.DigitalAdoptionRate <= 0 || r.DigitalAdoptionRate > 0.85 {
			t.Fatalf("region %s digital adoption %v out of range", r.Code, r.DigitalAdoptionRate)
		}
		if math.Abs(r.DigitalAdoptionRate+r.InBranchPreference-1) > 1e-3 {
			t.Fatalf("region %s adoption %v + preference %v != 1",
				r.Code, r.DigitalAdoptionRate, r.InBranchPreference)
		}
		lo := float64(r.Population) * 0.4
		hi := float64(r.Population) * 0.8
		if r.AvgMonthlyTransactions < lo-1 || r.AvgMonthlyTransactions > hi+1 {
			t.Fatalf("region %s avg transactions %v outside [%v, %v]",
				r.Code, r.AvgMonthlyTransactions, lo, hi)
		}
		seenProvince[r.Province] = true
	}
	for _, p := range []string{"ON", "BC", "AB", "QC"} {
		if !seenProvince[p] {
			t.Fatalf("no region generated in province %s", p)
		}
	}
}

func TestGenerate_BranchRanges(t *testing.T) {
	ds := Generate(Config{Seed: 3})
	for i, b := range ds.Branches {
		if b.StaffCount < 8 || b.StaffCount > 25 {
			t.Fatalf("branch %s staff %d out of range", b.Code, b.StaffCount)
		}
		if b.MonthlyTransactions < 3000 || b.MonthlyTransactions > 15000 {
			t.Fatalf("branch %s transactions %v out of range", b.Code, b.MonthlyTransactions)
		}
		if b.OpenedYear < 1995 || b.OpenedYear > 2020 {
			t.Fatalf("branch %s opened %d out of range", b.Code, b.OpenedYear)
		}
		switch b.BranchType {
		case "Full Service", "Express", "Flagship":
		default:
			t.Fatalf("branch %s has unknown type %q", b.Code, b.BranchType)
		}

		region := ds.Regions[ds.BranchRegion[i]]
		if b.Province != region.Province {
			t.Fatalf("branch %s province %q, region has %q", b.Code, b.Province, region.Province)
		}
		if b.City != region.Name {
			t.Fatalf("branch %s city %q, want %q", b.Code, b.City, region.Name)
		}
		extent := provinceExtents[b.Province]
		if b.Latitude < extent.LatMin || b.Latitude > extent.LatMax {
			t.Fatalf("branch %s latitude %v outside %s extent", b.Code, b.Latitude, b.Province)
		}
		if b.Longitude < extent.LonMin || b.Longitude > extent.LonMax {
			t.Fatalf("branch %s longitude %v outside %s extent", b.Code, b.Longitude, b.Province)
		}
	}
}

func TestGenerate_SeriesCalendar(t *testing.T) {
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	ds := Generate(Config{Seed: 3, Regions: 2, Branches: 4, Months: 14, Start: start})

	perRegion := map[int][]time.Time{}
	for i, o := range ds.Observations {
		perRegion[ds.ObservationRegion[i]] = append(perRegion[ds.ObservationRegion[i]], o.Month)
		if o.Month.Day() != 1 {
			t.Fatalf("observation month %v not first-of-month", o.Month)
		}
		if o.Transactions <= 0 {
			t.Fatalf("observation transactions %v not positive", o.Transactions)
		}
	}
	for regionIdx, months := range perRegion {
		if len(months) != 14 {
			t.Fatalf("region %d has %d months, want 14", regionIdx, len(months))
		}
		for i, m := range months {
			want := start.AddDate(0, i, 0)
			if !m.Equal(want) {
				t.Fatalf("region %d month %d = %v, want %v", regionIdx, i, m, want)
			}
		}
		// Crossing a year boundary must land on Feb 1, not a 30-day offset.
		if !months[13].Equal(time.Date(2022, time.February, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("month 13 = %v, want 2022-02-01", months[13])
		}
	}
}

func TestSeasonalMultiplier(t *testing.T) {
	cases := map[time.Month]float64{
		time.November: 1.15,
		time.December: 1.15,
		time.January:  0.90,
		time.February: 0.90,
		time.June:     1.05,
		time.July:     1.05,
		time.August:   1.05,
		time.March:    1.0,
		time.October:  1.0,
	}
	for m, want := range cases {
		if got := seasonalMultiplier(m); got != want {
			t.Fatalf("seasonalMultiplier(%v) = %v, want %v", m, got, want)
		}
	}
}
