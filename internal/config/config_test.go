package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cbrunner/rentvsbuy/internal/sweep"
	"github.com/cbrunner/rentvsbuy/pkg/constants"
)

const sampleConfig = `
scenario:
  purchasePrice: 1500000
  monthlyRent: 4000
  mortgageRate: 2.0
  propertyAppreciationRate: 1.8
  investmentYieldRate: 3.5
  marginalTaxRate: 28
  termYears: 10
  amortizationYears: 15
breakeven:
  minPrice: 200000
  maxPrice: 5000000
sweep:
  mode: maxbid
  axes:
    - field: propertyAppreciationRate
      min: 0
      max: 2
      step: 1
    - field: monthlyRent
      min: 3000
      max: 5000
      step: 500
logging:
  level: debug
  format: console
output:
  format: csv
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() returned error: %v", err)
	}

	if conf.Scenario.PurchasePrice != 1500000 {
		t.Errorf("purchase price = %v, expected 1500000", conf.Scenario.PurchasePrice)
	}
	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("logging config = %+v", conf.Logging)
	}
	if conf.Output.Format != constants.OutputFormatCSV {
		t.Errorf("output format = %s, expected csv", conf.Output.Format)
	}
	// Defaults applied for unset fields.
	if conf.Scenario.AdditionalPurchaseCosts != constants.DefaultAdditionalPurchaseCosts {
		t.Errorf("additional purchase costs = %v, expected default", conf.Scenario.AdditionalPurchaseCosts)
	}
	if !conf.Scenario.Auto.DownPayment || !conf.Scenario.Auto.ImputedRental {
		t.Errorf("auto flags not defaulted on: %+v", conf.Scenario.Auto)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfiguration() succeeded on a missing file")
	}
}

func TestScenarioRawParameters(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() returned error: %v", err)
	}

	raw, flags := conf.Scenario.RawParameters()
	if raw.MortgageRatePct != 2.0 {
		t.Errorf("raw mortgage rate = %v, expected percent value 2.0", raw.MortgageRatePct)
	}
	if raw.TermYears != 10 || raw.AmortizationYears != 15 {
		t.Errorf("term/amortization = %d/%d", raw.TermYears, raw.AmortizationYears)
	}
	if !flags.DownPayment || !flags.Amortization || !flags.Maintenance || !flags.ImputedRental {
		t.Errorf("flags = %+v, expected all auto", flags)
	}
}

func TestSweepSpecConvertsRateAxes(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() returned error: %v", err)
	}

	spec, err := conf.Sweep.SweepSpec(conf.Breakeven.SolverOptions())
	if err != nil {
		t.Fatalf("SweepSpec() returned error: %v", err)
	}
	if spec.Mode != sweep.ModeMaxBid {
		t.Errorf("mode = %s, expected maxbid", spec.Mode)
	}
	if len(spec.Axes) != 2 {
		t.Fatalf("axes = %d, expected 2", len(spec.Axes))
	}
	// Rate axis converted from percent to fraction.
	if spec.Axes[0].Max != 0.02 {
		t.Errorf("rate axis max = %v, expected 0.02", spec.Axes[0].Max)
	}
	// Monetary axis untouched.
	if spec.Axes[1].Max != 5000 {
		t.Errorf("rent axis max = %v, expected 5000", spec.Axes[1].Max)
	}
	if spec.Solver.MinPrice != 200000 || spec.Solver.MaxPrice != 5000000 {
		t.Errorf("solver bounds = [%v, %v]", spec.Solver.MinPrice, spec.Solver.MaxPrice)
	}
}

func TestSweepSpecRejectsUnknownField(t *testing.T) {
	sc := SweepConfig{Axes: []AxisConfig{{Field: "shoeSize", Min: 0, Max: 1, Step: 1}}}
	if _, err := sc.SweepSpec(BreakevenConfig{}.SolverOptions()); err == nil {
		t.Fatal("SweepSpec() accepted an unknown field")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	conf, err := LoadConfiguration(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() returned error: %v", err)
	}

	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	snapshot := NewSnapshot(conf, now)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := SaveSnapshot(path, snapshot); err != nil {
		t.Fatalf("SaveSnapshot() returned error: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot() returned error: %v", err)
	}
	if loaded.Version != constants.SnapshotVersion {
		t.Errorf("version = %s, expected %s", loaded.Version, constants.SnapshotVersion)
	}
	if loaded.SavedAt != "2026-08-24T12:00:00Z" {
		t.Errorf("savedAt = %s", loaded.SavedAt)
	}
	if loaded.Single != conf.Scenario {
		t.Errorf("single section did not round-trip: %+v", loaded.Single)
	}
	if len(loaded.Sweep.Axes) != 2 {
		t.Errorf("sweep axes did not round-trip: %+v", loaded.Sweep)
	}
}

func TestLoadSnapshotMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("savedAt: now\n"), 0644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Fatal("LoadSnapshot() accepted a snapshot without a version")
	}
}
