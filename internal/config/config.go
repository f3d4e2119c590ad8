// Package config defines the data structures related to configuration and
// includes functions for loading and converting the config.
package config

import (
	"fmt"

	"github.com/cbrunner/rentvsbuy/internal/params"
	"github.com/cbrunner/rentvsbuy/internal/solver"
	"github.com/cbrunner/rentvsbuy/internal/sweep"
	"github.com/cbrunner/rentvsbuy/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for rentvsbuy.
type Configuration struct {
	Scenario  ScenarioConfig  `yaml:"scenario"`
	Breakeven BreakevenConfig `yaml:"breakeven,omitempty"`
	Sweep     SweepConfig     `yaml:"sweep,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Recorder  RecorderConfig  `yaml:"recorder,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// RecorderConfig holds run-history persistence options.
type RecorderConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// ServerConfig holds the HTTP API options.
type ServerConfig struct {
	Address         string `yaml:"address,omitempty"`
	MaxRequestBytes int64  `yaml:"maxRequestBytes,omitempty"`
}

// ScenarioConfig carries the raw parameter set as entered by the user. Rates
// are percentages; conversion to fractions happens in the normalizer.
type ScenarioConfig struct {
	PurchasePrice            float64    `yaml:"purchasePrice"`
	DownPayment              float64    `yaml:"downPayment,omitempty"`
	MortgageRate             float64    `yaml:"mortgageRate"`
	MonthlyRent              float64    `yaml:"monthlyRent"`
	PropertyAppreciationRate float64    `yaml:"propertyAppreciationRate,omitempty"`
	InvestmentYieldRate      float64    `yaml:"investmentYieldRate,omitempty"`
	MarginalTaxRate          float64    `yaml:"marginalTaxRate,omitempty"`
	TermYears                int        `yaml:"termYears"`
	AmortizationYears        int        `yaml:"amortizationYears"`
	AnnualMaintenanceCosts   float64    `yaml:"annualMaintenanceCosts,omitempty"`
	AnnualAmortization       float64    `yaml:"annualAmortization,omitempty"`
	ImputedRentalValue       float64    `yaml:"imputedRentalValue,omitempty"`
	TotalRenovations         float64    `yaml:"totalRenovations,omitempty"`
	AdditionalPurchaseCosts  float64    `yaml:"additionalPurchaseCosts,omitempty"`
	PropertyTaxDeductions    float64    `yaml:"propertyTaxDeductions,omitempty"`
	AnnualRentalCosts        float64    `yaml:"annualRentalCosts,omitempty"`
	Auto                     AutoConfig `yaml:"auto,omitempty"`
}

// AutoConfig mirrors params.AutoFlags in the configuration file.
type AutoConfig struct {
	DownPayment   bool `yaml:"downPayment"`
	Amortization  bool `yaml:"amortization"`
	Maintenance   bool `yaml:"maintenance"`
	ImputedRental bool `yaml:"imputedRental"`
}

// BreakevenConfig bounds the max-bid search.
type BreakevenConfig struct {
	MinPrice      float64 `yaml:"minPrice,omitempty"`
	MaxPrice      float64 `yaml:"maxPrice,omitempty"`
	Tolerance     float64 `yaml:"tolerance,omitempty"`
	MaxIterations int     `yaml:"maxIterations,omitempty"`
}

// SweepConfig describes the parameter grid. Rate axes are given in percent.
type SweepConfig struct {
	Mode string       `yaml:"mode,omitempty"` // decision, maxbid
	Axes []AxisConfig `yaml:"axes,omitempty"`
}

// AxisConfig is one swept dimension.
type AxisConfig struct {
	Field string  `yaml:"field"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Step  float64 `yaml:"step"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	v.SetDefault("scenario.additionalPurchaseCosts", constants.DefaultAdditionalPurchaseCosts)
	v.SetDefault("scenario.propertyTaxDeductions", constants.DefaultPropertyTaxDeductions)
	v.SetDefault("scenario.annualRentalCosts", constants.DefaultAnnualRentalCosts)
	v.SetDefault("scenario.auto.downPayment", true)
	v.SetDefault("scenario.auto.amortization", true)
	v.SetDefault("scenario.auto.maintenance", true)
	v.SetDefault("scenario.auto.imputedRental", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// RawParameters converts the scenario section into the normalizer's raw
// record and auto flags.
func (s ScenarioConfig) RawParameters() (params.Raw, params.AutoFlags) {
	raw := params.Raw{
		PurchasePrice:           s.PurchasePrice,
		DownPayment:             s.DownPayment,
		MortgageRatePct:         s.MortgageRate,
		MonthlyRent:             s.MonthlyRent,
		PropertyAppreciationPct: s.PropertyAppreciationRate,
		InvestmentYieldPct:      s.InvestmentYieldRate,
		MarginalTaxRatePct:      s.MarginalTaxRate,
		TermYears:               s.TermYears,
		AmortizationYears:       s.AmortizationYears,
		AnnualMaintenanceCosts:  s.AnnualMaintenanceCosts,
		AnnualAmortization:      s.AnnualAmortization,
		ImputedRentalValue:      s.ImputedRentalValue,
		TotalRenovations:        s.TotalRenovations,
		AdditionalPurchaseCosts: s.AdditionalPurchaseCosts,
		PropertyTaxDeductions:   s.PropertyTaxDeductions,
		AnnualRentalCosts:       s.AnnualRentalCosts,
	}
	flags := params.AutoFlags{
		DownPayment:   s.Auto.DownPayment,
		Amortization:  s.Auto.Amortization,
		Maintenance:   s.Auto.Maintenance,
		ImputedRental: s.Auto.ImputedRental,
	}
	return raw, flags
}

// SolverOptions converts the breakeven section, falling back to the standing
// defaults for unset fields.
func (b BreakevenConfig) SolverOptions() solver.Options {
	opts := solver.DefaultOptions()
	if b.MinPrice > 0 {
		opts.MinPrice = b.MinPrice
	}
	if b.MaxPrice > 0 {
		opts.MaxPrice = b.MaxPrice
	}
	if b.Tolerance > 0 {
		opts.Tolerance = b.Tolerance
	}
	if b.MaxIterations > 0 {
		opts.MaxIterations = b.MaxIterations
	}
	return opts
}

// SweepSpec converts the sweep section into an engine spec. Rate axes arrive
// in percent and are converted to fractions here, at the boundary.
func (sc SweepConfig) SweepSpec(solverOpts solver.Options) (sweep.Spec, error) {
	mode := sweep.Mode(sc.Mode)
	if sc.Mode == "" {
		mode = sweep.ModeDecision
	}

	spec := sweep.Spec{Mode: mode, Solver: solverOpts}
	for _, axis := range sc.Axes {
		field, err := sweep.ParseField(axis.Field)
		if err != nil {
			return sweep.Spec{}, err
		}
		min, max, step := axis.Min, axis.Max, axis.Step
		if sweep.RateFields[field] {
			min /= constants.PercentageMultiplier
			max /= constants.PercentageMultiplier
			step /= constants.PercentageMultiplier
		}
		spec.Axes = append(spec.Axes, sweep.Axis{Field: field, Min: min, Max: max, Step: step})
	}
	return spec, nil
}
