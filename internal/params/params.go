// Package params defines the rent-vs-buy parameter records and the
// normalization rules that derive dependent parameters from a minimal user
// input.
package params

import (
	"github.com/cbrunner/rentvsbuy/pkg/constants"
	"github.com/cbrunner/rentvsbuy/pkg/mathutil"
)

// AutoFlags selects which dependent fields the normalizer derives. A disabled
// flag means the user-supplied value is taken as-is.
type AutoFlags struct {
	DownPayment   bool
	Amortization  bool
	Maintenance   bool
	ImputedRental bool
}

// AllAuto returns flags with every auto-derivation enabled.
func AllAuto() AutoFlags {
	return AutoFlags{
		DownPayment:   true,
		Amortization:  true,
		Maintenance:   true,
		ImputedRental: true,
	}
}

// Raw is the parameter set as entered at the outer surface. Rates are
// percentages; the normalizer converts them to fractions exactly once.
type Raw struct {
	PurchasePrice           float64
	DownPayment             float64
	MortgageRatePct         float64
	MonthlyRent             float64
	PropertyAppreciationPct float64
	InvestmentYieldPct      float64
	MarginalTaxRatePct      float64
	TermYears               int
	AmortizationYears       int
	AnnualMaintenanceCosts  float64
	AnnualAmortization      float64
	ImputedRentalValue      float64
	TotalRenovations        float64
	AdditionalPurchaseCosts float64
	PropertyTaxDeductions   float64
	AnnualRentalCosts       float64
}

// DefaultRaw returns a raw record prefilled with the standing defaults for
// the fields that carry one.
func DefaultRaw() Raw {
	return Raw{
		AdditionalPurchaseCosts: constants.DefaultAdditionalPurchaseCosts,
		PropertyTaxDeductions:   constants.DefaultPropertyTaxDeductions,
		AnnualRentalCosts:       constants.DefaultAnnualRentalCosts,
	}
}

// Canonical is a validated, fully-filled parameter record. All rates are
// fractions and all auto-derived fields have been computed.
type Canonical struct {
	PurchasePrice            float64
	DownPayment              float64
	MortgageRate             float64
	MonthlyRent              float64
	PropertyAppreciationRate float64
	InvestmentYieldRate      float64
	MarginalTaxRate          float64
	TermYears                int
	AmortizationYears        int
	AnnualMaintenanceCosts   float64
	AnnualAmortization       float64
	ImputedRentalValue       float64
	TotalRenovations         float64
	AdditionalPurchaseCosts  float64
	PropertyTaxDeductions    float64
	AnnualRentalCosts        float64
}

// Normalize converts a raw record into a canonical one: percent rates become
// fractions, auto-derived fields are computed in their fixed order, and all
// invariants are checked.
func Normalize(raw Raw, flags AutoFlags) (Canonical, error) {
	c := Canonical{
		PurchasePrice:            raw.PurchasePrice,
		DownPayment:              raw.DownPayment,
		MortgageRate:             raw.MortgageRatePct / constants.PercentageMultiplier,
		MonthlyRent:              raw.MonthlyRent,
		PropertyAppreciationRate: raw.PropertyAppreciationPct / constants.PercentageMultiplier,
		InvestmentYieldRate:      raw.InvestmentYieldPct / constants.PercentageMultiplier,
		MarginalTaxRate:          raw.MarginalTaxRatePct / constants.PercentageMultiplier,
		TermYears:                raw.TermYears,
		AmortizationYears:        raw.AmortizationYears,
		AnnualMaintenanceCosts:   raw.AnnualMaintenanceCosts,
		AnnualAmortization:       raw.AnnualAmortization,
		ImputedRentalValue:       raw.ImputedRentalValue,
		TotalRenovations:         raw.TotalRenovations,
		AdditionalPurchaseCosts:  raw.AdditionalPurchaseCosts,
		PropertyTaxDeductions:    raw.PropertyTaxDeductions,
		AnnualRentalCosts:        raw.AnnualRentalCosts,
	}
	return Renormalize(c, flags)
}

// Renormalize re-applies the auto-derivation rules and invariant checks on an
// already-canonical record. Rates are not rescaled, so the operation is an
// identity for a record whose derived fields are current. The max-bid solver
// relies on this to rescale derived fields at every price probe.
func Renormalize(c Canonical, flags AutoFlags) (Canonical, error) {
	if err := validateBase(c); err != nil {
		return Canonical{}, err
	}

	// Derivation order: down payment, amortization, maintenance, imputed
	// rental. Each rule rounds to the nearest whole unit.
	if flags.DownPayment {
		c.DownPayment = mathutil.RoundUnit(constants.DownPaymentShare * c.PurchasePrice)
	}
	if flags.Amortization {
		c.AnnualAmortization = mathutil.RoundUnit(constants.FinancedShare * c.PurchasePrice / float64(c.AmortizationYears))
	}
	if flags.Maintenance {
		c.AnnualMaintenanceCosts = mathutil.RoundUnit(constants.MaintenanceShare * c.PurchasePrice)
	}
	if flags.ImputedRental {
		c.ImputedRentalValue = mathutil.RoundUnit(constants.MonthsPerYear * c.MonthlyRent * constants.ImputedRentalShare)
	}

	if err := validateDerived(c); err != nil {
		return Canonical{}, err
	}
	return c, nil
}

func validateBase(c Canonical) error {
	if !mathutil.IsFinite(c.PurchasePrice) || c.PurchasePrice <= 0 {
		return &ValidationError{Field: "purchasePrice", Message: "must be a positive amount"}
	}
	if c.TermYears < 1 {
		return &ValidationError{Field: "termYears", Message: "must be at least 1"}
	}
	if c.AmortizationYears < 1 {
		return &ValidationError{Field: "amortizationYears", Message: "must be at least 1"}
	}
	if !mathutil.IsFinite(c.MonthlyRent) || c.MonthlyRent < 0 {
		return &ValidationError{Field: "monthlyRent", Message: "must be zero or positive"}
	}
	for _, rate := range []struct {
		field string
		value float64
	}{
		{"mortgageRate", c.MortgageRate},
		{"propertyAppreciationRate", c.PropertyAppreciationRate},
		{"investmentYieldRate", c.InvestmentYieldRate},
		{"marginalTaxRate", c.MarginalTaxRate},
	} {
		if !mathutil.IsFinite(rate.value) {
			return &ValidationError{Field: rate.field, Message: "must be finite"}
		}
	}
	if c.MarginalTaxRate < 0 || c.MarginalTaxRate >= 1 {
		return &ValidationError{Field: "marginalTaxRate", Message: "must be in [0, 1)"}
	}
	for _, amount := range []struct {
		field string
		value float64
	}{
		{"totalRenovations", c.TotalRenovations},
		{"additionalPurchaseCosts", c.AdditionalPurchaseCosts},
		{"propertyTaxDeductions", c.PropertyTaxDeductions},
		{"annualRentalCosts", c.AnnualRentalCosts},
	} {
		if !mathutil.IsFinite(amount.value) || amount.value < 0 {
			return &ValidationError{Field: amount.field, Message: "must be zero or positive"}
		}
	}
	return nil
}

func validateDerived(c Canonical) error {
	if c.DownPayment < 0 || c.DownPayment > c.PurchasePrice {
		return &ValidationError{Field: "downPayment", Message: "must be between 0 and the purchase price"}
	}
	if c.AnnualAmortization < 0 {
		return &ValidationError{Field: "annualAmortization", Message: "must be zero or positive"}
	}
	if c.AnnualMaintenanceCosts < 0 {
		return &ValidationError{Field: "annualMaintenanceCosts", Message: "must be zero or positive"}
	}
	if c.ImputedRentalValue < 0 {
		return &ValidationError{Field: "imputedRentalValue", Message: "must be zero or positive"}
	}
	return nil
}
