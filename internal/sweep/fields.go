package sweep

import (
	"fmt"
	"math"

	"github.com/cbrunner/rentvsbuy/internal/params"
)

// Field names a sweepable parameter. The set is a closed enumeration with an
// explicit setter per field; axes never assign through reflection.
type Field string

const (
	FieldPurchasePrice            Field = "purchasePrice"
	FieldMonthlyRent              Field = "monthlyRent"
	FieldMortgageRate             Field = "mortgageRate"
	FieldPropertyAppreciationRate Field = "propertyAppreciationRate"
	FieldInvestmentYieldRate      Field = "investmentYieldRate"
	FieldMarginalTaxRate          Field = "marginalTaxRate"
	FieldTermYears                Field = "termYears"
	FieldAmortizationYears        Field = "amortizationYears"
	FieldAnnualRentalCosts        Field = "annualRentalCosts"
)

var setters = map[Field]func(*params.Canonical, float64){
	FieldPurchasePrice:            func(c *params.Canonical, v float64) { c.PurchasePrice = v },
	FieldMonthlyRent:              func(c *params.Canonical, v float64) { c.MonthlyRent = v },
	FieldMortgageRate:             func(c *params.Canonical, v float64) { c.MortgageRate = v },
	FieldPropertyAppreciationRate: func(c *params.Canonical, v float64) { c.PropertyAppreciationRate = v },
	FieldInvestmentYieldRate:      func(c *params.Canonical, v float64) { c.InvestmentYieldRate = v },
	FieldMarginalTaxRate:          func(c *params.Canonical, v float64) { c.MarginalTaxRate = v },
	FieldTermYears:                func(c *params.Canonical, v float64) { c.TermYears = int(math.Round(v)) },
	FieldAmortizationYears:        func(c *params.Canonical, v float64) { c.AmortizationYears = int(math.Round(v)) },
	FieldAnnualRentalCosts:        func(c *params.Canonical, v float64) { c.AnnualRentalCosts = v },
}

// RateFields lists the fields whose axis values arrive as percentages from
// the outer surface and are converted to fractions at the config boundary.
var RateFields = map[Field]bool{
	FieldMortgageRate:             true,
	FieldPropertyAppreciationRate: true,
	FieldInvestmentYieldRate:      true,
	FieldMarginalTaxRate:          true,
}

// ParseField resolves a field name to its canonical Field value.
func ParseField(name string) (Field, error) {
	field := Field(name)
	if _, ok := setters[field]; !ok {
		return "", fmt.Errorf("field %q is not sweepable", name)
	}
	return field, nil
}

// applyAxis sets the field on the record. An empty field (unit axis) is a
// no-op.
func applyAxis(c *params.Canonical, field Field, value float64) {
	if field == "" {
		return
	}
	if set, ok := setters[field]; ok {
		set(c, value)
	}
}
