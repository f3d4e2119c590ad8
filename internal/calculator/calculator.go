// Package calculator implements the year-by-year rent-vs-buy cash-flow model.
// Given a canonical parameter record it produces a verdict, aggregate costs,
// an itemized cost decomposition, and a year series suitable for charting.
package calculator

import (
	"fmt"
	"math"

	"github.com/cbrunner/rentvsbuy/internal/params"
	"github.com/cbrunner/rentvsbuy/pkg/constants"
	"go.uber.org/zap"
)

// Decision is the verdict of a rent-vs-buy evaluation.
type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionRent Decision = "RENT"
	DecisionTie  Decision = "TIE"
)

// YearRecord captures the state of both scenarios at the end of one year.
// CumBuyCost and CumRentCost are net costs through that year: cash paid in so
// far minus the equity or after-tax portfolio gain recoverable at that point.
type YearRecord struct {
	Year            int
	MortgageBalance float64
	PropertyValue   float64
	CumBuyCost      float64
	CumRentCost     float64
	Advantage       float64
	PortfolioEnd    float64
}

// Itemized breaks the aggregate costs into their components.
type Itemized struct {
	TotalInterest           float64
	TotalAmortization       float64
	TotalMaintenance        float64
	TotalTaxImpact          float64
	AdditionalPurchaseCosts float64
	TotalRenovations        float64
	TerminalEquity          float64
	TotalRentPaid           float64
	TotalRentalAncillary    float64
	PortfolioGain           float64
	PortfolioTax            float64
}

// Result is the bundle produced by a single evaluation.
type Result struct {
	Decision          Decision
	ResultValue       float64
	TotalPurchaseCost float64
	TotalRentalCost   float64
	YearSeries        []YearRecord
	Itemized          Itemized
}

// Engine evaluates canonical parameter records. It holds no state between
// calls; every evaluation is a pure function of its record.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a calculation engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Calculate runs the year-by-year model over the full horizon.
func (e *Engine) Calculate(c params.Canonical) (Result, error) {
	if c.TermYears < 1 {
		return Result{}, fmt.Errorf("calculate: term must cover at least one year, got %d", c.TermYears)
	}

	balance := c.PurchasePrice - c.DownPayment
	annualRent := constants.MonthsPerYear*c.MonthlyRent + c.AnnualRentalCosts
	initialCapital := c.DownPayment + c.AdditionalPurchaseCosts

	portfolio := initialCapital
	basis := initialCapital

	var itemized Itemized
	itemized.AdditionalPurchaseCosts = c.AdditionalPurchaseCosts
	itemized.TotalRenovations = c.TotalRenovations

	ownerCashOut := 0.0
	renterCashOut := 0.0
	series := make([]YearRecord, 0, c.TermYears)

	for year := 1; year <= c.TermYears; year++ {
		interest := balance * c.MortgageRate
		amortization := math.Min(c.AnnualAmortization, balance)
		balance -= amortization

		// Imputed rental income net of deductible interest, maintenance, and
		// the flat deduction. A positive adjustment raises the owner's tax.
		taxAdjustment := c.ImputedRentalValue - interest - c.AnnualMaintenanceCosts - c.PropertyTaxDeductions
		taxImpact := c.MarginalTaxRate * taxAdjustment

		ownerOutlay := interest + amortization + c.AnnualMaintenanceCosts + taxImpact
		ownerCashOut += ownerOutlay
		renterCashOut += annualRent

		// The renter reinvests the owner's excess outlay; the renter never
		// withdraws when the owner pays less.
		if delta := ownerOutlay - annualRent; delta > 0 {
			portfolio += delta
			basis += delta
		}
		portfolio *= 1 + c.InvestmentYieldRate
		if portfolio < 0 {
			portfolio = 0
		}

		propertyValue := c.PurchasePrice * math.Pow(1+c.PropertyAppreciationRate, float64(year))
		if propertyValue < 0 {
			propertyValue = 0
		}

		itemized.TotalInterest += interest
		itemized.TotalAmortization += amortization
		itemized.TotalMaintenance += c.AnnualMaintenanceCosts
		itemized.TotalTaxImpact += taxImpact

		cumBuy := ownerCashOut + c.AdditionalPurchaseCosts + c.TotalRenovations -
			(propertyValue - balance) - c.DownPayment
		cumRent := renterCashOut - afterTaxGain(portfolio, basis, c.MarginalTaxRate)

		series = append(series, YearRecord{
			Year:            year,
			MortgageBalance: balance,
			PropertyValue:   propertyValue,
			CumBuyCost:      cumBuy,
			CumRentCost:     cumRent,
			Advantage:       cumRent - cumBuy,
			PortfolioEnd:    portfolio,
		})
	}

	final := series[len(series)-1]
	itemized.TerminalEquity = final.PropertyValue - final.MortgageBalance
	itemized.TotalRentPaid = float64(c.TermYears) * constants.MonthsPerYear * c.MonthlyRent
	itemized.TotalRentalAncillary = float64(c.TermYears) * c.AnnualRentalCosts
	itemized.PortfolioGain = portfolio - basis
	if itemized.PortfolioGain > 0 {
		itemized.PortfolioTax = c.MarginalTaxRate * itemized.PortfolioGain
	}

	result := Result{
		TotalPurchaseCost: final.CumBuyCost,
		TotalRentalCost:   final.CumRentCost,
		ResultValue:       final.CumRentCost - final.CumBuyCost,
		YearSeries:        series,
		Itemized:          itemized,
	}
	result.Decision = decide(result.ResultValue)

	e.logger.Debug("evaluated rent-vs-buy scenario",
		zap.String("op", "calculator.Calculate"),
		zap.Float64("purchasePrice", c.PurchasePrice),
		zap.Float64("resultValue", result.ResultValue),
		zap.String("decision", string(result.Decision)),
	)

	return result, nil
}

// afterTaxGain returns the realized portfolio gain net of the capital gains
// tax applied at the horizon. Losses are not offset by tax.
func afterTaxGain(portfolio, basis, taxRate float64) float64 {
	gain := portfolio - basis
	if gain > 0 {
		gain -= taxRate * gain
	}
	return gain
}

func decide(resultValue float64) Decision {
	switch {
	case math.Abs(resultValue) < constants.TieTolerance:
		return DecisionTie
	case resultValue > 0:
		return DecisionBuy
	default:
		return DecisionRent
	}
}
