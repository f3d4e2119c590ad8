// Package constants provides shared constants for the rent-vs-buy decision
// engine.
package constants

// Policy constants. These encode the Swiss financing and tax conventions the
// auto-derivation rules rest on; they are implementation constants, not user
// parameters.
const (
	// DownPaymentShare is the regulatory minimum share of the purchase price
	// paid up front.
	DownPaymentShare = 0.20

	// FinancedShare is the share of the purchase price financed through the
	// mortgage; the second-tier portion of it must be amortized.
	FinancedShare = 0.80

	// MaintenanceShare is the annual maintenance cost as a share of the
	// purchase price.
	MaintenanceShare = 0.0125

	// ImputedRentalShare is the share of the annual market rent treated as
	// taxable imputed rental income for the owner.
	ImputedRentalShare = 0.65
)

// Parameter defaults
const (
	// DefaultAdditionalPurchaseCosts covers notary and transfer fees.
	DefaultAdditionalPurchaseCosts = 5000.0

	// DefaultPropertyTaxDeductions is the flat deductible component of the
	// owner's taxable income adjustment.
	DefaultPropertyTaxDeductions = 13000.0

	// DefaultAnnualRentalCosts is the renter's annual ancillary cost.
	DefaultAnnualRentalCosts = 20000.0
)

// Solver defaults
const (
	// DefaultSolverMinPrice is the lower bound of the max-bid search range.
	DefaultSolverMinPrice = 100000.0

	// DefaultSolverMaxPrice is the upper bound of the max-bid search range.
	DefaultSolverMaxPrice = 10000000.0

	// DefaultSolverTolerance is the convergence tolerance on the result
	// value, in currency units.
	DefaultSolverTolerance = 1000.0

	// DefaultSolverMaxIterations caps the bisection loop.
	DefaultSolverMaxIterations = 200
)

// Calculation constants
const (
	// MonthsPerYear is the number of months in a year.
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions.
	PercentageMultiplier = 100.0

	// TieTolerance is the absolute result value below which the verdict is a
	// tie rather than a buy or rent decision.
	TieTolerance = 1.0

	// CurrencyTolerance is the tolerance for currency comparisons.
	CurrencyTolerance = 0.01
)

// Sweep constants
const (
	// ProgressInterval is the maximum number of sweep cells between progress
	// callback invocations.
	ProgressInterval = 100

	// MaxSweepAxes is the dimensionality cap of the sweep grid.
	MaxSweepAxes = 3
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// SnapshotVersion is the version tag written into settings snapshots.
	SnapshotVersion = "1"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestBytes is the default maximum request body size (256 KB)
	DefaultMaxRequestBytes int64 = 256 * 1024
)
