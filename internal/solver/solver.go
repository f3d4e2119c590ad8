// Package solver finds the break-even purchase price: the price at which
// buying and renting yield equal net horizon cost. It bisects on the price
// and re-runs parameter normalization at every probe so that auto-derived
// quantities scale with the probed price.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cbrunner/rentvsbuy/internal/calculator"
	"github.com/cbrunner/rentvsbuy/internal/params"
	"github.com/cbrunner/rentvsbuy/pkg/constants"
	"go.uber.org/zap"
)

// ErrNoBreakEven indicates the result value never crosses zero inside the
// search range. The accompanying Result still carries the best-effort probe.
var ErrNoBreakEven = errors.New("no break-even price in search range")

// Status reports how a search ended.
type Status string

const (
	StatusConverged      Status = "converged"
	StatusRangeExhausted Status = "range-exhausted"
	StatusMaxIterations  Status = "max-iterations"
	StatusNoBreakEven    Status = "no-break-even"
	StatusCancelled      Status = "cancelled"
)

// Options bound the bisection search.
type Options struct {
	MinPrice      float64
	MaxPrice      float64
	Tolerance     float64
	MaxIterations int
}

// DefaultOptions returns the standing search bounds.
func DefaultOptions() Options {
	return Options{
		MinPrice:      constants.DefaultSolverMinPrice,
		MaxPrice:      constants.DefaultSolverMaxPrice,
		Tolerance:     constants.DefaultSolverTolerance,
		MaxIterations: constants.DefaultSolverMaxIterations,
	}
}

// Result is the outcome of a max-bid search.
type Result struct {
	Price      float64
	Bundle     calculator.Result
	Status     Status
	Iterations int
}

// Solver wraps the normalizer and calculator in a bisection loop.
type Solver struct {
	logger *zap.Logger
	engine *calculator.Engine
}

// New creates a solver.
func New(logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{logger: logger, engine: calculator.NewEngine(logger)}
}

type probe struct {
	price  float64
	bundle calculator.Result
}

// FindMaxBid searches for the purchase price at which the result value is
// zero. The base record supplies every parameter except the price; flags
// control which derived fields are rescaled per probe. The returned result is
// always the probe with the smallest absolute result value seen, which keeps
// the answer stable under mild non-monotonicity.
func (s *Solver) FindMaxBid(ctx context.Context, base params.Canonical, flags params.AutoFlags, opts Options) (Result, error) {
	if opts.MinPrice <= 0 || opts.MaxPrice <= opts.MinPrice {
		return Result{}, fmt.Errorf("invalid search range [%v, %v]", opts.MinPrice, opts.MaxPrice)
	}
	if opts.Tolerance < constants.TieTolerance {
		opts.Tolerance = constants.TieTolerance
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = constants.DefaultSolverMaxIterations
	}

	lower, err := s.evaluate(base, flags, opts.MinPrice)
	if err != nil {
		return Result{}, err
	}
	upper, err := s.evaluate(base, flags, opts.MaxPrice)
	if err != nil {
		return Result{}, err
	}

	best := lower
	if math.Abs(upper.bundle.ResultValue) < math.Abs(best.bundle.ResultValue) {
		best = upper
	}
	if math.Abs(best.bundle.ResultValue) <= opts.Tolerance {
		return Result{Price: best.price, Bundle: best.bundle, Status: StatusConverged}, nil
	}

	// The result value is expected to be non-increasing in price: a positive
	// value at the lower bound and a negative one at the upper bound bracket
	// the break-even. Matching signs mean no crossing in range.
	if sameSign(lower.bundle.ResultValue, upper.bundle.ResultValue) {
		s.logger.Debug("result value does not cross zero in range",
			zap.String("op", "solver.FindMaxBid"),
			zap.Float64("lowerResult", lower.bundle.ResultValue),
			zap.Float64("upperResult", upper.bundle.ResultValue),
		)
		return Result{
			Price:  upper.price,
			Bundle: upper.bundle,
			Status: StatusNoBreakEven,
		}, ErrNoBreakEven
	}

	lo, hi := opts.MinPrice, opts.MaxPrice
	iterations := 0
	for iterations < opts.MaxIterations && hi-lo > 1 {
		if err := ctx.Err(); err != nil {
			return Result{Price: best.price, Bundle: best.bundle, Status: StatusCancelled, Iterations: iterations}, err
		}

		mid := lo + (hi-lo)/2
		current, err := s.evaluate(base, flags, mid)
		if err != nil {
			return Result{}, err
		}
		iterations++

		if math.Abs(current.bundle.ResultValue) < math.Abs(best.bundle.ResultValue) {
			best = current
		}
		if math.Abs(current.bundle.ResultValue) <= opts.Tolerance {
			return Result{Price: best.price, Bundle: best.bundle, Status: StatusConverged, Iterations: iterations}, nil
		}

		if current.bundle.ResultValue > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	status := StatusRangeExhausted
	if iterations >= opts.MaxIterations {
		status = StatusMaxIterations
	}
	return Result{Price: best.price, Bundle: best.bundle, Status: status, Iterations: iterations}, nil
}

// evaluate probes one price: set it, re-derive the dependent parameters, and
// run the calculator.
func (s *Solver) evaluate(base params.Canonical, flags params.AutoFlags, price float64) (probe, error) {
	record := base
	record.PurchasePrice = price
	record, err := params.Renormalize(record, flags)
	if err != nil {
		return probe{}, fmt.Errorf("probe at price %v: %w", price, err)
	}
	bundle, err := s.engine.Calculate(record)
	if err != nil {
		return probe{}, fmt.Errorf("probe at price %v: %w", price, err)
	}
	return probe{price: record.PurchasePrice, bundle: bundle}, nil
}

func sameSign(a, b float64) bool {
	return (a >= 0) == (b >= 0)
}
