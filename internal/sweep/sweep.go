// Package sweep enumerates Cartesian parameter grids and evaluates the
// decision engine or the max-bid solver at every grid point, producing a
// dense result cube with summary statistics.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cbrunner/rentvsbuy/internal/calculator"
	"github.com/cbrunner/rentvsbuy/internal/params"
	"github.com/cbrunner/rentvsbuy/internal/solver"
	"github.com/cbrunner/rentvsbuy/pkg/constants"
	"go.uber.org/zap"
)

// Mode selects what each grid cell computes.
type Mode string

const (
	// ModeDecision stores the signed result value of a single evaluation.
	ModeDecision Mode = "decision"

	// ModeMaxBid stores the break-even purchase price per cell.
	ModeMaxBid Mode = "maxbid"
)

// Axis describes one swept parameter dimension with inclusive endpoints.
type Axis struct {
	Field Field
	Min   float64
	Max   float64
	Step  float64
}

// Spec describes a full sweep.
type Spec struct {
	Axes   []Axis
	Mode   Mode
	Solver solver.Options
}

// ProgressFunc receives sweep progress as (completed, total) cell counts.
type ProgressFunc func(completed, total int)

// AxisValues is a resolved axis: the field plus its enumerated values.
type AxisValues struct {
	Field  Field
	Values []float64
}

// Cube is the dense sweep result. Cells are stored in row-major order over
// exactly three axes; sweeps with fewer axes are padded with unit axes so
// indexing stays uniform. A nil cell is undefined (e.g. a failed max-bid
// search).
type Cube struct {
	Axes      [constants.MaxSweepAxes]AxisValues
	Cells     []*float64
	Mode      Mode
	Cancelled bool
	Stats     Stats
}

// Stats summarizes the defined cells of a cube.
type Stats struct {
	Min       float64
	Max       float64
	Mean      float64
	Defined   int
	Undefined int
}

// At returns the cell at the given axis indexes.
func (c *Cube) At(i, j, k int) *float64 {
	nj := len(c.Axes[1].Values)
	nk := len(c.Axes[2].Values)
	return c.Cells[(i*nj+j)*nk+k]
}

// Engine runs sweeps. Cells are independent pure evaluations; the engine
// carries no state across runs.
type Engine struct {
	logger *zap.Logger
	calc   *calculator.Engine
	solver *solver.Solver
}

// NewEngine creates a sweep engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger: logger,
		calc:   calculator.NewEngine(logger),
		solver: solver.New(logger),
	}
}

// Run evaluates the grid. Cancellation is checked between cells; a cancelled
// run returns the partial cube with Cancelled set alongside the context
// error. Already-computed cells of a cancelled cube are identical to those of
// an uncancelled run.
func (e *Engine) Run(ctx context.Context, base params.Canonical, flags params.AutoFlags, spec Spec, onProgress ProgressFunc) (*Cube, error) {
	if len(spec.Axes) < 1 || len(spec.Axes) > constants.MaxSweepAxes {
		return nil, fmt.Errorf("sweep requires between 1 and %d axes, got %d", constants.MaxSweepAxes, len(spec.Axes))
	}
	if spec.Mode != ModeDecision && spec.Mode != ModeMaxBid {
		return nil, fmt.Errorf("unknown sweep mode %q", spec.Mode)
	}

	cube := &Cube{Mode: spec.Mode}
	total := 1
	for i := 0; i < constants.MaxSweepAxes; i++ {
		if i < len(spec.Axes) {
			axis := spec.Axes[i]
			if spec.Mode == ModeMaxBid && axis.Field == FieldPurchasePrice {
				return nil, fmt.Errorf("axis %s cannot be swept in max-bid mode", axis.Field)
			}
			values, err := enumerate(axis)
			if err != nil {
				return nil, err
			}
			cube.Axes[i] = AxisValues{Field: axis.Field, Values: values}
		} else {
			// Unit axis keeps the cube three-dimensional.
			cube.Axes[i] = AxisValues{Values: []float64{0}}
		}
		total *= len(cube.Axes[i].Values)
	}

	cube.Cells = make([]*float64, 0, total)
	completed := 0
	sinceProgress := 0

	for _, vi := range cube.Axes[0].Values {
		for _, vj := range cube.Axes[1].Values {
			for _, vk := range cube.Axes[2].Values {
				if err := ctx.Err(); err != nil {
					cube.Cancelled = true
					cube.Stats = summarize(cube.Cells)
					if onProgress != nil {
						onProgress(completed, total)
					}
					return cube, err
				}

				record := base
				applyAxis(&record, cube.Axes[0].Field, vi)
				applyAxis(&record, cube.Axes[1].Field, vj)
				applyAxis(&record, cube.Axes[2].Field, vk)

				cube.Cells = append(cube.Cells, e.evaluateCell(ctx, record, flags, spec))
				completed++
				sinceProgress++
				if onProgress != nil && (sinceProgress >= constants.ProgressInterval || completed == total) {
					onProgress(completed, total)
					sinceProgress = 0
				}
			}
		}
	}

	cube.Stats = summarize(cube.Cells)
	e.logger.Debug("sweep complete",
		zap.String("op", "sweep.Run"),
		zap.Int("cells", total),
		zap.Int("undefined", cube.Stats.Undefined),
	)
	return cube, nil
}

// evaluateCell computes one grid point. Failed cells become undefined rather
// than aborting the sweep.
func (e *Engine) evaluateCell(ctx context.Context, record params.Canonical, flags params.AutoFlags, spec Spec) *float64 {
	switch spec.Mode {
	case ModeMaxBid:
		result, err := e.solver.FindMaxBid(ctx, record, flags, spec.Solver)
		if err != nil {
			if !errors.Is(err, solver.ErrNoBreakEven) {
				e.logger.Debug("max-bid cell failed",
					zap.String("op", "sweep.evaluateCell"),
					zap.Error(err),
				)
			}
			return nil
		}
		price := result.Price
		return &price
	default:
		normalized, err := params.Renormalize(record, flags)
		if err != nil {
			return nil
		}
		bundle, err := e.calc.Calculate(normalized)
		if err != nil {
			return nil
		}
		value := bundle.ResultValue
		return &value
	}
}

// enumerate expands an axis into its inclusive value list. Values are
// computed as min + i*step to avoid accumulating float error.
func enumerate(axis Axis) ([]float64, error) {
	if axis.Step <= 0 {
		return nil, fmt.Errorf("axis %s: step must be positive", axis.Field)
	}
	if axis.Max < axis.Min {
		return nil, fmt.Errorf("axis %s: max %v below min %v", axis.Field, axis.Max, axis.Min)
	}
	count := int((axis.Max-axis.Min)/axis.Step+1e-9) + 1
	values := make([]float64, count)
	for i := range values {
		values[i] = axis.Min + float64(i)*axis.Step
	}
	// Snap the endpoint so float accumulation cannot push it past max.
	if math.Abs(values[count-1]-axis.Max) < axis.Step*1e-6 {
		values[count-1] = axis.Max
	}
	return values, nil
}

func summarize(cells []*float64) Stats {
	var stats Stats
	sum := 0.0
	for _, cell := range cells {
		if cell == nil {
			stats.Undefined++
			continue
		}
		if stats.Defined == 0 || *cell < stats.Min {
			stats.Min = *cell
		}
		if stats.Defined == 0 || *cell > stats.Max {
			stats.Max = *cell
		}
		sum += *cell
		stats.Defined++
	}
	if stats.Defined > 0 {
		stats.Mean = sum / float64(stats.Defined)
	}
	return stats
}
