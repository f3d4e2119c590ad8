package solver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cbrunner/rentvsbuy/internal/params"
	"github.com/cbrunner/rentvsbuy/pkg/constants"
)

func solverBase(t *testing.T) params.Canonical {
	t.Helper()
	raw := params.DefaultRaw()
	raw.PurchasePrice = 1000000 // placeholder, replaced per probe
	raw.MonthlyRent = 4500
	raw.MortgageRatePct = 2.0
	raw.PropertyAppreciationPct = 1.5
	raw.InvestmentYieldPct = 3.8
	raw.MarginalTaxRatePct = 27
	raw.TermYears = 12
	raw.AmortizationYears = 15
	c, err := params.Normalize(raw, params.AllAuto())
	if err != nil {
		t.Fatalf("Normalize() returned error: %v", err)
	}
	return c
}

func TestFindMaxBidConverges(t *testing.T) {
	s := New(nil)
	result, err := s.FindMaxBid(context.Background(), solverBase(t), params.AllAuto(), DefaultOptions())
	if err != nil {
		if errors.Is(err, ErrNoBreakEven) {
			t.Skipf("scenario has no break-even in the default range: best probe %v", result.Price)
		}
		t.Fatalf("FindMaxBid() returned error: %v", err)
	}

	if result.Price < constants.DefaultSolverMinPrice || result.Price > constants.DefaultSolverMaxPrice {
		t.Errorf("price %v outside search range", result.Price)
	}
	if math.Abs(result.Bundle.ResultValue) > constants.DefaultSolverTolerance {
		t.Errorf("result value %v exceeds tolerance at returned price", result.Bundle.ResultValue)
	}
}

func TestFindMaxBidRescalesDerivations(t *testing.T) {
	s := New(nil)
	result, err := s.FindMaxBid(context.Background(), solverBase(t), params.AllAuto(), DefaultOptions())
	if err != nil && !errors.Is(err, ErrNoBreakEven) {
		t.Fatalf("FindMaxBid() returned error: %v", err)
	}

	// The bundle at the returned price must reflect derivations scaled to
	// that price, not frozen at their original values.
	record := solverBase(t)
	record.PurchasePrice = result.Price
	record, nErr := params.Renormalize(record, params.AllAuto())
	if nErr != nil {
		t.Fatalf("Renormalize() returned error: %v", nErr)
	}

	wantMaintenance := math.Round(constants.MaintenanceShare * result.Price)
	if record.AnnualMaintenanceCosts != wantMaintenance {
		t.Errorf("maintenance at P* = %v, expected %v", record.AnnualMaintenanceCosts, wantMaintenance)
	}
	wantDown := math.Round(constants.DownPaymentShare * result.Price)
	if record.DownPayment != wantDown {
		t.Errorf("down payment at P* = %v, expected %v", record.DownPayment, wantDown)
	}
}

func TestFindMaxBidNoBreakEven(t *testing.T) {
	// Free rent with heavy ownership costs: renting wins at every price.
	base := solverBase(t)
	base.MonthlyRent = 0
	base.ImputedRentalValue = 0
	base.AnnualRentalCosts = 0

	s := New(nil)
	result, err := s.FindMaxBid(context.Background(), base, params.AutoFlags{DownPayment: true, Amortization: true, Maintenance: true}, DefaultOptions())
	if !errors.Is(err, ErrNoBreakEven) {
		t.Fatalf("expected ErrNoBreakEven, got %v", err)
	}
	if result.Status != StatusNoBreakEven {
		t.Errorf("status = %s, expected %s", result.Status, StatusNoBreakEven)
	}
	if result.Price != constants.DefaultSolverMaxPrice {
		t.Errorf("best-effort price = %v, expected the upper bound", result.Price)
	}
}

func TestFindMaxBidInvalidRange(t *testing.T) {
	s := New(nil)
	opts := DefaultOptions()
	opts.MinPrice = 500000
	opts.MaxPrice = 400000
	if _, err := s.FindMaxBid(context.Background(), solverBase(t), params.AllAuto(), opts); err == nil {
		t.Fatal("FindMaxBid() accepted an inverted range")
	}
}

func TestFindMaxBidCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(nil)
	_, err := s.FindMaxBid(ctx, solverBase(t), params.AllAuto(), DefaultOptions())
	if err == nil {
		t.Skip("search converged before the first cancellation check")
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrNoBreakEven) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
