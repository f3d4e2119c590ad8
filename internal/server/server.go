// Package server exposes the decision engine over a small HTTP/JSON API.
// This is the synchronous surface UI collaborators consume; the engine
// itself stays pure.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cbrunner/rentvsbuy/internal/calculator"
	"github.com/cbrunner/rentvsbuy/internal/config"
	"github.com/cbrunner/rentvsbuy/internal/params"
	"github.com/cbrunner/rentvsbuy/internal/solver"
	"github.com/cbrunner/rentvsbuy/internal/sweep"
	"github.com/cbrunner/rentvsbuy/pkg/constants"
	"go.uber.org/zap"
)

type handler struct {
	logger       *zap.Logger
	calc         *calculator.Engine
	solver       *solver.Solver
	sweeper      *sweep.Engine
	maxBodyBytes int64
	version      string
}

// NewHandler constructs the HTTP handler that serves the decision API.
func NewHandler(logger *zap.Logger, maxBodyBytes int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = constants.DefaultMaxRequestBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:       logger,
		calc:         calculator.NewEngine(logger),
		solver:       solver.New(logger),
		sweeper:      sweep.NewEngine(logger),
		maxBodyBytes: maxBodyBytes,
		version:      trimmedVersion,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/calculate", h.handleCalculate)
	mux.HandleFunc("/api/breakeven", h.handleBreakeven)
	mux.HandleFunc("/api/sweep", h.handleSweep)
	mux.HandleFunc("/api/version", h.handleVersion)
	return mux
}

type calculateRequest struct {
	Scenario config.ScenarioConfig `json:"scenario"`
}

type breakevenRequest struct {
	Scenario  config.ScenarioConfig  `json:"scenario"`
	Breakeven config.BreakevenConfig `json:"breakeven"`
}

type sweepRequest struct {
	Scenario  config.ScenarioConfig  `json:"scenario"`
	Breakeven config.BreakevenConfig `json:"breakeven"`
	Sweep     config.SweepConfig     `json:"sweep"`
}

type yearRow struct {
	Year            int     `json:"year"`
	MortgageBalance float64 `json:"mortgageBalance"`
	PropertyValue   float64 `json:"propertyValue"`
	CumBuyCost      float64 `json:"cumBuyCost"`
	CumRentCost     float64 `json:"cumRentCost"`
	Advantage       float64 `json:"advantage"`
	PortfolioEnd    float64 `json:"portfolioEnd"`
}

type bundleResponse struct {
	Decision          string    `json:"decision"`
	ResultValue       float64   `json:"resultValue"`
	TotalPurchaseCost float64   `json:"totalPurchaseCost"`
	TotalRentalCost   float64   `json:"totalRentalCost"`
	YearSeries        []yearRow `json:"yearSeries"`
	Duration          string    `json:"duration"`
}

type breakevenResponse struct {
	Price      float64        `json:"price"`
	Status     string         `json:"status"`
	Iterations int            `json:"iterations"`
	Bundle     bundleResponse `json:"bundle"`
}

type sweepAxisResponse struct {
	Field  string    `json:"field,omitempty"`
	Values []float64 `json:"values"`
}

type sweepResponse struct {
	Mode      string              `json:"mode"`
	Axes      []sweepAxisResponse `json:"axes"`
	Cells     []*float64          `json:"cells"`
	Defined   int                 `json:"defined"`
	Undefined int                 `json:"undefined"`
	Min       float64             `json:"min"`
	Max       float64             `json:"max"`
	Mean      float64             `json:"mean"`
	Cancelled bool                `json:"cancelled"`
	Duration  string              `json:"duration"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	start := time.Now()

	raw, flags := req.Scenario.RawParameters()
	canonical, err := params.Normalize(raw, flags)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.calc.Calculate(canonical)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, toBundleResponse(result, time.Since(start)))
}

func (h *handler) handleBreakeven(w http.ResponseWriter, r *http.Request) {
	var req breakevenRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	start := time.Now()

	raw, flags := req.Scenario.RawParameters()
	if raw.PurchasePrice == 0 {
		// The price is the unknown; seed the record so normalization passes.
		raw.PurchasePrice = req.Breakeven.SolverOptions().MinPrice
	}
	canonical, err := params.Normalize(raw, flags)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.solver.FindMaxBid(r.Context(), canonical, flags, req.Breakeven.SolverOptions())
	if err != nil && !errors.Is(err, solver.ErrNoBreakEven) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, breakevenResponse{
		Price:      result.Price,
		Status:     string(result.Status),
		Iterations: result.Iterations,
		Bundle:     toBundleResponse(result.Bundle, time.Since(start)),
	})
}

func (h *handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}
	start := time.Now()

	raw, flags := req.Scenario.RawParameters()
	canonical, err := params.Normalize(raw, flags)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	spec, err := req.Sweep.SweepSpec(req.Breakeven.SolverOptions())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cube, err := h.sweeper.Run(r.Context(), canonical, flags, spec, nil)
	if err != nil && !errors.Is(err, context.Canceled) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := sweepResponse{
		Mode:      string(cube.Mode),
		Cells:     cube.Cells,
		Defined:   cube.Stats.Defined,
		Undefined: cube.Stats.Undefined,
		Min:       cube.Stats.Min,
		Max:       cube.Stats.Max,
		Mean:      cube.Stats.Mean,
		Cancelled: cube.Cancelled,
		Duration:  time.Since(start).String(),
	}
	for _, axis := range cube.Axes {
		resp.Axes = append(resp.Axes, sweepAxisResponse{Field: string(axis.Field), Values: axis.Values})
	}
	h.respondJSON(w, resp)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.respondJSON(w, map[string]string{"version": h.version})
}

// decodeRequest enforces the method and body limits and decodes the JSON
// payload. A false return means a response was already written.
func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodyBytes))
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse request: %v", err))
		return false
	}
	return true
}

func toBundleResponse(result calculator.Result, duration time.Duration) bundleResponse {
	resp := bundleResponse{
		Decision:          string(result.Decision),
		ResultValue:       result.ResultValue,
		TotalPurchaseCost: result.TotalPurchaseCost,
		TotalRentalCost:   result.TotalRentalCost,
		Duration:          duration.String(),
	}
	for _, record := range result.YearSeries {
		resp.YearSeries = append(resp.YearSeries, yearRow{
			Year:            record.Year,
			MortgageBalance: record.MortgageBalance,
			PropertyValue:   record.PropertyValue,
			CumBuyCost:      record.CumBuyCost,
			CumRentCost:     record.CumRentCost,
			Advantage:       record.Advantage,
			PortfolioEnd:    record.PortfolioEnd,
		})
	}
	return resp
}

func (h *handler) respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to encode response",
			zap.String("op", "server.respondJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
