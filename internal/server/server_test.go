package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(nil, 0, "test"))
	t.Cleanup(srv.Close)
	return srv
}

const scenarioJSON = `{
	"scenario": {
		"purchasePrice": 1500000,
		"monthlyRent": 4000,
		"mortgageRate": 2.0,
		"propertyAppreciationRate": 1.8,
		"investmentYieldRate": 3.5,
		"marginalTaxRate": 28,
		"termYears": 10,
		"amortizationYears": 15,
		"additionalPurchaseCosts": 5000,
		"propertyTaxDeductions": 13000,
		"annualRentalCosts": 20000,
		"auto": {
			"downPayment": true,
			"amortization": true,
			"maintenance": true,
			"imputedRental": true
		}
	}
}`

func TestHandleCalculate(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/calculate", "application/json", strings.NewReader(scenarioJSON))
	if err != nil {
		t.Fatalf("POST /api/calculate failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}

	var payload struct {
		Decision    string  `json:"decision"`
		ResultValue float64 `json:"resultValue"`
		YearSeries  []struct {
			Year int `json:"year"`
		} `json:"yearSeries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Decision != "BUY" && payload.Decision != "RENT" && payload.Decision != "TIE" {
		t.Errorf("decision = %q", payload.Decision)
	}
	if len(payload.YearSeries) != 10 {
		t.Errorf("year series length = %d, expected 10", len(payload.YearSeries))
	}
}

func TestHandleCalculateRejectsInvalidParameters(t *testing.T) {
	srv := newTestServer(t)

	body := strings.Replace(scenarioJSON, `"purchasePrice": 1500000`, `"purchasePrice": -1`, 1)
	resp, err := http.Post(srv.URL+"/api/calculate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/calculate failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(payload["error"], "purchasePrice") {
		t.Errorf("error message %q does not name the field", payload["error"])
	}
}

func TestHandleCalculateMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/calculate")
	if err != nil {
		t.Fatalf("GET /api/calculate failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, expected 405", resp.StatusCode)
	}
}

func TestHandleBreakeven(t *testing.T) {
	srv := newTestServer(t)

	body := strings.TrimSuffix(scenarioJSON, "}") + `, "breakeven": {"minPrice": 100000, "maxPrice": 10000000, "tolerance": 1000}}`
	resp, err := http.Post(srv.URL+"/api/breakeven", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/breakeven failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}
	var payload struct {
		Price  float64 `json:"price"`
		Status string  `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Price <= 0 {
		t.Errorf("price = %v, expected positive", payload.Price)
	}
	if payload.Status == "" {
		t.Error("status missing from response")
	}
}

func TestHandleSweep(t *testing.T) {
	srv := newTestServer(t)

	body := strings.TrimSuffix(scenarioJSON, "}") + `, "sweep": {
		"mode": "decision",
		"axes": [
			{"field": "mortgageRate", "min": 1, "max": 3, "step": 1},
			{"field": "monthlyRent", "min": 3000, "max": 5000, "step": 1000}
		]
	}}`
	resp, err := http.Post(srv.URL+"/api/sweep", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/sweep failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}
	var payload struct {
		Cells   []*float64 `json:"cells"`
		Defined int        `json:"defined"`
		Axes    []struct {
			Field  string    `json:"field"`
			Values []float64 `json:"values"`
		} `json:"axes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Cells) != 9 {
		t.Errorf("cells = %d, expected 9", len(payload.Cells))
	}
	if payload.Defined != 9 {
		t.Errorf("defined = %d, expected 9", payload.Defined)
	}
	if len(payload.Axes) != 3 {
		t.Errorf("axes = %d, expected padded 3", len(payload.Axes))
	}
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/version")
	if err != nil {
		t.Fatalf("GET /api/version failed: %v", err)
	}
	defer resp.Body.Close()

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["version"] != "test" {
		t.Errorf("version = %q, expected test", payload["version"])
	}
}
