package format

import "testing"

func TestCondensePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"Millions with two decimals", 1380000, "1.38M"},
		{"Thousands", 786000, "786k"},
		{"Small integer", 500, "500"},
		{"Whole millions", 15000000, "15M"},
		{"Millions quarter", 1250000, "1.25M"},
		{"Exactly one million", 1000000, "1M"},
		{"Exactly one thousand", 1000, "1k"},
		{"Thousands with decimal", 1500, "1.5k"},
		{"Zero", 0, "0"},
		{"Negative millions", -2500000, "-2.5M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CondensePrice(tt.input)
			if result != tt.expected {
				t.Errorf("CondensePrice(%v) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"Plain", 1234.56, "1,234.56"},
		{"Negative", -1234.56, "-1,234.56"},
		{"No separator needed", 999.9, "999.90"},
		{"Millions", 1500000, "1,500,000.00"},
		{"Zero", 0, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Currency(tt.input)
			if result != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
