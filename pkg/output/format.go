// Package output provides utilities for formatting and displaying evaluation
// results and sweep cubes.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/cbrunner/rentvsbuy/internal/calculator"
	"github.com/cbrunner/rentvsbuy/internal/sweep"
	"github.com/cbrunner/rentvsbuy/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table of
// the evaluation.
func PrettyFormat(w io.Writer, result calculator.Result) {
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "--- Decision: %s ---\n", result.Decision)
	_, _ = p.Fprintf(w, "Advantage of buying: %.2f\n", result.ResultValue)
	_, _ = p.Fprintf(w, "Total purchase cost: %.2f\n", result.TotalPurchaseCost)
	_, _ = p.Fprintf(w, "Total rental cost:   %.2f\n", result.TotalRentalCost)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Year | Mortgage      | Property      | Cum. buy      | Cum. rent     | Advantage     | Portfolio\n")
	fmt.Fprintf(w, "____ | _____________ | _____________ | _____________ | _____________ | _____________ | _____________\n")
	for _, record := range result.YearSeries {
		fmt.Fprintf(w, "%4d | %13s | %13s | %13s | %13s | %13s | %13s\n",
			record.Year,
			format.Currency(record.MortgageBalance),
			format.Currency(record.PropertyValue),
			format.Currency(record.CumBuyCost),
			format.Currency(record.CumRentCost),
			format.Currency(record.Advantage),
			format.Currency(record.PortfolioEnd),
		)
	}

	fmt.Fprintf(w, "\nCost components:\n")
	items := []struct {
		label string
		value float64
	}{
		{"interest", result.Itemized.TotalInterest},
		{"amortization", result.Itemized.TotalAmortization},
		{"maintenance", result.Itemized.TotalMaintenance},
		{"tax impact", result.Itemized.TotalTaxImpact},
		{"purchase costs", result.Itemized.AdditionalPurchaseCosts},
		{"renovations", result.Itemized.TotalRenovations},
		{"terminal equity", result.Itemized.TerminalEquity},
		{"rent paid", result.Itemized.TotalRentPaid},
		{"rental ancillary", result.Itemized.TotalRentalAncillary},
		{"portfolio gain", result.Itemized.PortfolioGain},
		{"portfolio tax", result.Itemized.PortfolioTax},
	}
	for _, item := range items {
		fmt.Fprintf(w, "  %-16s %15s\n", item.label, format.Currency(item.value))
	}
}

// CsvFormat writes the year series in comma-separated value format.
func CsvFormat(w io.Writer, result calculator.Result) {
	fmt.Fprintf(w, `"year","mortgageBalance","propertyValue","cumBuyCost","cumRentCost","advantage","portfolioEnd"`)
	fmt.Fprintf(w, "\n")
	for _, record := range result.YearSeries {
		fmt.Fprintf(w, `"%d","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`,
			record.Year,
			record.MortgageBalance,
			record.PropertyValue,
			record.CumBuyCost,
			record.CumRentCost,
			record.Advantage,
			record.PortfolioEnd,
		)
		fmt.Fprintf(w, "\n")
	}
}

// SweepPrettyFormat writes the cube as a flat table with condensed values and
// summary statistics.
func SweepPrettyFormat(w io.Writer, cube *sweep.Cube) {
	fmt.Fprintf(w, "--- Sweep results (%s mode) ---\n", cube.Mode)
	fmt.Fprintf(w, "%s\n", axisHeader(cube))
	for i, vi := range cube.Axes[0].Values {
		for j, vj := range cube.Axes[1].Values {
			for k, vk := range cube.Axes[2].Values {
				cell := cube.At(i, j, k)
				value := "-"
				if cell != nil {
					value = format.CondensePrice(*cell)
				}
				fmt.Fprintf(w, "%s%s\n", axisPrefix(cube, vi, vj, vk), value)
			}
		}
	}

	fmt.Fprintf(w, "\nDefined cells: %d, undefined: %d\n", cube.Stats.Defined, cube.Stats.Undefined)
	if cube.Stats.Defined > 0 {
		fmt.Fprintf(w, "Min: %s, max: %s, mean: %s\n",
			format.CondensePrice(cube.Stats.Min),
			format.CondensePrice(cube.Stats.Max),
			format.CondensePrice(cube.Stats.Mean),
		)
	}
	if cube.Cancelled {
		fmt.Fprintf(w, "Sweep was cancelled; results are partial.\n")
	}
}

// SweepCsvFormat writes the cube as a flat (axis1, axis2, axis3, value)
// table. Undefined cells have an empty value field.
func SweepCsvFormat(w io.Writer, cube *sweep.Cube) {
	fmt.Fprintf(w, `"%s","%s","%s","value"`,
		axisLabel(cube.Axes[0]), axisLabel(cube.Axes[1]), axisLabel(cube.Axes[2]))
	fmt.Fprintf(w, "\n")
	for i, vi := range cube.Axes[0].Values {
		for j, vj := range cube.Axes[1].Values {
			for k, vk := range cube.Axes[2].Values {
				cell := cube.At(i, j, k)
				value := ""
				if cell != nil {
					value = fmt.Sprintf("%.2f", *cell)
				}
				fmt.Fprintf(w, `"%g","%g","%g","%s"`, vi, vj, vk, value)
				fmt.Fprintf(w, "\n")
			}
		}
	}
}

func axisLabel(axis sweep.AxisValues) string {
	if axis.Field == "" {
		return "-"
	}
	return string(axis.Field)
}

func axisHeader(cube *sweep.Cube) string {
	var parts []string
	for _, axis := range cube.Axes {
		if axis.Field != "" {
			parts = append(parts, string(axis.Field))
		}
	}
	parts = append(parts, "value")
	return strings.Join(parts, " | ")
}

func axisPrefix(cube *sweep.Cube, vi, vj, vk float64) string {
	values := []float64{vi, vj, vk}
	var builder strings.Builder
	for i, axis := range cube.Axes {
		if axis.Field == "" {
			continue
		}
		fmt.Fprintf(&builder, "%g | ", values[i])
	}
	return builder.String()
}
