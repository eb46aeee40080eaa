// Package render turns a premium breakdown into labeled currency lines.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/primaauto/internal/premium"
)

// Line is one labeled amount of the breakdown.
type Line struct {
	Label  string `json:"etiqueta"`
	Amount string `json:"monto"`
}

// Money formats an amount with two decimals and thousands separators.
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	rounded := d.Round(2)
	_, cents, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + "$" + humanize.BigComma(rounded.BigInt()) + "." + cents
}

// Percent formats a rate such as 0.16 as "16%".
func Percent(rate decimal.Decimal) string {
	return rate.Shift(2).String() + "%"
}

// Lines returns the itemized lines in display order. The IVA lines only
// appear when tax was applied.
func Lines(b premium.Breakdown) []Line {
	lines := []Line{
		{"Daños Materiales (ajustada)", Money(b.MaterialDamage)},
		{"Robo Total (ajustada)", Money(b.TotalTheft)},
		{"Responsabilidad Civil - Básica", Money(b.CivilLiability)},
		{"Responsabilidad Civil - Exceso", Money(b.CivilLiabilityExcess)},
		{"Gastos Médicos - Básica", Money(b.MedicalExpenses)},
		{"Gastos Médicos - Exceso", Money(b.MedicalExpensesExcess)},
	}
	if b.TaxApplied {
		lines = append(lines,
			Line{"Prima sin IVA", Money(b.PreTaxTotal)},
			Line{fmt.Sprintf("IVA (%s)", Percent(b.TaxRate)), Money(b.Tax)},
		)
	}
	return lines
}

// Total returns the highlighted total line.
func Total(b premium.Breakdown) Line {
	return Line{"TOTAL PRIMA EMITIDA", Money(b.Total)}
}

// WriteText writes a plain-text breakdown followed by the total.
func WriteText(w io.Writer, b premium.Breakdown) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(w, "Desglose de la Prima"); err != nil {
		return err
	}
	for _, l := range Lines(b) {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\t\n", l.Label, l.Amount); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	total := Total(b)
	_, err := fmt.Fprintf(w, "---\n%s: %s\n", total.Label, total.Amount)
	return err
}
