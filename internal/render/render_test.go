package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/primaauto/internal/premium"
)

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"8758.73":    "$8,758.73",
		"10160.1268": "$10,160.13",
		"4300.002":   "$4,300.00",
		"0":          "$0.00",
		"1234567.5":  "$1,234,567.50",
		"-20":        "-$20.00",

		"12345678901234567.89":       "$12,345,678,901,234,567.89",
		"123456789012345678901234.5": "$123,456,789,012,345,678,901,234.50",
	}
	for in, want := range cases {
		require.Equal(t, want, Money(decimal.RequireFromString(in)), in)
	}
}

func TestPercent(t *testing.T) {
	require.Equal(t, "16%", Percent(decimal.RequireFromString("0.16")))
	require.Equal(t, "8.5%", Percent(decimal.RequireFromString("0.085")))
}

func calculate(t *testing.T, cfg premium.Config) premium.Breakdown {
	t.Helper()
	b, err := premium.Calculate(cfg, premium.Input{
		DeductibleDM: 5,
		DeductibleRT: 10,
		InsuredSumRC: decimal.NewFromInt(600000),
		InsuredSumGM: decimal.NewFromInt(125000),
	})
	require.NoError(t, err)
	return b
}

func TestLinesWithTax(t *testing.T) {
	b := calculate(t, premium.DefaultConfig())

	lines := Lines(b)
	require.Len(t, lines, 8)
	require.Equal(t, Line{"Responsabilidad Civil - Exceso", "$100.00"}, lines[3])
	require.Equal(t, Line{"Gastos Médicos - Exceso", "$40.00"}, lines[5])
	require.Equal(t, Line{"Prima sin IVA", "$8,898.73"}, lines[6])
	require.Equal(t, "IVA (16%)", lines[7].Label)
	require.Equal(t, Line{"TOTAL PRIMA EMITIDA", "$10,322.53"}, Total(b))
}

func TestLinesWithoutTaxOmitIVA(t *testing.T) {
	cfg := premium.DefaultConfig()
	cfg.TaxEnabled = false
	b := calculate(t, cfg)

	lines := Lines(b)
	require.Len(t, lines, 6)
	for _, l := range lines {
		require.NotContains(t, l.Label, "IVA")
	}
	require.Equal(t, "$8,898.73", Total(b).Amount)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, calculate(t, premium.DefaultConfig())))

	out := buf.String()
	for _, expected := range []string{
		"Desglose de la Prima",
		"Daños Materiales (ajustada):",
		"$4,777.78",
		"IVA (16%):",
		"TOTAL PRIMA EMITIDA: $10,322.53",
	} {
		require.True(t, strings.Contains(out, expected), "expected %q in:\n%s", expected, out)
	}
}
