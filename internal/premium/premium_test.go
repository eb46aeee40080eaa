package premium

import (
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func equalDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func baseInput() Input {
	return Input{
		DeductibleDM: 5,
		DeductibleRT: 10,
		InsuredSumRC: dec("500000"),
		InsuredSumGM: dec("100000"),
	}
}

func TestCalculate_BaseSelectionsWithoutTax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaxEnabled = false

	result, err := Calculate(cfg, baseInput())
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	equalDecimal(t, "prima_dm", result.MaterialDamage, "4777.78")
	equalDecimal(t, "prima_rt", result.TotalTheft, "2380.95")
	equalDecimal(t, "prima_rc", result.CivilLiability, "1200")
	equalDecimal(t, "prima_exceso_rc", result.CivilLiabilityExcess, "0")
	equalDecimal(t, "prima_gm", result.MedicalExpenses, "400")
	equalDecimal(t, "prima_exceso_gm", result.MedicalExpensesExcess, "0")
	equalDecimal(t, "prima_sin_iva", result.PreTaxTotal, "8758.73")
	equalDecimal(t, "iva", result.Tax, "0")
	equalDecimal(t, "total", result.Total, "8758.73")
	if result.TaxApplied {
		t.Fatalf("expected tax not applied")
	}
}

func TestCalculate_DeductibleFactors(t *testing.T) {
	in := baseInput()
	in.DeductibleDM = 8
	in.DeductibleRT = 6

	result, err := Calculate(DefaultConfig(), in)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	equalDecimal(t, "prima_dm", result.MaterialDamage.Round(2), "4300.00")
	equalDecimal(t, "prima_rt", result.TotalTheft, "2619.045")
}

func TestCalculate_ExcessIsBilledPerWholeIncrement(t *testing.T) {
	in := baseInput()
	in.InsuredSumRC = dec("600000")
	in.InsuredSumGM = dec("125000")

	result, err := Calculate(DefaultConfig(), in)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	equalDecimal(t, "exceso_sa_rc", result.ExcessSumRC, "100000")
	equalDecimal(t, "prima_exceso_rc", result.CivilLiabilityExcess, "100")
	equalDecimal(t, "exceso_sa_gm", result.ExcessSumGM, "25000")
	equalDecimal(t, "prima_exceso_gm", result.MedicalExpensesExcess, "40")
}

func TestCalculate_PartialIncrementEarnsNothing(t *testing.T) {
	cases := []struct {
		name   string
		rc, gm string
		wantRC string
		wantGM string
	}{
		{"one unit short of an increment", "549999", "109999", "0", "0"},
		{"exactly one increment", "550000", "110000", "50", "20"},
		{"one increment plus change", "599999.99", "119999.99", "50", "20"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			in.InsuredSumRC = dec(tc.rc)
			in.InsuredSumGM = dec(tc.gm)

			result, err := Calculate(DefaultConfig(), in)
			if err != nil {
				t.Fatalf("Calculate returned error: %v", err)
			}
			equalDecimal(t, "prima_exceso_rc", result.CivilLiabilityExcess, tc.wantRC)
			equalDecimal(t, "prima_exceso_gm", result.MedicalExpensesExcess, tc.wantGM)
		})
	}
}

func TestCalculate_SumsAtOrBelowThresholdHaveNoExcess(t *testing.T) {
	for _, sums := range [][2]string{
		{"500000", "100000"},
		{"499999", "99999"},
		{"0", "0"},
		{"-10", "-10"},
	} {
		in := baseInput()
		in.InsuredSumRC = dec(sums[0])
		in.InsuredSumGM = dec(sums[1])

		result, err := Calculate(DefaultConfig(), in)
		if err != nil {
			t.Fatalf("Calculate(%v) returned error: %v", sums, err)
		}
		equalDecimal(t, "exceso_sa_rc", result.ExcessSumRC, "0")
		equalDecimal(t, "prima_exceso_rc", result.CivilLiabilityExcess, "0")
		equalDecimal(t, "exceso_sa_gm", result.ExcessSumGM, "0")
		equalDecimal(t, "prima_exceso_gm", result.MedicalExpensesExcess, "0")
	}
}

func TestCalculate_TaxAddsSixteenPercent(t *testing.T) {
	result, err := Calculate(DefaultConfig(), baseInput())
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	equalDecimal(t, "prima_sin_iva", result.PreTaxTotal, "8758.73")
	equalDecimal(t, "iva", result.Tax, "1401.3968")
	equalDecimal(t, "total", result.Total, "10160.1268")
	equalDecimal(t, "total/1.16", result.PreTaxTotal.Mul(dec("1.16")), "10160.1268")
	if !result.TaxApplied {
		t.Fatalf("expected tax applied")
	}
}

func TestCalculate_TotalMatchesItemizedLines(t *testing.T) {
	cfg := DefaultConfig()
	for _, dm := range cfg.Surcharges[MaterialDamage].Keys() {
		for _, rt := range cfg.Surcharges[TotalTheft].Keys() {
			for _, sums := range [][2]string{{"500000", "100000"}, {"735000", "154321"}, {"1000000", "300000"}} {
				in := Input{DeductibleDM: dm, DeductibleRT: rt, InsuredSumRC: dec(sums[0]), InsuredSumGM: dec(sums[1])}

				r, err := Calculate(cfg, in)
				if err != nil {
					t.Fatalf("Calculate(%+v) returned error: %v", in, err)
				}

				lines := decimal.Sum(r.MaterialDamage, r.TotalTheft, r.CivilLiability, r.CivilLiabilityExcess, r.MedicalExpenses, r.MedicalExpensesExcess)
				if !lines.Equal(r.PreTaxTotal) {
					t.Fatalf("pre-tax %s differs from itemized sum %s for %+v", r.PreTaxTotal, lines, in)
				}
				if !r.PreTaxTotal.Add(r.Tax).Equal(r.Total) {
					t.Fatalf("total %s differs from pre-tax + tax for %+v", r.Total, in)
				}
			}
		}
	}
}

func TestCalculate_InvalidDeductible(t *testing.T) {
	cases := []struct {
		name     string
		dm, rt   int
		coverage Coverage
	}{
		{"material damage", 7, 10, MaterialDamage},
		{"total theft", 5, 11, TotalTheft},
		{"rt key used for dm", 14, 10, MaterialDamage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			in.DeductibleDM = tc.dm
			in.DeductibleRT = tc.rt

			result, err := Calculate(DefaultConfig(), in)
			if !errors.Is(err, ErrInvalidDeductible) {
				t.Fatalf("expected ErrInvalidDeductible, got %v", err)
			}
			var dErr *DeductibleError
			if !errors.As(err, &dErr) || dErr.Coverage != tc.coverage {
				t.Fatalf("expected DeductibleError for %s, got %#v", tc.coverage, err)
			}
			if !result.Total.IsZero() || !result.PreTaxTotal.IsZero() {
				t.Fatalf("expected empty breakdown, got %+v", result)
			}
		})
	}
}

func TestCalculate_IsDeterministic(t *testing.T) {
	in := baseInput()
	in.InsuredSumRC = dec("650000")

	first, err := Calculate(DefaultConfig(), in)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Calculate(DefaultConfig(), in)
		if err != nil {
			t.Fatalf("Calculate returned error: %v", err)
		}
		if !again.Total.Equal(first.Total) {
			t.Fatalf("iteration %d total %s, want %s", i, again.Total, first.Total)
		}
	}
}

func TestSurchargeTableKeysAscending(t *testing.T) {
	cfg := DefaultConfig()

	dm := cfg.Surcharges[MaterialDamage].Keys()
	rt := cfg.Surcharges[TotalTheft].Keys()

	if want := []int{2, 4, 5, 6, 8}; !slices.Equal(dm, want) {
		t.Fatalf("dm keys = %v, want %v", dm, want)
	}
	if want := []int{6, 8, 10, 12, 14}; !slices.Equal(rt, want) {
		t.Fatalf("rt keys = %v, want %v", rt, want)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.IncrementRC = decimal.Zero
	cfg.BasePremiumGM = dec("-1")
	cfg.Surcharges = Surcharges{MaterialDamage: cfg.Surcharges[MaterialDamage]}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}
