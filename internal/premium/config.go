package premium

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Coverage identifies a deductible-based coverage.
type Coverage string

const (
	MaterialDamage Coverage = "dm"
	TotalTheft     Coverage = "rt"
)

// Label returns the coverage name shown to the insured.
func (c Coverage) Label() string {
	switch c {
	case MaterialDamage:
		return "Daños Materiales"
	case TotalTheft:
		return "Robo Total"
	default:
		return string(c)
	}
}

// SurchargeTable maps an allowed deductible percentage to the factor applied
// to the coverage's base premium.
type SurchargeTable map[int]decimal.Decimal

// Keys returns the allowed deductible percentages in ascending order.
func (t SurchargeTable) Keys() []int {
	return slices.Sorted(maps.Keys(t))
}

// Surcharges groups the deductible tables by coverage.
type Surcharges map[Coverage]SurchargeTable

func (s Surcharges) factor(c Coverage, deductible int) (decimal.Decimal, error) {
	f, ok := s[c][deductible]
	if !ok {
		return decimal.Zero, &DeductibleError{Coverage: c, Percent: deductible}
	}
	return f, nil
}

// Config is the rate configuration of the product. It is loaded once at
// startup and must not be mutated afterwards.
type Config struct {
	BasePremiumDM decimal.Decimal
	BasePremiumRT decimal.Decimal
	BasePremiumRC decimal.Decimal
	BasePremiumGM decimal.Decimal

	BaseSumRC decimal.Decimal
	BaseSumGM decimal.Decimal

	IncrementRC       decimal.Decimal
	IncrementGM       decimal.Decimal
	IncrementChargeRC decimal.Decimal
	IncrementChargeGM decimal.Decimal

	TaxEnabled bool
	TaxRate    decimal.Decimal

	Surcharges Surcharges
}

// DefaultConfig returns the product's published rates.
func DefaultConfig() Config {
	return Config{
		BasePremiumDM:     decimal.RequireFromString("4777.78"),
		BasePremiumRT:     decimal.RequireFromString("2380.95"),
		BasePremiumRC:     decimal.RequireFromString("1200.00"),
		BasePremiumGM:     decimal.RequireFromString("400.00"),
		BaseSumRC:         decimal.NewFromInt(500000),
		BaseSumGM:         decimal.NewFromInt(100000),
		IncrementRC:       decimal.NewFromInt(50000),
		IncrementGM:       decimal.NewFromInt(10000),
		IncrementChargeRC: decimal.NewFromInt(50),
		IncrementChargeGM: decimal.NewFromInt(20),
		TaxEnabled:        true,
		TaxRate:           decimal.RequireFromString("0.16"),
		Surcharges: Surcharges{
			MaterialDamage: SurchargeTable{
				8: decimal.RequireFromString("-0.10"),
				6: decimal.RequireFromString("-0.05"),
				5: decimal.Zero,
				4: decimal.RequireFromString("0.05"),
				2: decimal.RequireFromString("0.10"),
			},
			TotalTheft: SurchargeTable{
				14: decimal.RequireFromString("-0.10"),
				12: decimal.RequireFromString("-0.05"),
				10: decimal.Zero,
				8:  decimal.RequireFromString("0.05"),
				6:  decimal.RequireFromString("0.10"),
			},
		},
	}
}

// Validate reports configuration values the calculator cannot price with.
func (c Config) Validate() error {
	var errs []error
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"prima_basica_dm", c.BasePremiumDM},
		{"prima_basica_rt", c.BasePremiumRT},
		{"prima_basica_rc", c.BasePremiumRC},
		{"prima_basica_gm", c.BasePremiumGM},
		{"sa_basica_rc", c.BaseSumRC},
		{"sa_basica_gm", c.BaseSumGM},
		{"recargo_rc", c.IncrementChargeRC},
		{"recargo_gm", c.IncrementChargeGM},
		{"tasa_iva", c.TaxRate},
	} {
		if f.value.IsNegative() {
			errs = append(errs, fmt.Errorf("%s must not be negative", f.name))
		}
	}
	if !c.IncrementRC.IsPositive() {
		errs = append(errs, errors.New("incremento_rc must be positive"))
	}
	if !c.IncrementGM.IsPositive() {
		errs = append(errs, errors.New("incremento_gm must be positive"))
	}
	for _, cov := range []Coverage{MaterialDamage, TotalTheft} {
		if len(c.Surcharges[cov]) == 0 {
			errs = append(errs, fmt.Errorf("surcharge table %q is empty", cov))
		}
	}
	return errors.Join(errs...)
}
