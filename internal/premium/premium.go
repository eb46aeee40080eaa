package premium

import (
	"github.com/shopspring/decimal"
)

// Input represents the four coverage selections made on the quote form.
type Input struct {
	DeductibleDM int
	DeductibleRT int
	InsuredSumRC decimal.Decimal
	InsuredSumGM decimal.Decimal
}

// Breakdown contains every line of the premium calculation.
type Breakdown struct {
	MaterialDamage        decimal.Decimal `json:"prima_dm"`
	TotalTheft            decimal.Decimal `json:"prima_rt"`
	CivilLiability        decimal.Decimal `json:"prima_rc"`
	CivilLiabilityExcess  decimal.Decimal `json:"prima_exceso_rc"`
	MedicalExpenses       decimal.Decimal `json:"prima_gm"`
	MedicalExpensesExcess decimal.Decimal `json:"prima_exceso_gm"`

	ExcessSumRC decimal.Decimal `json:"exceso_sa_rc"`
	ExcessSumGM decimal.Decimal `json:"exceso_sa_gm"`

	PreTaxTotal decimal.Decimal `json:"prima_sin_iva"`
	TaxApplied  bool            `json:"iva_aplicado"`
	TaxRate     decimal.Decimal `json:"tasa_iva"`
	Tax         decimal.Decimal `json:"iva"`
	Total       decimal.Decimal `json:"prima_total"`
}

// Calculate prices a policy from the rate configuration and the form input.
//
// The only failure is a deductible that is not in its coverage's surcharge
// table; the returned error then matches ErrInvalidDeductible and the
// breakdown is the zero value.
func Calculate(cfg Config, in Input) (Breakdown, error) {
	factorDM, err := cfg.Surcharges.factor(MaterialDamage, in.DeductibleDM)
	if err != nil {
		return Breakdown{}, err
	}
	factorRT, err := cfg.Surcharges.factor(TotalTheft, in.DeductibleRT)
	if err != nil {
		return Breakdown{}, err
	}

	primaDM := cfg.BasePremiumDM.Mul(one.Add(factorDM))
	primaRT := cfg.BasePremiumRT.Mul(one.Add(factorRT))
	primaRC := cfg.BasePremiumRC
	primaGM := cfg.BasePremiumGM

	excessRC := excessOver(in.InsuredSumRC, cfg.BaseSumRC)
	excessGM := excessOver(in.InsuredSumGM, cfg.BaseSumGM)

	excessPremiumRC := perIncrement(excessRC, cfg.IncrementRC, cfg.IncrementChargeRC)
	excessPremiumGM := perIncrement(excessGM, cfg.IncrementGM, cfg.IncrementChargeGM)

	preTax := decimal.Sum(primaDM, primaRT, primaRC, excessPremiumRC, primaGM, excessPremiumGM)

	tax := decimal.Zero
	if cfg.TaxEnabled {
		tax = preTax.Mul(cfg.TaxRate)
	}

	return Breakdown{
		MaterialDamage:        primaDM,
		TotalTheft:            primaRT,
		CivilLiability:        primaRC,
		CivilLiabilityExcess:  excessPremiumRC,
		MedicalExpenses:       primaGM,
		MedicalExpensesExcess: excessPremiumGM,
		ExcessSumRC:           excessRC,
		ExcessSumGM:           excessGM,
		PreTaxTotal:           preTax,
		TaxApplied:            cfg.TaxEnabled,
		TaxRate:               cfg.TaxRate,
		Tax:                   tax,
		Total:                 preTax.Add(tax),
	}, nil
}

var one = decimal.NewFromInt(1)

func excessOver(sum, threshold decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, sum.Sub(threshold))
}

// perIncrement bills whole increments only; a partial increment earns nothing.
func perIncrement(excess, increment, charge decimal.Decimal) decimal.Decimal {
	if !excess.IsPositive() || !increment.IsPositive() {
		return decimal.Zero
	}
	whole, _ := excess.QuoRem(increment, 0)
	return whole.Mul(charge)
}
