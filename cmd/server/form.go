package main

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/primaauto/internal/premium"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// quoteForm holds the raw values posted by the quote form.
type quoteForm struct {
	DeductibleDM string `form:"ded_dm" validate:"required,number"`
	DeductibleRT string `form:"ded_rt" validate:"required,number"`
	SumRC        string `form:"sa_rc" validate:"required,numeric"`
	SumGM        string `form:"sa_gm" validate:"required,numeric"`
}

// apiQuoteRequest is the JSON body accepted by POST /api/quotes.
type apiQuoteRequest struct {
	DeductibleDM *int             `json:"ded_dm" validate:"required"`
	DeductibleRT *int             `json:"ded_rt" validate:"required"`
	SumRC        *decimal.Decimal `json:"sa_rc" validate:"required"`
	SumGM        *decimal.Decimal `json:"sa_gm" validate:"required"`
}

func parseQuoteFormValues(r *http.Request, rates premium.Config) (premium.Input, error) {
	form := quoteForm{
		DeductibleDM: strings.TrimSpace(r.FormValue("ded_dm")),
		DeductibleRT: strings.TrimSpace(r.FormValue("ded_rt")),
		SumRC:        strings.TrimSpace(r.FormValue("sa_rc")),
		SumGM:        strings.TrimSpace(r.FormValue("sa_gm")),
	}
	if err := validate.Struct(form); err != nil {
		return premium.Input{}, translateValidation(err)
	}

	var in premium.Input
	var err error
	if in.DeductibleDM, err = strconv.Atoi(form.DeductibleDM); err != nil {
		return premium.Input{}, fmt.Errorf("ded_dm debe ser un número entero")
	}
	if in.DeductibleRT, err = strconv.Atoi(form.DeductibleRT); err != nil {
		return premium.Input{}, fmt.Errorf("ded_rt debe ser un número entero")
	}
	if in.InsuredSumRC, err = decimal.NewFromString(form.SumRC); err != nil {
		return premium.Input{}, fmt.Errorf("sa_rc debe ser numérico")
	}
	if in.InsuredSumGM, err = decimal.NewFromString(form.SumGM); err != nil {
		return premium.Input{}, fmt.Errorf("sa_gm debe ser numérico")
	}

	if err := checkMinimums(in, rates); err != nil {
		return premium.Input{}, err
	}
	return in, nil
}

func parseAPIQuoteRequest(req apiQuoteRequest, rates premium.Config) (premium.Input, error) {
	if err := validate.Struct(req); err != nil {
		return premium.Input{}, translateValidation(err)
	}

	in := premium.Input{
		DeductibleDM: *req.DeductibleDM,
		DeductibleRT: *req.DeductibleRT,
		InsuredSumRC: *req.SumRC,
		InsuredSumGM: *req.SumGM,
	}
	if err := checkMinimums(in, rates); err != nil {
		return premium.Input{}, err
	}
	return in, nil
}

// checkMinimums enforces the entry-time minimum insured sums. The calculator
// itself clamps lower sums to zero excess instead of failing.
func checkMinimums(in premium.Input, rates premium.Config) error {
	if in.InsuredSumRC.LessThan(rates.BaseSumRC) {
		return fmt.Errorf("sa_rc debe ser mayor o igual a %s", rates.BaseSumRC)
	}
	if in.InsuredSumGM.LessThan(rates.BaseSumGM) {
		return fmt.Errorf("sa_gm debe ser mayor o igual a %s", rates.BaseSumGM)
	}
	return nil
}

func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s es requerido", fe.Field())
	case "number":
		return fmt.Errorf("%s debe ser un número entero", fe.Field())
	case "numeric":
		return fmt.Errorf("%s debe ser numérico", fe.Field())
	default:
		return fmt.Errorf("%s no es válido", fe.Field())
	}
}
