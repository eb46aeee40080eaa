// Package rates reads the product's rate configuration from the database.
package rates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/primaauto/internal/premium"
)

// ErrNotSeeded is returned when the rate_config singleton is missing.
var ErrNotSeeded = errors.New("rate_config singleton not found")

// Load reads the rate_config singleton and the deductible surcharge tables
// and returns them as a validated premium.Config.
func Load(ctx context.Context, db *sql.DB) (premium.Config, error) {
	var cfg premium.Config
	err := db.QueryRowContext(ctx, `
		SELECT
			prima_basica_dm,
			prima_basica_rt,
			prima_basica_rc,
			prima_basica_gm,
			sa_basica_rc,
			sa_basica_gm,
			incremento_rc,
			incremento_gm,
			recargo_rc,
			recargo_gm,
			iva_habilitado,
			tasa_iva
		FROM rate_config
		WHERE id = 1
	`).Scan(
		&cfg.BasePremiumDM,
		&cfg.BasePremiumRT,
		&cfg.BasePremiumRC,
		&cfg.BasePremiumGM,
		&cfg.BaseSumRC,
		&cfg.BaseSumGM,
		&cfg.IncrementRC,
		&cfg.IncrementGM,
		&cfg.IncrementChargeRC,
		&cfg.IncrementChargeGM,
		&cfg.TaxEnabled,
		&cfg.TaxRate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return premium.Config{}, ErrNotSeeded
		}
		return premium.Config{}, fmt.Errorf("query rate_config: %w", err)
	}

	cfg.Surcharges, err = loadSurcharges(ctx, db)
	if err != nil {
		return premium.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return premium.Config{}, fmt.Errorf("invalid rate configuration: %w", err)
	}
	return cfg, nil
}

func loadSurcharges(ctx context.Context, db *sql.DB) (premium.Surcharges, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT coverage, deductible_percent, factor
		FROM deductible_surcharges
		ORDER BY coverage, deductible_percent
	`)
	if err != nil {
		return nil, fmt.Errorf("query deductible surcharges: %w", err)
	}
	defer rows.Close()

	surcharges := premium.Surcharges{}
	for rows.Next() {
		var (
			coverage   string
			deductible int
			factor     decimal.Decimal
		)
		if err := rows.Scan(&coverage, &deductible, &factor); err != nil {
			return nil, fmt.Errorf("scan deductible surcharge: %w", err)
		}

		table, ok := surcharges[premium.Coverage(coverage)]
		if !ok {
			table = premium.SurchargeTable{}
			surcharges[premium.Coverage(coverage)] = table
		}
		table[deductible] = factor
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deductible surcharges: %w", err)
	}

	return surcharges, nil
}
