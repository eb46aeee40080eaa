package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/primaauto/internal/premium"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run stores the given rates in an empty database. Rows that already exist
// are left untouched, so running it again is a no-op.
func Run(ctx context.Context, db *sql.DB, rates premium.Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureRateConfig(ctx, tx, rates, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, coverage := range []premium.Coverage{premium.MaterialDamage, premium.TotalTheft} {
		if err := ensureSurcharges(ctx, tx, coverage, rates.Surcharges[coverage], &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureRateConfig(ctx context.Context, tx *sql.Tx, rates premium.Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rate_config WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check rate config existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rate_config (
			id,
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
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rates.BasePremiumDM,
		rates.BasePremiumRT,
		rates.BasePremiumRC,
		rates.BasePremiumGM,
		rates.BaseSumRC,
		rates.BaseSumGM,
		rates.IncrementRC,
		rates.IncrementGM,
		rates.IncrementChargeRC,
		rates.IncrementChargeGM,
		rates.TaxEnabled,
		rates.TaxRate,
	); err != nil {
		return fmt.Errorf("insert rate config singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSurcharges(ctx context.Context, tx *sql.Tx, coverage premium.Coverage, table premium.SurchargeTable, stats *Stats) error {
	for _, deductible := range table.Keys() {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO deductible_surcharges (coverage, deductible_percent, factor)
			VALUES (?, ?, ?)
			ON CONFLICT(coverage, deductible_percent) DO NOTHING
		`, string(coverage), deductible, table[deductible])
		if err != nil {
			return fmt.Errorf("insert %s surcharge %d: %w", coverage, deductible, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert %s surcharge %d: %w", coverage, deductible, err)
		}
		stats.Inserts += int(affected)
	}
	return nil
}
