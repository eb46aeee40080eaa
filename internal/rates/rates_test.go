package rates

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/primaauto/internal/db"
	"github.com/Simplici0/primaauto/internal/migrations"
	"github.com/Simplici0/primaauto/internal/premium"
	"github.com/Simplici0/primaauto/internal/seed"
)

func newRatesTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "rates-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(ctx, database, "../../migrations"))
	return database
}

func TestLoadRoundTripsDefaultConfig(t *testing.T) {
	ctx := context.Background()
	database := newRatesTestDB(t)

	want := premium.DefaultConfig()
	_, err := seed.Run(ctx, database, want)
	require.NoError(t, err)

	got, err := Load(ctx, database)
	require.NoError(t, err)

	require.True(t, got.BasePremiumDM.Equal(want.BasePremiumDM))
	require.True(t, got.BasePremiumRT.Equal(want.BasePremiumRT))
	require.True(t, got.BasePremiumRC.Equal(want.BasePremiumRC))
	require.True(t, got.BasePremiumGM.Equal(want.BasePremiumGM))
	require.True(t, got.BaseSumRC.Equal(want.BaseSumRC))
	require.True(t, got.BaseSumGM.Equal(want.BaseSumGM))
	require.True(t, got.IncrementRC.Equal(want.IncrementRC))
	require.True(t, got.IncrementGM.Equal(want.IncrementGM))
	require.True(t, got.IncrementChargeRC.Equal(want.IncrementChargeRC))
	require.True(t, got.IncrementChargeGM.Equal(want.IncrementChargeGM))
	require.True(t, got.TaxRate.Equal(want.TaxRate))
	require.True(t, got.TaxEnabled)

	for _, coverage := range []premium.Coverage{premium.MaterialDamage, premium.TotalTheft} {
		require.Equal(t, want.Surcharges[coverage].Keys(), got.Surcharges[coverage].Keys())
		for k, factor := range want.Surcharges[coverage] {
			require.Truef(t, got.Surcharges[coverage][k].Equal(factor), "%s[%d]", coverage, k)
		}
	}
}

func TestLoadedConfigPricesLikeDefault(t *testing.T) {
	ctx := context.Background()
	database := newRatesTestDB(t)

	_, err := seed.Run(ctx, database, premium.DefaultConfig())
	require.NoError(t, err)

	cfg, err := Load(ctx, database)
	require.NoError(t, err)

	in := premium.Input{
		DeductibleDM: 5,
		DeductibleRT: 10,
		InsuredSumRC: premium.DefaultConfig().BaseSumRC,
		InsuredSumGM: premium.DefaultConfig().BaseSumGM,
	}
	result, err := premium.Calculate(cfg, in)
	require.NoError(t, err)
	require.Equal(t, "10160.1268", result.Total.String())
}

func TestLoadWithoutSeedReturnsErrNotSeeded(t *testing.T) {
	database := newRatesTestDB(t)

	_, err := Load(context.Background(), database)
	require.True(t, errors.Is(err, ErrNotSeeded), "got %v", err)
}

func TestLoadRejectsInvalidRates(t *testing.T) {
	ctx := context.Background()
	database := newRatesTestDB(t)

	_, err := seed.Run(ctx, database, premium.DefaultConfig())
	require.NoError(t, err)

	_, err = database.ExecContext(ctx, `UPDATE rate_config SET incremento_gm = '0' WHERE id = 1`)
	require.NoError(t, err)

	_, err = Load(ctx, database)
	require.ErrorContains(t, err, "incremento_gm must be positive")
}
