// Command quote prices an auto policy from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Simplici0/primaauto/internal/db"
	"github.com/Simplici0/primaauto/internal/obs"
	"github.com/Simplici0/primaauto/internal/premium"
	"github.com/Simplici0/primaauto/internal/rates"
	"github.com/Simplici0/primaauto/internal/render"
)

type options struct {
	deductibleDM int
	deductibleRT int
	sumRC        string
	sumGM        string
	dbPath       string
	noTax        bool
	asJSON       bool
	verbose      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := premium.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Calculate an auto policy premium",
		Long: `quote prices an automobile policy from the four coverage selections:
the deductible tiers for Daños Materiales and Robo Total and the insured
sums for Responsabilidad Civil and Gastos Médicos.

Examples:
  quote --ded-dm 5 --ded-rt 10 --sa-rc 500000 --sa-gm 100000
  quote --ded-dm 8 --ded-rt 6 --sa-rc 600000 --sa-gm 125000 --json
  quote --db ./dev.db --ded-dm 5 --ded-rt 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd, opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.deductibleDM, "ded-dm", defaultKey(defaults, premium.MaterialDamage), "deducible de Daños Materiales (%)")
	flags.IntVar(&opts.deductibleRT, "ded-rt", defaultKey(defaults, premium.TotalTheft), "deducible de Robo Total (%)")
	flags.StringVar(&opts.sumRC, "sa-rc", defaults.BaseSumRC.String(), "suma asegurada de Responsabilidad Civil")
	flags.StringVar(&opts.sumGM, "sa-gm", defaults.BaseSumGM.String(), "suma asegurada de Gastos Médicos")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database with the rate configuration (default: built-in rates)")
	flags.BoolVar(&opts.noTax, "no-tax", false, "report the premium without IVA")
	flags.BoolVar(&opts.asJSON, "json", false, "print the breakdown as JSON")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := obs.NewLoggerTo(cmd.ErrOrStderr(), "console", level)

	cfg := premium.DefaultConfig()
	if opts.dbPath != "" {
		database, err := db.Open(cmd.Context(), opts.dbPath)
		if err != nil {
			return err
		}
		defer database.Close()

		if cfg, err = rates.Load(cmd.Context(), database); err != nil {
			return err
		}
		logger.Debug().Str("db", opts.dbPath).Msg("rate configuration loaded")
	}
	if opts.noTax {
		cfg.TaxEnabled = false
	}

	sumRC, err := decimal.NewFromString(opts.sumRC)
	if err != nil {
		return fmt.Errorf("--sa-rc debe ser numérico: %q", opts.sumRC)
	}
	sumGM, err := decimal.NewFromString(opts.sumGM)
	if err != nil {
		return fmt.Errorf("--sa-gm debe ser numérico: %q", opts.sumGM)
	}
	if sumRC.LessThan(cfg.BaseSumRC) || sumGM.LessThan(cfg.BaseSumGM) {
		logger.Warn().
			Str("sa_rc", sumRC.String()).
			Str("sa_gm", sumGM.String()).
			Msg("insured sum below base threshold, no excess premium applies")
	}

	breakdown, err := premium.Calculate(cfg, premium.Input{
		DeductibleDM: opts.deductibleDM,
		DeductibleRT: opts.deductibleRT,
		InsuredSumRC: sumRC,
		InsuredSumGM: sumGM,
	})
	if err != nil {
		return fmt.Errorf("%w (permitidos: Daños Materiales %v, Robo Total %v)", err,
			cfg.Surcharges[premium.MaterialDamage].Keys(),
			cfg.Surcharges[premium.TotalTheft].Keys())
	}
	logger.Debug().Str("total", breakdown.Total.StringFixed(2)).Msg("quote calculated")

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(breakdown)
	}
	return render.WriteText(out, breakdown)
}

func defaultKey(cfg premium.Config, c premium.Coverage) int {
	for _, k := range cfg.Surcharges[c].Keys() {
		if cfg.Surcharges[c][k].IsZero() {
			return k
		}
	}
	return 0
}
