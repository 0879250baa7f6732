// Command reconcile is a thin CLI demonstration of the reconciliation
// library over CSV files, in the same spirit as this codebase's CSV
// staging convention for SCD2 and fact-table ingestion
// (teacherref/lake/pkg/duck/{scd,facts}.go) and its pflag + env-override +
// LDFLAGS-version CLI skeleton (teacherref/lake/cmd/indexer/main.go). It
// is not the library's interface — pkg/engine is — just a runnable
// example of it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	flag "github.com/spf13/pflag"

	"github.com/gingermike/bitemporal-timeseries/internal/logging"
	"github.com/gingermike/bitemporal-timeseries/pkg/engine"
	"github.com/gingermike/bitemporal-timeseries/pkg/reconcile"
	"github.com/gingermike/bitemporal-timeseries/pkg/schema"
)

var (
	// Set by LDFLAGS.
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	showVersionFlag := flag.Bool("version", false, "show version and exit")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	jsonLogsFlag := flag.Bool("json-logs", false, "emit logs as JSON instead of colorized text")

	modeFlag := flag.String("mode", "delta", "reconciliation mode: delta or full_state (or set RECONCILE_MODE env var)")
	identityColumnsFlag := flag.StringSlice("id-columns", nil, "identity columns as name:kind pairs (or set RECONCILE_ID_COLUMNS env var, comma-separated)")
	valueColumnsFlag := flag.StringSlice("value-columns", nil, "value columns as name:kind pairs (or set RECONCILE_VALUE_COLUMNS env var, comma-separated)")
	systemTimeFlag := flag.String("system-time", "", "RFC3339 timestamp to stamp this run with (default: now)")

	currentCSVFlag := flag.String("current", "", "path to current-state input CSV (or set RECONCILE_CURRENT env var)")
	updatesCSVFlag := flag.String("updates", "", "path to updates input CSV (or set RECONCILE_UPDATES env var)")
	toExpireCSVFlag := flag.String("to-expire-out", "to_expire.csv", "path to write the to-expire output CSV")
	toInsertCSVFlag := flag.String("to-insert-out", "to_insert.csv", "path to write the to-insert output CSV")

	parallelIDThresholdFlag := flag.Int("parallel-id-threshold", 50, "minimum ID group count before dispatching in parallel")
	parallelRowThresholdFlag := flag.Int("parallel-row-threshold", 10000, "minimum total row count before dispatching in parallel")
	maxConcurrencyFlag := flag.Int("max-concurrency", 0, "maximum worker pool concurrency (0 = runtime default)")

	flag.Parse()

	if *showVersionFlag {
		fmt.Printf("version: %s, commit: %s, date: %s\n", version, commit, date)
		return nil
	}

	if v := os.Getenv("RECONCILE_MODE"); v != "" {
		*modeFlag = v
	}
	if v := os.Getenv("RECONCILE_CURRENT"); v != "" {
		*currentCSVFlag = v
	}
	if v := os.Getenv("RECONCILE_UPDATES"); v != "" {
		*updatesCSVFlag = v
	}
	if v := os.Getenv("RECONCILE_ID_COLUMNS"); v != "" {
		*identityColumnsFlag = strings.Split(v, ",")
	}
	if v := os.Getenv("RECONCILE_VALUE_COLUMNS"); v != "" {
		*valueColumnsFlag = strings.Split(v, ",")
	}

	log := logging.New(logging.Options{Verbose: *verboseFlag, JSON: *jsonLogsFlag})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *currentCSVFlag == "" || *updatesCSVFlag == "" {
		return fmt.Errorf("--current and --updates are required")
	}
	if len(*identityColumnsFlag) == 0 || len(*valueColumnsFlag) == 0 {
		return fmt.Errorf("--id-columns and --value-columns are required")
	}

	identityCols, err := schema.ParseColumns(*identityColumnsFlag)
	if err != nil {
		return fmt.Errorf("invalid --id-columns: %w", err)
	}
	valueCols, err := schema.ParseColumns(*valueColumnsFlag)
	if err != nil {
		return fmt.Errorf("invalid --value-columns: %w", err)
	}
	sch := schema.Schema{Identity: identityCols, Values: valueCols}

	mode, err := parseMode(*modeFlag)
	if err != nil {
		return err
	}

	systemTime := time.Now().UTC()
	if *systemTimeFlag != "" {
		systemTime, err = time.Parse(time.RFC3339, *systemTimeFlag)
		if err != nil {
			return fmt.Errorf("invalid --system-time: %w", err)
		}
	}

	current, err := readBatch(sch, *currentCSVFlag)
	if err != nil {
		return fmt.Errorf("failed to read current state from %s: %w", *currentCSVFlag, err)
	}
	updates, err := readBatch(sch, *updatesCSVFlag)
	if err != nil {
		return fmt.Errorf("failed to read updates from %s: %w", *updatesCSVFlag, err)
	}

	opts := engine.Options{
		Mode:                 mode,
		Schema:               sch,
		SystemTime:           systemTime,
		ParallelIDThreshold:  *parallelIDThresholdFlag,
		ParallelRowThreshold: *parallelRowThresholdFlag,
		MaxConcurrency:       *maxConcurrencyFlag,
		Clock:                clockwork.NewRealClock(),
		Logger:               log,
	}

	toExpire, toInsert, err := engine.Reconcile(ctx, opts, current, updates)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	if err := writeBatch(toExpire, *toExpireCSVFlag); err != nil {
		return fmt.Errorf("failed to write %s: %w", *toExpireCSVFlag, err)
	}
	if err := writeBatch(toInsert, *toInsertCSVFlag); err != nil {
		return fmt.Errorf("failed to write %s: %w", *toInsertCSVFlag, err)
	}

	log.Info("reconcile done",
		"to_expire_rows", len(toExpire.Rows), "to_expire_file", *toExpireCSVFlag,
		"to_insert_rows", len(toInsert.Rows), "to_insert_file", *toInsertCSVFlag)

	return nil
}

func parseMode(s string) (reconcile.Mode, error) {
	switch s {
	case "delta":
		return reconcile.ModeDelta, nil
	case "full_state":
		return reconcile.ModeFullState, nil
	default:
		return 0, fmt.Errorf("unknown --mode %q: expected delta or full_state", s)
	}
}
