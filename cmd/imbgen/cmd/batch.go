package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/postalworks/imbgen/internal/batch"
	"github.com/postalworks/imbgen/internal/config"
)

// batchCmd represents the batch command for parallel CSV encoding.
var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Encode barcodes for CSV mailing lists in parallel",
	Long: `Encode Intelligent Mail barcodes for every row of one or more CSV
mailing lists. Rows are distributed across parallel workers; each row
needs a sequence column, the remaining fields fall back to the per-run
defaults from flags or the config file.

Examples:
  imbgen batch mailing.csv
  imbgen batch lists/ --recursive --workers 8
  imbgen batch mailing.csv --format csv --output barcodes.csv
  imbgen batch legacy.csv --charset windows-1252 --progress`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config.
// CLI flags will override config file values through Viper's precedence system.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) *batch.Config {
	batchConfig := &batch.Config{}

	// Per-run record defaults
	batchConfig.BarcodeID = cfg.Encode.BarcodeID
	if cmd.Flags().Changed("barcode-id") {
		batchConfig.BarcodeID, _ = cmd.Flags().GetString("barcode-id")
	}

	batchConfig.ServiceType = cfg.Encode.ServiceType
	if cmd.Flags().Changed("service-type") {
		batchConfig.ServiceType, _ = cmd.Flags().GetString("service-type")
	}

	batchConfig.MailerID = cfg.Encode.MailerID
	if cmd.Flags().Changed("mailer-id") {
		batchConfig.MailerID, _ = cmd.Flags().GetString("mailer-id")
	}

	batchConfig.Strict = cfg.Encode.Strict
	if cmd.Flags().Changed("strict") {
		batchConfig.Strict, _ = cmd.Flags().GetBool("strict")
	}

	batchConfig.ServiceTypes = cfg.Encode.ServiceTypes

	// Input settings
	batchConfig.Charset = cfg.Batch.Charset
	if cmd.Flags().Changed("charset") {
		batchConfig.Charset, _ = cmd.Flags().GetString("charset")
	}

	batchConfig.Columns = batch.ColumnMap{
		BarcodeID:   cfg.Batch.Columns.BarcodeID,
		ServiceType: cfg.Batch.Columns.ServiceType,
		MailerID:    cfg.Batch.Columns.MailerID,
		Sequence:    cfg.Batch.Columns.Sequence,
		RoutingCode: cfg.Batch.Columns.RoutingCode,
	}

	// Output settings
	batchConfig.Format = cfg.Output.Format
	if cmd.Flags().Changed("format") {
		batchConfig.Format, _ = cmd.Flags().GetString("format")
	}

	batchConfig.OutputFile = cfg.Output.File
	if cmd.Flags().Changed("output") {
		batchConfig.OutputFile, _ = cmd.Flags().GetString("output")
	}

	// Parallel processing settings
	batchConfig.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		batchConfig.Workers, _ = cmd.Flags().GetInt("workers")
	}

	batchConfig.ContinueOnError = cfg.Batch.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		batchConfig.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	// File discovery settings - these are typically CLI-only
	batchConfig.Recursive, _ = cmd.Flags().GetBool("recursive")
	batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")

	// Progress settings - these are typically CLI-only
	batchConfig.ShowProgress, _ = cmd.Flags().GetBool("progress")
	batchConfig.Quiet, _ = cmd.Flags().GetBool("quiet")
	batchConfig.ProgressInterval, _ = cmd.Flags().GetDuration("progress-interval")

	return batchConfig
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	batchConfig := configToBatchConfig(cfg, cmd)

	if !batchConfig.Quiet {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Encoding %d input(s)...\n", len(args))
	}

	result, err := batch.ProcessBatch(cmd.Context(), args, batchConfig)
	if err != nil {
		return fmt.Errorf("batch encoding failed: %w", err)
	}

	if err := result.SaveResults(batchConfig.Format, batchConfig.OutputFile, batchConfig.Quiet); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Record default flags (shared semantics with encode)
	batchCmd.Flags().String("barcode-id", "", "default 2-digit barcode identifier for rows without one")
	batchCmd.Flags().String("service-type", "", "default 3-digit service type for rows without one")
	batchCmd.Flags().StringP("mailer-id", "m", "", "default 6- or 9-digit mailer ID for rows without one")
	batchCmd.Flags().Bool("strict", false, "enforce USPS digit conventions on the barcode identifier")

	// Input flags
	batchCmd.Flags().String("charset", "", "input charset: utf-8, latin-1, windows-1252")

	// Output flags
	batchCmd.Flags().StringP("format", "f", "text", "output format: text, json, csv")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	// Parallel processing flags
	batchCmd.Flags().IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))
	batchCmd.Flags().Bool("continue-on-error", true, "keep encoding remaining rows when a row fails")

	// File discovery flags
	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().StringSlice("include", []string{"*.csv"}, "file patterns to include")
	batchCmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")

	// Progress flags
	batchCmd.Flags().Bool("progress", false, "show progress output")
	batchCmd.Flags().Bool("quiet", false, "suppress progress and result output")
	batchCmd.Flags().Duration("progress-interval", 500*time.Millisecond, "progress update interval")
}
