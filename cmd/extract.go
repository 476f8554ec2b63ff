package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmansmann0/capsim-ml/internal/export"
	"github.com/tmansmann0/capsim-ml/internal/model"
)

var (
	extractInput       string
	extractRound       int
	extractFormat      string
	extractOutput      string
	extractDiagnostics string
	extractAccumulate  bool
	extractSheet       string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract product records from one Courier report",
	Long: "Reads report text from a file, stdin (-), an http(s) URL or an XLSX workbook and " +
		"writes one record per product per segment. Problems the extractor recovered from are " +
		"printed to stderr as diagnostics.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := applyExtractOverrides(cmd); err != nil {
			return err
		}
		mode := "extract"
		if extractAccumulate {
			mode = "history"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		format := export.FormatFromPath(extractOutput, export.FormatCSV)
		if extractFormat != "" {
			f, err := export.ParseFormat(extractFormat)
			if err != nil {
				return err
			}
			format = f
		}

		ext, err := initExtractor()
		if err != nil {
			return err
		}

		text, err := initLoader(extractSheet).Load(ctx, extractInput)
		if err != nil {
			return eris.Wrap(err, "extract: load report")
		}

		report := model.RawReport{Text: text}
		if cmd.Flags().Changed("round") {
			report.Round = model.IntPtr(extractRound)
		}
		res := ext.Extract(report)
		reportDiagnostics(cmd.ErrOrStderr(), res)

		if extractOutput == "" {
			if err := export.Write(cmd.OutOrStdout(), format, res.Records, res.Diagnostics); err != nil {
				return eris.Wrap(err, "extract: write output")
			}
		} else if err := export.WriteFile(extractOutput, format, res.Records, res.Diagnostics); err != nil {
			return eris.Wrap(err, "extract: write output")
		}

		if extractDiagnostics != "" {
			if err := export.WriteDiagnosticsFile(extractDiagnostics, res.Diagnostics); err != nil {
				return eris.Wrap(err, "extract: write diagnostics")
			}
		}

		if extractAccumulate {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			ex, err := st.SaveExtraction(ctx, extractInput, res)
			if err != nil {
				return eris.Wrap(err, "extract: accumulate")
			}
			zap.L().Info("extraction accumulated",
				zap.String("id", ex.ID),
				zap.Int("records", ex.Records),
			)
		}

		zap.L().Info("extract complete",
			zap.String("input", extractInput),
			zap.Int("records", len(res.Records)),
			zap.Int("diagnostics", len(res.Diagnostics)),
		)
		if res.HasFatal() {
			return eris.New("extract: input is empty")
		}
		return nil
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractInput, "input", "i", "-", "report source: file path, - for stdin, http(s) URL or .xlsx workbook")
	f.IntVar(&extractRound, "round", 0, "round number; overrides the round printed in the report")
	f.StringVar(&extractFormat, "format", "", "output format: csv, xlsx or json (default from --output extension, else csv)")
	f.StringVarP(&extractOutput, "output", "o", "", "output file (default stdout)")
	f.StringVar(&extractDiagnostics, "diagnostics", "", "write diagnostics to this file (csv, xlsx or json by extension)")
	f.BoolVar(&extractAccumulate, "accumulate", false, "also save the extraction to the configured store")
	f.StringVar(&extractSheet, "sheet", "", "sheet name when the input is an XLSX workbook")
	f.String("strategy", "", "page segmentation strategy: split or capture (default from config)")
	f.Int("workers", 0, "page-level concurrency (default from config)")
	f.String("aliases", "", "YAML file overriding the product table header aliases")
	rootCmd.AddCommand(extractCmd)
}

// applyExtractOverrides copies explicitly set engine flags over the loaded config.
func applyExtractOverrides(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		v, _ := flags.GetString("strategy")
		cfg.Extract.Strategy = v
	}
	if flags.Changed("workers") {
		v, _ := flags.GetInt("workers")
		cfg.Extract.Workers = v
	}
	if flags.Changed("aliases") {
		v, _ := flags.GetString("aliases")
		cfg.Extract.AliasesPath = v
	}
	if flags.Changed("round") && extractRound < 0 {
		return eris.Errorf("extract: --round must be >= 0, got %d", extractRound)
	}
	return nil
}

// reportDiagnostics prints every diagnostic followed by a per-kind tally.
func reportDiagnostics(w io.Writer, res *model.ExtractionResult) {
	if len(res.Diagnostics) == 0 {
		return
	}
	for _, d := range res.Diagnostics {
		_, _ = fmt.Fprintln(w, "diagnostic:", d.String())
	}

	counts := res.CountByKind()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", k, counts[model.DiagnosticKind(k)])
	}
}
