package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmansmann0/capsim-ml/internal/export"
	"github.com/tmansmann0/capsim-ml/internal/model"
	"github.com/tmansmann0/capsim-ml/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the accumulated extraction history",
	Long:  "Commands for listing, exporting and clearing records saved with extract --accumulate or the server.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return cfg.Validate("history")
	},
}

// -- history list --

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved extractions, or records with --records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		showRecords, _ := cmd.Flags().GetBool("records")

		if !showRecords {
			exs, err := st.ListExtractions(ctx, limit)
			if err != nil {
				return eris.Wrap(err, "history list")
			}
			if len(exs) == 0 {
				fmt.Fprintln(os.Stderr, "No extractions found.")
				return nil
			}
			formatExtractions(cmd.OutOrStdout(), exs)
			return nil
		}

		filter, err := recordFilterFromFlags(cmd)
		if err != nil {
			return err
		}
		filter.Limit = limit
		records, err := st.ListRecords(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "history list")
		}
		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No records found.")
			return nil
		}
		formatRecords(cmd.OutOrStdout(), records)
		return nil
	},
}

// -- history export --

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export accumulated records as CSV, XLSX or JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		output, _ := cmd.Flags().GetString("output")
		formatName, _ := cmd.Flags().GetString("format")
		format := export.FormatFromPath(output, export.FormatCSV)
		if formatName != "" {
			f, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			format = f
		}

		filter, err := recordFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.ListRecords(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "history export")
		}

		if output == "" {
			return export.Write(cmd.OutOrStdout(), format, records, nil)
		}
		if err := export.WriteFile(output, format, records, nil); err != nil {
			return eris.Wrap(err, "history export")
		}
		zap.L().Info("history exported",
			zap.String("output", output),
			zap.String("format", string(format)),
			zap.Int("records", len(records)),
		)
		return nil
	},
}

// -- history clear --

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved extraction",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.Clear(ctx)
		if err != nil {
			return eris.Wrap(err, "history clear")
		}
		zap.L().Info("history cleared", zap.Int("extractions", n))
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 50, "max rows to show")
	historyListCmd.Flags().Bool("records", false, "list records instead of extractions")
	addRecordFilterFlags(historyListCmd)

	historyExportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	historyExportCmd.Flags().String("format", "", "csv, xlsx or json (default from --output extension, else csv)")
	addRecordFilterFlags(historyExportCmd)

	historyCmd.AddCommand(historyListCmd, historyExportCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func addRecordFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("segment", "", "only records of this segment")
	cmd.Flags().Int("round", -1, "only records of this round")
}

func recordFilterFromFlags(cmd *cobra.Command) (store.RecordFilter, error) {
	var filter store.RecordFilter
	if raw, _ := cmd.Flags().GetString("segment"); raw != "" {
		seg, ok := model.ParseSegment(raw)
		if !ok {
			return filter, eris.Errorf("unknown segment %q", raw)
		}
		filter.Segment = seg
	}
	if round, _ := cmd.Flags().GetInt("round"); round >= 0 {
		filter.Round = model.IntPtr(round)
	}
	return filter, nil
}

// formatExtractions writes a tabular listing of saved extractions to out.
func formatExtractions(out io.Writer, exs []store.Extraction) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tROUND\tRECORDS\tDIAGNOSTICS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t-----\t-------\t-----------\t-------")
	for _, ex := range exs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			ex.ID,
			truncate(ex.Source, 40),
			roundString(ex.Round),
			ex.Records,
			ex.Diagnostics,
			ex.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRecords writes the identifying columns of each record to out.
func formatRecords(out io.Writer, records []model.ProductRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROUND\tSEGMENT\tNAME\tSHARE\tPRICE\tPFMN\tSIZE\tIDEAL")
	for _, r := range records {
		ideal := "-"
		if r.IdealPerformance != "" || r.IdealSize != "" {
			ideal = r.IdealPerformance + "/" + r.IdealSize
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			roundString(r.Round),
			r.Segment,
			r.Name,
			r.MarketShare,
			r.Price,
			r.Performance,
			r.Size,
			ideal,
		)
	}
	_ = w.Flush()
}

func roundString(r *int) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *r)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
