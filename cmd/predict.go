package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tmansmann0/capsim-ml/internal/export"
	"github.com/tmansmann0/capsim-ml/internal/forecast"
	"github.com/tmansmann0/capsim-ml/internal/model"
	"github.com/tmansmann0/capsim-ml/internal/store"
)

var (
	predictPrev    []float64
	predictCurr    []float64
	predictRecords string
	predictHistory bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Project next round's ideal positions",
	Long: "Continues each segment's ideal-position drift for one more round: next = current + (current - previous).\n" +
		"Positions come from --prev/--curr, a records CSV written by extract (--records) or the saved history (--history).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if len(predictPrev) > 0 || len(predictCurr) > 0 {
			if len(predictPrev) != 2 || len(predictCurr) != 2 {
				return eris.New("predict: --prev and --curr each take performance,size")
			}
			next := forecast.NextIdealPosition(
				forecast.Position{Performance: predictPrev[0], Size: predictPrev[1]},
				forecast.Position{Performance: predictCurr[0], Size: predictCurr[1]},
			)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "performance=%.2f size=%.2f\n", next.Performance, next.Size)
			return nil
		}

		var records []model.ProductRecord
		switch {
		case predictRecords != "":
			f, err := os.Open(predictRecords)
			if err != nil {
				return eris.Wrap(err, "predict: open records")
			}
			defer f.Close() //nolint:errcheck
			records, err = export.ReadCSV(f)
			if err != nil {
				return eris.Wrap(err, "predict: read records")
			}
		case predictHistory:
			if err := cfg.Validate("history"); err != nil {
				return err
			}
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			records, err = st.ListRecords(ctx, store.RecordFilter{})
			if err != nil {
				return eris.Wrap(err, "predict: load history")
			}
		default:
			return eris.New("predict: one of --prev/--curr, --records or --history is required")
		}

		projections := forecast.FromRecords(records)
		if len(projections) == 0 {
			fmt.Fprintln(os.Stderr, "No segment has ideal positions for two rounds.")
			return nil
		}
		formatProjections(cmd.OutOrStdout(), projections)
		return nil
	},
}

func init() {
	predictCmd.Flags().Float64SliceVar(&predictPrev, "prev", nil, "previous round ideal position: performance,size")
	predictCmd.Flags().Float64SliceVar(&predictCurr, "curr", nil, "current round ideal position: performance,size")
	predictCmd.Flags().StringVar(&predictRecords, "records", "", "records CSV written by extract or history export")
	predictCmd.Flags().BoolVar(&predictHistory, "history", false, "use the records saved in the configured store")
	rootCmd.AddCommand(predictCmd)
}

// formatProjections writes one row per projected segment to out.
func formatProjections(out io.Writer, ps []forecast.Projection) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEGMENT\tROUND\tPREVIOUS\tCURRENT\tNEXT")
	for _, p := range ps {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.2f/%.2f\t%.2f/%.2f\t%.2f/%.2f\n",
			p.Segment,
			p.To,
			p.Previous.Performance, p.Previous.Size,
			p.Current.Performance, p.Current.Size,
			p.Next.Performance, p.Next.Size,
		)
	}
	_ = w.Flush()
}
