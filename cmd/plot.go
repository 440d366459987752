package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

var (
	flagPlotStyle string
	flagPlotTitle string
	flagPlotXY    bool
)

var plotCmd = &cobra.Command{
	Use:   "plot [file]",
	Short: "Plot a series of numbers",
	Long: `Read whitespace-separated numbers from a file (or stdin) and plot them.

By default every number is a Y value and gnuplot numbers the points.
With --xy the numbers are read as x y pairs instead.

The values travel as one binary stream announced by the plot directive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		ctx, span := tel.Start(cmd.Context(), "plotpipe.plot",
			attribute.Int("values", len(values)),
			attribute.Bool("xy", flagPlotXY))
		defer span.End()

		s, err := openSession(cmd)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if flagPlotTitle != "" {
			s.Issue(fmt.Sprintf("set title %q", flagPlotTitle))
		}
		if err := s.Err(); err != nil {
			abortSession(ctx, s)
			return err
		}
		if err := s.Plot1D(values, flagPlotStyle, !flagPlotXY); err != nil {
			abortSession(ctx, s)
			span.RecordError(err)
			return err
		}
		return finishSession(ctx, s)
	},
}

func init() {
	plotCmd.Flags().StringVar(&flagPlotStyle, "style", "with lines", "plot style appended to the directive")
	plotCmd.Flags().StringVar(&flagPlotTitle, "title", "", "plot title")
	plotCmd.Flags().BoolVar(&flagPlotXY, "xy", false, "read x y pairs instead of Y values")
	rootCmd.AddCommand(plotCmd)
}
