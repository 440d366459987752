package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/timvw/plotpipe/internal/coords"
	"github.com/timvw/plotpipe/internal/framing"
	"github.com/timvw/plotpipe/internal/session"
)

var (
	flagSplotWidth   int
	flagSplotHeight  int
	flagSplotStyle   string
	flagSplotTitle   string
	flagSplotXYZ     bool
	flagSplotHeredoc bool
)

var splotCmd = &cobra.Command{
	Use:   "splot [file]",
	Short: "Surface-plot a grid of numbers",
	Long: `Read a grid of numbers from a file (or stdin) and surface-plot it.

Values are z values in row-major order: all y for x=0, then all y for x=1,
and so on. --width is the number of x positions; --height defaults to
the value count divided by the width.

With --xyz the input holds x y z triples instead. With --heredoc the grid
is sent as a named here-document of x y z records, one block per x.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		width, height, err := gridSize(len(values), flagSplotWidth, flagSplotHeight, flagSplotXYZ)
		if err != nil {
			return err
		}

		ctx, span := tel.Start(cmd.Context(), "plotpipe.splot",
			attribute.Int("width", width),
			attribute.Int("height", height),
			attribute.Bool("heredoc", flagSplotHeredoc))
		defer span.End()

		s, err := openSession(cmd)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if flagSplotTitle != "" {
			s.Issue(fmt.Sprintf("set title %q", flagSplotTitle))
		}
		if err := s.Err(); err != nil {
			abortSession(ctx, s)
			return err
		}

		if flagSplotHeredoc {
			err = splotHeredoc(s, values, width, height)
		} else {
			err = s.PlotGrid(values, width, height, flagSplotStyle, !flagSplotXYZ)
		}
		if err != nil {
			abortSession(ctx, s)
			span.RecordError(err)
			return err
		}
		return finishSession(ctx, s)
	},
}

// splotHeredoc defines the grid as (x, y, z) records and plots it by name.
func splotHeredoc(s *session.Session, values []float32, width, height int) error {
	var data = coords.Surface(width, height, func(x, y int) float64 {
		return float64(values[x*height+y])
	})
	layout := framing.GridLayout(3, height)
	if flagSplotXYZ {
		data = func(yield func(float64) bool) {
			for _, v := range values {
				if !yield(float64(v)) {
					return
				}
			}
		}
	}
	ref, err := s.Heredoc(data, layout)
	if err != nil {
		return err
	}
	return s.Command("splot " + ref + " " + flagSplotStyle)
}

// gridSize resolves the grid dimensions for n input values.
func gridSize(n, width, height int, xyz bool) (int, int, error) {
	points := n
	if xyz {
		if n%3 != 0 {
			return 0, 0, fmt.Errorf("%d values do not form x y z triples", n)
		}
		points = n / 3
	}
	if points == 0 {
		return 0, 0, fmt.Errorf("no values to plot")
	}
	if width < 1 {
		return 0, 0, fmt.Errorf("--width is required")
	}
	if height < 1 {
		if points%width != 0 {
			return 0, 0, fmt.Errorf("%d points do not fill rows of width %d", points, width)
		}
		height = points / width
	}
	if width*height != points {
		return 0, 0, fmt.Errorf("grid %dx%d needs %d points, got %d", width, height, width*height, points)
	}
	return width, height, nil
}

func init() {
	splotCmd.Flags().IntVar(&flagSplotWidth, "width", 0, "number of x positions")
	splotCmd.Flags().IntVar(&flagSplotHeight, "height", 0, "number of y positions (default: derived from input)")
	splotCmd.Flags().StringVar(&flagSplotStyle, "style", "with lines", "plot style appended to the directive")
	splotCmd.Flags().StringVar(&flagSplotTitle, "title", "", "plot title")
	splotCmd.Flags().BoolVar(&flagSplotXYZ, "xyz", false, "read x y z triples instead of z values")
	splotCmd.Flags().BoolVar(&flagSplotHeredoc, "heredoc", false, "send the grid as a named here-document")
	rootCmd.AddCommand(splotCmd)
}
