package cmd

import (
	"github.com/spf13/cobra"

	"github.com/timvw/plotpipe/internal/repl"
)

var (
	flagReplNoFlush bool
	flagReplTheme   string
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Type gnuplot commands interactively",
	Long: `Open a prompt that forwards each line to a gnuplot session.

After every command the input is padded with comment lines so gnuplot
redraws immediately. Use --no-flush to send commands as-is.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tel.Start(cmd.Context(), "plotpipe.repl")
		defer span.End()

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		r := &repl.REPL{
			Sender:  s,
			Title:   "plotpipe " + appCfg.Program,
			NoFlush: flagReplNoFlush,
			Theme:   flagReplTheme,
		}
		if err := r.Run(ctx); err != nil {
			abortSession(ctx, s)
			span.RecordError(err)
			return err
		}
		return finishSession(ctx, s)
	},
}

func init() {
	replCmd.Flags().BoolVar(&flagReplNoFlush, "no-flush", false, "do not pad the input after each command")
	replCmd.Flags().StringVar(&flagReplTheme, "theme", "dark", "color theme: dark, light")
	rootCmd.AddCommand(replCmd)
}
