package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/render"
)

type chartOptions struct {
	season  int
	history bool
	from    int
	to      int
	races   int
	out     string
}

func NewChartCmd() *cobra.Command {
	opts := chartOptions{}

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "print the standings of a season and plot them as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()
			return runChart(cmd, rt, opts)
		},
	}
	cmd.Flags().IntVar(&opts.season, "season", time.Now().Year(), "season to plot")
	cmd.Flags().BoolVar(&opts.history, "history", false, "add the average of the three preceding seasons")
	cmd.Flags().IntVar(&opts.from, "from", 1, "first rider rank to plot")
	cmd.Flags().IntVar(&opts.to, "to", 10, "last rider rank to plot (0 for all)")
	cmd.Flags().IntVar(&opts.races, "races", 0, "plot only the first n races (0 for all)")
	cmd.Flags().StringVar(&opts.out, "out", "", "PNG file to write (default standings-<season>.png)")
	return cmd
}

func runChart(cmd *cobra.Command, rt *deps, opts chartOptions) error {
	report, err := rt.service.Report(cmd.Context(), opts.season, opts.history)
	if err != nil {
		return err
	}

	in := render.ChartInput{
		Title:     fmt.Sprintf("%d MotoGP riders' standings", opts.season),
		Standings: report.Standings.Top(opts.from, opts.to).FirstRaces(opts.races),
		Weather:   report.Weather,
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Table(in.Standings))

	if report.History != nil {
		history := report.History.Restrict(in.Standings.Riders).FirstRaces(opts.races)
		in.History = &history
		fmt.Fprintln(cmd.OutOrStdout(), "Average of the three preceding seasons:")
		fmt.Fprintln(cmd.OutOrStdout(), render.Table(history))
	}

	out := opts.out
	if out == "" {
		out = fmt.Sprintf("standings-%d.png", opts.season)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := render.Chart(f, in); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	rt.logger.Info("chart written", zap.String("file", out), zap.Int("riders", len(in.Standings.Riders)))
	return nil
}
