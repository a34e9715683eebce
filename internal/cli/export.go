package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/render"
)

func NewExportCmd() *cobra.Command {
	var (
		year    int
		history bool
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "write the standings, weather and history of a season to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			report, err := rt.service.Report(cmd.Context(), year, history)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("motogp-%d.xlsx", year)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := render.Workbook(f, report); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			rt.logger.Info("workbook written", zap.String("file", out))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "season", time.Now().Year(), "season to export")
	cmd.Flags().BoolVar(&history, "history", false, "add the average of the three preceding seasons")
	cmd.Flags().StringVar(&out, "out", "", "workbook to write (default motogp-<season>.xlsx)")
	return cmd
}
