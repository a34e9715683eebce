package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/motogp-standings/internal/render"
)

func NewWeatherCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "print the race weather of a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			record, err := rt.service.Weather(cmd.Context(), year)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.WeatherTable(record))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "season", time.Now().Year(), "season to show")
	return cmd
}
