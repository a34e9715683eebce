package render

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/i474232898/motogp-standings/internal/standings"
	"github.com/i474232898/motogp-standings/internal/weather"
)

// Table renders the matrix for a terminal. Missing results show as "-".
func Table(m standings.Matrix) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	header := table.Row{"Rider"}
	for _, race := range m.Races {
		header = append(header, race)
	}
	t.AppendHeader(header)

	for i, rider := range m.Riders {
		row := table.Row{rider}
		for _, v := range m.Values[i] {
			row = append(row, FormatCell(v))
		}
		t.AppendRow(row)
	}
	return t.Render()
}

// WeatherTable renders the race conditions of a season, one race per row.
func WeatherTable(record weather.Record) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Race", "Track", "Air", "Humidity", "Ground", "Sky"})
	for _, race := range record.Races() {
		c := record[race]
		t.AppendRow(table.Row{race, c.TrackWet, c.AirTemp, c.Humidity, c.GroundTemp, c.Clouds})
	}
	return t.Render()
}

// FormatCell prints places as integers and averages with two decimals.
func FormatCell(v float64) string {
	switch {
	case standings.IsMissing(v):
		return "-"
	case v == float64(int64(v)):
		return strconv.FormatInt(int64(v), 10)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}
