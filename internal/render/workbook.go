package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/motogp-standings/internal/season"
	"github.com/i474232898/motogp-standings/internal/standings"
)

const (
	standingsSheet = "Standings"
	weatherSheet   = "Weather"
	historySheet   = "History"
)

// Workbook writes the report as an xlsx workbook with one sheet per data set.
func Workbook(w io.Writer, report season.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		return err
	}
	if err := writeMatrix(f, standingsSheet, report.Standings); err != nil {
		return err
	}

	if _, err := f.NewSheet(weatherSheet); err != nil {
		return err
	}
	rows := [][]any{{"Race", "Track", "Air", "Humidity", "Ground", "Sky"}}
	for _, race := range report.Weather.Races() {
		c := report.Weather[race]
		rows = append(rows, []any{race, c.TrackWet, c.AirTemp, c.Humidity, c.GroundTemp, c.Clouds})
	}
	if err := writeRows(f, weatherSheet, rows); err != nil {
		return err
	}

	if report.History != nil {
		if _, err := f.NewSheet(historySheet); err != nil {
			return err
		}
		if err := writeMatrix(f, historySheet, *report.History); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeMatrix leaves missing cells empty.
func writeMatrix(f *excelize.File, sheet string, m standings.Matrix) error {
	header := []any{"Rider"}
	for _, race := range m.Races {
		header = append(header, race)
	}
	rows := [][]any{header}
	for i, rider := range m.Riders {
		row := []any{rider}
		for _, v := range m.Values[i] {
			if standings.IsMissing(v) {
				row = append(row, nil)
				continue
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
