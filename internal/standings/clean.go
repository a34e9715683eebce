package standings

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"github.com/i474232898/motogp-standings/internal/common"
)

// ErrDataShape is returned when a table lacks the columns or cell values a
// riders' standings table must have.
var ErrDataShape = errors.New("unexpected standings table shape")

// RiderColumn names the column holding rider names.
const RiderColumn = "Rider"

// Columns that carry no race result. Older seasons lack some of them.
var nonResultColumns = []string{"Pos.", "Pos", "Bike", "Team", "Pts", "Points", "Constructor"}

// Status codes recorded instead of a finishing position. Matching is
// case-insensitive; the empty cell means "not entered".
var nonFinishMarkers = []string{
	"Ret", "DNF", "DNS", "NC", "WD", "DNQ", "DNPQ", "DSQ", "DQ",
	"EX", "EXC", "DNA", "DNP", "INJ", "C",
	"", "-", "–", "—",
}

// NonFinishMarkers returns the status codes that clean to a missing value.
func NonFinishMarkers() []string {
	return slices.Clone(nonFinishMarkers)
}

// IsNonFinish reports whether cell holds a non-finish status code.
func IsNonFinish(cell string) bool {
	return common.HasAnyFold(cell, nonFinishMarkers...)
}

// Clean turns a raw standings table into a rider by race matrix: non-result
// columns and trailing summary rows are dropped, status codes become missing
// values and riders listed more than once (mid-season team changes) are merged
// into a single row.
func Clean(raw RawTable) (Matrix, error) {
	if err := checkHeader(raw.Header); err != nil {
		return Matrix{}, err
	}

	rows := trimSummaryRows(raw.Header, raw.Rows)
	if len(rows) == 0 {
		return Matrix{}, fmt.Errorf("%w: no rider rows", ErrDataShape)
	}

	df, err := toDataFrame(raw.Header, rows)
	if err != nil {
		return Matrix{}, err
	}

	drop := lo.Filter(df.Names(), func(name string, _ int) bool {
		return lo.Contains(nonResultColumns, name)
	})
	if len(drop) > 0 {
		df = df.Drop(drop)
		if df.Err != nil {
			return Matrix{}, fmt.Errorf("%w: %v", ErrDataShape, df.Err)
		}
	}

	races := lo.Without(df.Names(), RiderColumn)
	if len(races) == 0 {
		return Matrix{}, fmt.Errorf("%w: no race columns", ErrDataShape)
	}

	riders := df.Col(RiderColumn).Records()
	results := make([][]string, len(races))
	for j, race := range races {
		results[j] = df.Col(race).Records()
	}

	out := Matrix{Races: races}
	seen := make(map[string]int, len(riders))

	for i, name := range riders {
		rider := riderLabel(name)
		if rider == "" {
			return Matrix{}, fmt.Errorf("%w: row %d has no rider name", ErrDataShape, i+1)
		}

		row := make([]float64, len(races))
		for j := range races {
			v, err := parseCell(results[j][i])
			if err != nil {
				return Matrix{}, fmt.Errorf("rider %q, race %s: %w", rider, races[j], err)
			}
			row[j] = v
		}

		if k, ok := seen[rider]; ok {
			mergeRow(out.Values[k], row)
			continue
		}
		seen[rider] = len(out.Riders)
		out.Riders = append(out.Riders, rider)
		out.Values = append(out.Values, row)
	}

	return out, nil
}

func checkHeader(header []string) error {
	if !slices.Contains(header, RiderColumn) {
		return fmt.Errorf("%w: missing %q column", ErrDataShape, RiderColumn)
	}
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: column %d has no name", ErrDataShape, i+1)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrDataShape, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// trimSummaryRows drops the footer rows a standings table ends with: a
// repeated header and a "Sources" line spanning every column.
func trimSummaryRows(header []string, rows [][]string) [][]string {
	riderIdx := slices.Index(header, RiderColumn)
	end := len(rows)
	for end > 0 && isSummaryRow(rows[end-1], riderIdx) {
		end--
	}
	return rows[:end]
}

func isSummaryRow(row []string, riderIdx int) bool {
	if riderIdx >= len(row) {
		return true
	}
	rider := strings.TrimSpace(row[riderIdx])
	if rider == "" || strings.EqualFold(rider, RiderColumn) {
		return true
	}
	if len(row) < 2 {
		return false
	}
	return len(lo.Uniq(row)) == 1
}

func toDataFrame(header []string, rows [][]string) (dataframe.DataFrame, error) {
	columns := make([][]string, len(header))
	for i := range columns {
		columns[i] = make([]string, 0, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(header) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrDataShape, r+1, len(row), len(header))
		}
		for i, cell := range row {
			columns[i] = append(columns[i], cell)
		}
	}

	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New(columns[i], series.String, name)
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %v", ErrDataShape, df.Err)
	}
	return df, nil
}

func riderLabel(name string) string {
	return common.Collapse(norm.NFC.String(name))
}

func parseCell(cell string) (float64, error) {
	s := common.Collapse(cell)
	if IsNonFinish(s) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: cell %q is neither a position nor a known status", ErrDataShape, cell)
	}
	if v < 1 || v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: cell %q is not a finishing position", ErrDataShape, cell)
	}
	return v, nil
}

// mergeRow fills the missing cells of dst from src. The first row seen for a
// rider wins wherever both rows hold a result.
func mergeRow(dst, src []float64) {
	for j, v := range dst {
		if IsMissing(v) {
			dst[j] = src[j]
		}
	}
}
