package wikipedia

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/common"
	"github.com/i474232898/motogp-standings/internal/fetch"
	"github.com/i474232898/motogp-standings/internal/standings"
)

// ErrTableNotFound is returned when a page has no riders' standings table.
var ErrTableNotFound = errors.New("riders' standings table not found")

const (
	// DefaultURLTemplate is formatted with the season year.
	DefaultURLTemplate = "https://en.wikipedia.org/wiki/%d_MotoGP_World_Championship"
	// DefaultMarkerColumn only appears in the riders' standings table.
	DefaultMarkerColumn = "Bike"
)

// Getter downloads a document.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Scraper extracts the riders' standings table from a season page.
type Scraper struct {
	getter       Getter
	urlTemplate  string
	markerColumn string
	logger       *zap.Logger
}

func NewScraper(getter Getter, urlTemplate string, logger *zap.Logger) *Scraper {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &Scraper{
		getter:       getter,
		urlTemplate:  urlTemplate,
		markerColumn: DefaultMarkerColumn,
		logger:       logger,
	}
}

func (s *Scraper) Name() string {
	return "wikipedia"
}

// FetchStandings downloads the season page and returns its standings table.
func (s *Scraper) FetchStandings(ctx context.Context, season int) (standings.RawTable, error) {
	url := fmt.Sprintf(s.urlTemplate, season)
	s.logger.Info("scraping riders' standings", zap.Int("season", season), zap.String("url", url))

	body, err := s.getter.Get(ctx, url)
	if err != nil {
		return standings.RawTable{}, err
	}

	table, err := ParseStandings(bytes.NewReader(body), s.markerColumn)
	if err != nil {
		return standings.RawTable{}, fmt.Errorf("season %d: %w", season, err)
	}
	return table, nil
}

// ParseStandings returns the first wikitable of the document whose header has
// markerColumn. Footnote superscripts are removed from every cell.
func ParseStandings(r io.Reader, markerColumn string) (standings.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return standings.RawTable{}, fmt.Errorf("%w: %v", fetch.ErrParse, err)
	}

	doc.Find("sup").Remove()

	var (
		found    standings.RawTable
		ok       bool
		parseErr error
	)
	doc.Find("table.wikitable").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		grid := expandTable(table)
		if len(grid) == 0 || !slices.Contains(grid[0], markerColumn) {
			return true
		}

		header, rows := grid[0], grid[1:]
		for i, row := range rows {
			if len(row) < len(header) {
				parseErr = fmt.Errorf("%w: standings row %d has %d cells, header has %d",
					fetch.ErrParse, i+1, len(row), len(header))
				return false
			}
			rows[i] = row[:len(header)]
		}

		found = standings.RawTable{Header: header, Rows: rows}
		ok = true
		return false
	})

	if parseErr != nil {
		return standings.RawTable{}, parseErr
	}
	if !ok {
		return standings.RawTable{}, ErrTableNotFound
	}
	return found, nil
}

type pendingCell struct {
	text string
	rows int
}

// expandTable flattens the rows of table into a text grid, repeating cells
// across their rowspan and colspan. Rows of nested tables are ignored.
func expandTable(table *goquery.Selection) [][]string {
	var grid [][]string
	pending := map[int]pendingCell{}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(table) {
			return
		}

		var row []string
		col := 0
		fillPending := func() {
			for {
				p, ok := pending[col]
				if !ok {
					return
				}
				row = append(row, p.text)
				if p.rows--; p.rows == 0 {
					delete(pending, col)
				} else {
					pending[col] = p
				}
				col++
			}
		}

		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			fillPending()

			text := common.Collapse(cell.Text())
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			for k := 0; k < colspan; k++ {
				row = append(row, text)
				if rowspan > 1 {
					pending[col] = pendingCell{text: text, rows: rowspan - 1}
				}
				col++
			}
		})
		fillPending()

		grid = append(grid, row)
	})

	return grid
}

func spanAttr(cell *goquery.Selection, name string) int {
	v, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
