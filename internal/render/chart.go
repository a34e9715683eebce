package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/i474232898/motogp-standings/internal/standings"
	"github.com/i474232898/motogp-standings/internal/weather"
)

// ErrNothingToPlot is returned for a matrix without riders or races.
var ErrNothingToPlot = errors.New("nothing to plot")

const (
	chartWidth  = 900
	chartHeight = 400
)

// ChartInput is what a standings chart is drawn from.
type ChartInput struct {
	Title     string
	Standings standings.Matrix
	Weather   weather.Record
	// History, when set, is drawn as a dashed line per rider.
	History *standings.Matrix
}

// Chart draws one line per rider through their finishing places, races on
// the X axis and first place at the top, and writes it to w as PNG.
func Chart(w io.Writer, in ChartInput) error {
	m := in.Standings
	if len(m.Riders) == 0 || len(m.Races) == 0 {
		return ErrNothingToPlot
	}

	p := plot.New()
	p.Title.Text = in.Title
	if p.Title.Text == "" {
		p.Title.Text = "Riders' standings"
	}
	p.X.Label.Text = "Races"
	p.Y.Label.Text = "Place"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Y.Tick.Marker = placeTicks{}
	p.Legend.Top = true
	p.NominalX(raceLabels(m.Races, in.Weather)...)

	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	p.Add(grid)

	for i, rider := range m.Riders {
		c := plotutil.Color(i)
		pts := finishes(m.Values[i])

		if len(pts) > 0 {
			line, marks, err := plotter.NewLinePoints(pts)
			if err != nil {
				return fmt.Errorf("plot %s: %w", rider, err)
			}
			line.Color = c
			marks.Color = c
			marks.Shape = draw.CircleGlyph{}
			marks.Radius = vg.Points(5.5)
			p.Add(line, marks)
			p.Legend.Add(rider, line, marks)

			places, err := placeLabels(pts)
			if err != nil {
				return fmt.Errorf("plot %s: %w", rider, err)
			}
			p.Add(places)
		}

		// Last name next to the first race, when it was finished.
		if first := m.Values[i][0]; !standings.IsMissing(first) {
			name, err := plotter.NewLabels(plotter.XYLabels{
				XYs:    []plotter.XY{{X: -0.3, Y: first}},
				Labels: []string{lastName(rider)},
			})
			if err != nil {
				return fmt.Errorf("plot %s: %w", rider, err)
			}
			for k := range name.TextStyle {
				name.TextStyle[k].XAlign = text.XRight
				name.TextStyle[k].YAlign = text.YCenter
			}
			p.Add(name)
		}

		if in.History != nil {
			if err := addHistory(p, *in.History, rider, m.Races, c); err != nil {
				return err
			}
		}
	}

	wt, err := p.WriterTo(vg.Points(chartWidth), vg.Points(chartHeight), "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func addHistory(p *plot.Plot, history standings.Matrix, rider string, races []string, c color.Color) error {
	var pts plotter.XYs
	for j, race := range races {
		if v, ok := history.At(rider, race); ok {
			pts = append(pts, plotter.XY{X: float64(j), Y: v})
		}
	}
	if len(pts) == 0 {
		return nil
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("plot %s history: %w", rider, err)
	}
	line.Color = c
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(line)
	p.Legend.Add(rider+" (3-season avg)", line)
	return nil
}

func finishes(row []float64) plotter.XYs {
	var pts plotter.XYs
	for j, v := range row {
		if standings.IsMissing(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(j), Y: v})
	}
	return pts
}

// placeLabels writes the place inside every marker.
func placeLabels(pts plotter.XYs) (*plotter.Labels, error) {
	labels := make([]string, len(pts))
	for k, pt := range pts {
		labels[k] = strconv.Itoa(int(math.Round(pt.Y)))
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return nil, err
	}
	for k := range l.TextStyle {
		l.TextStyle[k].Color = color.White
		l.TextStyle[k].XAlign = text.XCenter
		l.TextStyle[k].YAlign = text.YCenter
		l.TextStyle[k].Font.Size = vg.Points(7)
	}
	return l, nil
}

func raceLabels(races []string, record weather.Record) []string {
	labels := make([]string, len(races))
	for j, race := range races {
		labels[j] = race
		if c, ok := record[race]; ok && c.TrackWet != "" {
			labels[j] = race + "\n" + c.TrackWet
		}
	}
	return labels
}

func lastName(rider string) string {
	fields := strings.Fields(rider)
	if len(fields) == 0 {
		return rider
	}
	return fields[len(fields)-1]
}

// placeTicks puts a tick on every whole place.
type placeTicks struct{}

func (placeTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for v := math.Ceil(min); v <= max; v++ {
		if v < 1 {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}
	return ticks
}
