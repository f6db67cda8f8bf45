// Package render draws forecast and country charts with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sartorproj/tfpforecast/dataset"
	"github.com/sartorproj/tfpforecast/forecast"
	"github.com/sartorproj/tfpforecast/timeseries"
)

// Chart defaults.
const (
	ForecastTitle = "Total Factor Productivity (TFP) by Year"
	SourceCaption = "Source: Agricultural total factor productivity (USDA), OWID"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("nothing to plot")

// Options customizes chart text. Empty fields take the chart's default.
type Options struct {
	Title   string
	Caption string
}

func (o Options) title(def string) string {
	if o.Title != "" {
		return o.Title
	}
	return def
}

func (o Options) caption() string {
	if o.Caption != "" {
		return o.Caption
	}
	return SourceCaption
}

// ForecastChart draws each country's history as a solid line and its
// forecast as a dashed line of the same colour.
func ForecastChart(results []forecast.Result, opts Options) (*plot.Plot, error) {
	if len(results) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(opts.title(ForecastTitle), opts.caption(), "TFP")

	for i, r := range results {
		c := plotutil.Color(i)

		hist, err := seriesLine(r.Historical, c)
		if err != nil {
			return nil, fmt.Errorf("%s history: %w", r.Country, err)
		}
		proj, err := seriesLine(r.Forecast, c)
		if err != nil {
			return nil, fmt.Errorf("%s forecast: %w", r.Country, err)
		}
		proj.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

		p.Add(hist, proj)
		p.Legend.Add(r.Country, hist)
		p.Legend.Add(r.Country+" (forecast)", proj)
	}

	return p, nil
}

// CountryChart draws the yearly total of the "_output_" measures of each
// country. Every country must be present in table.
func CountryChart(table *dataset.Table, countries []string, opts Options) (*plot.Plot, error) {
	if len(countries) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(opts.title("Total output of "+strings.Join(countries, ", ")), opts.caption(), "Total output")

	for i, country := range countries {
		if !table.HasCountry(country) {
			return nil, fmt.Errorf("country %q does not exist", country)
		}

		rows := table.Rows(country)
		xys := make(plotter.XYs, len(rows))
		for j, r := range rows {
			xys[j].X = float64(r.Year)
			xys[j].Y = r.TotalOutput()
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", country, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)

		p.Add(line)
		p.Legend.Add(country, line)
	}

	return p, nil
}

// Save writes p to path. The format follows the extension (png, svg, pdf, ...).
func Save(p *plot.Plot, path string, width, height vg.Length) error {
	return p.Save(width, height, path)
}

// WriteTo encodes p in format ("png", "svg", ...) to w.
func WriteTo(p *plot.Plot, w io.Writer, format string, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func newPlot(title, caption, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year\n" + caption
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p
}

func seriesLine(s *timeseries.Series, c color.Color) (*plotter.Line, error) {
	if s == nil || s.Len() == 0 {
		return nil, ErrNoData
	}

	xys := make(plotter.XYs, s.Len())
	for i, pt := range s.Points() {
		xys[i].X = float64(pt.Period)
		xys[i].Y = pt.Value
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	return line, nil
}
