package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/okian/loadmon/internal/domain/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	chartWidth  = 11 * vg.Inch
	chartHeight = 6 * vg.Inch
)

// Chart draws a two-panel PNG of the player's history: raw and rolling load
// on top, readiness below, with a dashed marker at date.
func (r *Reporter) Chart(w io.Writer, playerID string, date time.Time, history []model.DailyRow) error {
	name := playerID
	if len(history) > 0 && history[len(history)-1].PlayerName != "" {
		name = history[len(history)-1].PlayerName
	}

	loadCols := []string{r.loadColumn}
	if len(r.rolling) > 0 {
		loadCols = append(loadCols, r.rolling[0])
	}
	top, err := panel(history, loadCols, date, "Load")
	if err != nil {
		return err
	}
	top.Title.Text = fmt.Sprintf("Player Snapshot: %s (%s) | through %s", name, playerID, model.FormatDate(date))

	bottom, err := panel(history, []string{model.ColReadinessScore}, date, "Readiness (z)")
	if err != nil {
		return err
	}
	bottom.X.Label.Text = "Date"

	plots := [][]*plot.Plot{{top}, {bottom}}
	img := vgimg.New(chartWidth, chartHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      3 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// panel plots cols over time. Missing values split a series into segments.
func panel(history []model.DailyRow, cols []string, date time.Time, ylabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 02"}
	p.Legend.Top = true
	p.Legend.Left = true

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, col := range cols {
		for k, seg := range segments(history, col) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return nil, fmt.Errorf("plot %s: %w", col, err)
			}
			line.LineStyle.Color = plotutil.Color(i)
			line.LineStyle.Width = vg.Points(1.5)
			p.Add(line)
			if k == 0 {
				p.Legend.Add(col, line)
			}
			for _, pt := range seg {
				lo, hi = math.Min(lo, pt.Y), math.Max(hi, pt.Y)
			}
		}
	}
	if math.IsInf(lo, 0) {
		lo, hi = 0, 1
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	x := float64(model.Day(date).Unix())
	marker, err := plotter.NewLine(plotter.XYs{{X: x, Y: lo}, {X: x, Y: hi}})
	if err != nil {
		return nil, fmt.Errorf("plot marker: %w", err)
	}
	marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	marker.LineStyle.Color = plotutil.Color(len(cols) + 1)
	p.Add(marker)
	return p, nil
}

// segments splits a column's history into runs of consecutive present values.
func segments(history []model.DailyRow, col string) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for _, row := range history {
		v, _ := row.Value(col)
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(row.Date.Unix()), Y: *v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
