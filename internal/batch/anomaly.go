package batch

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Kind classifies an anomaly.
type Kind string

const (
	KindGround     Kind = "ground_offset"  // ground gap above the configured share of the frame
	KindRows       Kind = "row_mismatch"   // row count differs from the primary sheet
	KindDegenerate Kind = "degenerate"     // 1x1 grid on a sheet with content
	KindDeclared   Kind = "declared"       // declared frame size unusable
	KindStray      Kind = "stray_pixels"   // specks detached from the sprite body
	KindOutlier    Kind = "ground_outlier" // catalog-wide z-score outlier
	KindAnimData   Kind = "animdata"       // AnimData.xml failed to parse
	KindUnreadable Kind = "unreadable"     // sheet failed to decode
	KindPreview    Kind = "preview"        // preview could not be written
)

// strayRatio is the component size, as a share of a cell's opaque pixels,
// below which a detached group counts as stray.
const strayRatio = 0.02

// Anomaly is a finding worth a human look. Anomalies never fail a subject.
type Anomaly struct {
	Subject   string `json:"subject"`
	Animation string `json:"animation,omitempty"`
	Kind      Kind   `json:"kind"`
	Detail    string `json:"detail"`
}

func sheetAnomalies(cfg Config, id string, a, primary *analysed) []Anomaly {
	var out []Anomaly
	add := func(kind Kind, format string, args ...any) {
		out = append(out, Anomaly{Subject: id, Animation: a.name, Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}

	if h := a.res.Frame.Height; cfg.GroundRatio > 0 && h > 0 && float64(a.off.GroundY) > cfg.GroundRatio*float64(h) {
		add(KindGround, "ground offset %d of frame height %d", a.off.GroundY, h)
	}
	if a != primary && a.res.Grid.Rows != primary.res.Grid.Rows {
		add(KindRows, "%d rows, primary %s has %d", a.res.Grid.Rows, primary.name, primary.res.Grid.Rows)
	}
	if a.res.Grid.Degenerate() && a.buf.HasOpaque() {
		add(KindDegenerate, "no grid found in %dx%d sheet", a.buf.Width(), a.buf.Height())
	}
	if a.res.DeclaredErr != nil {
		add(KindDeclared, "%v", a.res.DeclaredErr)
	}
	if pixels, cells := strayCells(a); cells > 0 {
		add(KindStray, "%d stray pixels in %d cells", pixels, cells)
	}
	return out
}

func strayCells(a *analysed) (pixels, cells int) {
	g, f := a.res.Grid, a.res.Frame
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			cell := image.Rect(col*f.Width, row*f.Height, (col+1)*f.Width, (row+1)*f.Height)
			if n := a.buf.StrayPixels(cell, strayRatio); n > 0 {
				pixels += n
				cells++
			}
		}
	}
	return pixels, cells
}

// Outliers flags subjects whose ground offset, as a share of frame
// height, lies more than z standard deviations from the catalog mean.
func Outliers(results []Result, z float64) []Anomaly {
	var ids []string
	var ratios []float64
	for _, r := range results {
		if !r.Success || r.Proposal.Frame == nil || r.Proposal.Frame.Height <= 0 {
			continue
		}
		ids = append(ids, r.ID)
		ratios = append(ratios, float64(r.Proposal.GroundOffsetY)/float64(r.Proposal.Frame.Height))
	}
	if len(ratios) < 3 {
		return nil
	}

	mean, std := stat.MeanStdDev(ratios, nil)
	if std == 0 || math.IsNaN(std) {
		return nil
	}

	var out []Anomaly
	for i, v := range ratios {
		score := (v - mean) / std
		if math.Abs(score) > z {
			out = append(out, Anomaly{
				Subject: ids[i],
				Kind:    KindOutlier,
				Detail:  fmt.Sprintf("ground ratio %.2f, catalog mean %.2f, z %.1f", v, mean, score),
			})
		}
	}
	return out
}
