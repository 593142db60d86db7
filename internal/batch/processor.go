package batch

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sprite-offsets/internal/adjust"
	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/catalog"
	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/offsets"
	"sprite-offsets/internal/pixel"
	"sprite-offsets/internal/preview"
	"sprite-offsets/internal/resolve"
	"sprite-offsets/internal/sheet"
	"sprite-offsets/internal/slicer"
)

const maxPreviewWidth = 2048

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir string
	Resolver  *resolve.Resolver
	// Store is read by workers only; results are merged by the caller.
	Store             *adjust.Store
	PrimaryAnimations []string
	OffsetRows        []int
	GroundRatio       float64
	Previews          bool
	PreviewScale      int
	Workers           int
	// Quiet disables the progress reporter.
	Quiet bool
}

// SheetResult is the resolved geometry and offsets of one sheet.
type SheetResult struct {
	Animation     string          `json:"animation"`
	File          string          `json:"file"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	Grid          grid.Grid       `json:"grid"`
	Frame         grid.Frame      `json:"frame"`
	Source        string          `json:"source"`
	Offsets       offsets.Offsets `json:"offsets"`
	DeclaredError string          `json:"declared_error,omitempty"`
}

// Result holds the outcome of processing one subject.
type Result struct {
	ID        string
	Primary   string
	Sheets    []SheetResult
	Proposal  adjust.Record
	Anomalies []Anomaly
	Success   bool
	Error     string
}

// Run processes all subjects using a worker pool.
func Run(cfg Config, subjects []*catalog.Subject) []Result {
	total := len(subjects)
	results := make([]Result, total)
	var processed atomic.Int64
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && !cfg.Quiet {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f subjects/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	subjectChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range subjectChan {
				results[idx] = processSubject(cfg, subjects[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range subjects {
		subjectChan <- i
	}
	close(subjectChan)

	wg.Wait()
	close(done)

	return results
}

// Merge writes every successful proposal into store without forcing, so
// reviewed records survive. It returns how many proposals were accepted
// and how many were held back by a reviewed record.
func Merge(store *adjust.Store, results []Result) (accepted, kept int) {
	for _, r := range results {
		if !r.Success {
			continue
		}
		if store.Put(r.Proposal, false) {
			accepted++
		} else {
			kept++
		}
	}
	return accepted, kept
}

type analysed struct {
	name string
	path string
	img  *image.NRGBA
	buf  *pixel.Buffer
	res  resolve.Result
	off  offsets.Offsets
}

func processSubject(cfg Config, sub *catalog.Subject) Result {
	result := Result{ID: sub.ID}

	doc, err := sub.LoadAnimData()
	if err != nil {
		result.Anomalies = append(result.Anomalies, Anomaly{Subject: sub.ID, Kind: KindAnimData, Detail: err.Error()})
	}

	var stored *adjust.Record
	storedFile := ""
	if cfg.Store != nil {
		if rec, ok := cfg.Store.Get(sub.ID); ok {
			stored = &rec
			storedFile = rec.PrimarySpriteFile
		}
	}

	primaryName, _, err := sub.Primary(cfg.PrimaryAnimations, storedFile)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	var primary *analysed
	var sheets []*analysed
	for _, name := range sub.Animations() {
		path, err := sub.SheetPath(name)
		if err != nil {
			continue
		}
		img, err := sheet.Load(path)
		if err != nil {
			result.Anomalies = append(result.Anomalies, Anomaly{Subject: sub.ID, Animation: name, Kind: KindUnreadable, Detail: err.Error()})
			continue
		}
		buf, err := sheet.Buffer(img)
		if err != nil {
			result.Anomalies = append(result.Anomalies, Anomaly{Subject: sub.ID, Animation: name, Kind: KindUnreadable, Detail: err.Error()})
			continue
		}

		t := anim.Type(name)
		if known, ok := anim.Parse(name); ok {
			t = known
		}
		res := cfg.Resolver.Resolve(resolve.Request{
			Sheet:    buf,
			File:     filepath.Base(path),
			Anim:     t,
			Declared: doc,
			Stored:   stored,
		})
		a := &analysed{
			name: name,
			path: path,
			img:  img,
			buf:  buf,
			res:  res,
			off:  offsets.Compute(buf, res.Grid, res.Frame, cfg.OffsetRows),
		}
		sheets = append(sheets, a)
		if strings.EqualFold(name, primaryName) {
			primary = a
		}
	}

	if primary == nil {
		result.Error = fmt.Sprintf("primary sheet %s unreadable", primaryName)
		return result
	}

	for _, a := range sheets {
		sr := SheetResult{
			Animation: a.name,
			File:      filepath.Base(a.path),
			Width:     a.buf.Width(),
			Height:    a.buf.Height(),
			Grid:      a.res.Grid,
			Frame:     a.res.Frame,
			Source:    a.res.Source.String(),
			Offsets:   a.off,
		}
		if a.res.DeclaredErr != nil {
			sr.DeclaredError = a.res.DeclaredErr.Error()
		}
		result.Sheets = append(result.Sheets, sr)
		result.Anomalies = append(result.Anomalies, sheetAnomalies(cfg, sub.ID, a, primary)...)
	}

	rec := adjust.Record{
		UniqueID:          sub.ID,
		GroundOffsetY:     primary.off.GroundY,
		CenterOffsetX:     primary.off.CenterX,
		PrimarySpriteFile: filepath.Base(primary.path),
	}
	rec.SetGeometry(primary.res.Grid, primary.res.Frame)
	rec.Hitbox = offsets.Union(offsets.Boxes(primary.buf, primary.res.Grid, primary.res.Frame), primary.res.Grid, cfg.OffsetRows)
	if stored != nil {
		rec.AnimationFiles = stored.AnimationFiles
	}
	result.Primary = primary.name
	result.Proposal = rec

	if cfg.Previews {
		if err := writePreview(cfg, sub.ID, primary, rec.Hitbox); err != nil {
			result.Anomalies = append(result.Anomalies, Anomaly{Subject: sub.ID, Animation: primary.name, Kind: KindPreview, Detail: err.Error()})
		}
	}

	result.Success = true
	return result
}

func writePreview(cfg Config, id string, a *analysed, hitbox image.Rectangle) error {
	frames, err := slicer.Slice(a.img, a.res.Grid, a.res.Frame, slicer.Selection{}, slicer.Selection{},
		slicer.Options{GroundOffsetY: a.off.GroundY})
	if err != nil {
		return err
	}
	img := preview.ContactSheet(frames, preview.Options{
		Columns:  a.res.Grid.Columns,
		Scale:    cfg.PreviewScale,
		MaxWidth: maxPreviewWidth,
		Hitbox:   hitbox,
	})
	return preview.WriteFile(PreviewPath(cfg.OutputDir, id), img)
}

// PreviewPath is where the batch writes a subject's contact sheet.
func PreviewPath(outputDir, id string) string {
	return filepath.Join(outputDir, "previews", filepath.FromSlash(id)+".webp")
}
