package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sprite-offsets/internal/adjust"
	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/catalog"
	"sprite-offsets/internal/config"
	"sprite-offsets/internal/editor"
	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/preview"
	"sprite-offsets/internal/resolve"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Path to base directory (default: auto-detect)")
	spriteDir := flag.String("sprites", "", "Sprite directory (default: <data>/sprite)")
	adjustments := flag.String("adjustments", "", "Adjustments file (default: <data>/offset_adjustments.json)")
	id := flag.String("id", "", "Subject id to edit (required)")
	ground := flag.String("ground", "", "Set ground offset (pixels above the frame bottom)")
	center := flag.String("center", "", "Set horizontal center offset")
	hitbox := flag.String("hitbox", "", "Set hitbox as x,y,w,h in frame coordinates (\"none\" clears)")
	gridSpec := flag.String("grid", "", "Override grid as COLSxROWS")
	recompute := flag.Bool("recompute", false, "Re-measure offsets on the current grid")
	previewOut := flag.String("preview", "", "Write a WebP preview of the result to this path")
	commit := flag.Bool("commit", false, "Save the record as reviewed")
	forget := flag.Bool("forget", false, "Delete the subject's record and exit")
	flag.Parse()

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		os.Exit(1)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{DataDir: *dataDir, SpriteDir: *spriteDir, Adjustments: *adjustments})

	store, err := adjust.Load(cfg.AdjustmentsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading adjustments: %v\n", err)
		os.Exit(1)
	}

	if *forget {
		if err := editor.Forget(store, *id, cfg.AdjustmentsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %s from %s\n", *id, cfg.AdjustmentsFile)
		return
	}

	sub, err := catalog.Open(*id, filepath.Join(cfg.SpriteDir, filepath.FromSlash(*id)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	session, err := editor.Open(sub, store, editor.Options{
		Resolver: &resolve.Resolver{
			PreferStandard: cfg.Standard(),
			IgnoreStored:   anim.NewIgnoreSet(cfg.IgnoreStoredGridFor),
		},
		PrimaryAnimations: cfg.PrimaryAnimations,
		OffsetRows:        cfg.OffsetRows,
		StorePath:         cfg.AdjustmentsFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Subject %s, sheet %s (%s)\n", sub.ID, session.Record.PrimarySpriteFile, session.Source)
	if session.Existing {
		fmt.Println("  stored record found")
	}
	printRecord("Before", session.Record)

	if *gridSpec != "" {
		g, err := parseGrid(*gridSpec)
		if err == nil {
			err = session.SetGrid(g)
		}
		check(err)
	}
	if *recompute {
		session.Recompute()
	}
	if *ground != "" {
		n, err := strconv.Atoi(*ground)
		if err == nil {
			err = session.SetGround(n)
		}
		check(err)
	}
	if *center != "" {
		n, err := strconv.Atoi(*center)
		if err == nil {
			err = session.SetCenter(n)
		}
		check(err)
	}
	if *hitbox != "" {
		hb, err := parseHitbox(*hitbox)
		check(err)
		session.SetHitbox(hb)
	}

	printRecord("After", session.Record)

	if *previewOut != "" {
		img, err := session.Preview(cfg.PreviewScale)
		check(err)
		check(preview.WriteFile(*previewOut, img))
		fmt.Printf("Preview: %s\n", *previewOut)
	}

	if *commit {
		check(session.Commit())
		fmt.Printf("Committed %s as reviewed to %s\n", sub.ID, cfg.AdjustmentsFile)
	} else {
		fmt.Println("Not committed (use -commit)")
	}
}

func printRecord(label string, r adjust.Record) {
	fmt.Printf("%s:\n", label)
	if r.Grid != nil && r.Frame != nil {
		fmt.Printf("  grid %s, frame %s\n", *r.Grid, *r.Frame)
	}
	fmt.Printf("  ground %d, center %d, reviewed %v\n", r.GroundOffsetY, r.CenterOffsetX, r.Reviewed)
	if r.Hitbox.Empty() {
		fmt.Println("  hitbox none")
	} else {
		fmt.Printf("  hitbox x=%d y=%d w=%d h=%d\n", r.Hitbox.Min.X, r.Hitbox.Min.Y, r.Hitbox.Dx(), r.Hitbox.Dy())
	}
}

func parseGrid(s string) (grid.Grid, error) {
	cols, rows, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return grid.Grid{}, fmt.Errorf("bad grid %q, want COLSxROWS", s)
	}
	c, err1 := strconv.Atoi(cols)
	r, err2 := strconv.Atoi(rows)
	if err1 != nil || err2 != nil || c < 1 || r < 1 {
		return grid.Grid{}, fmt.Errorf("bad grid %q, want COLSxROWS", s)
	}
	return grid.Grid{Columns: c, Rows: r}, nil
}

func parseHitbox(s string) (image.Rectangle, error) {
	if strings.EqualFold(s, "none") {
		return image.Rectangle{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("bad hitbox %q, want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("bad hitbox %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, nil
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
