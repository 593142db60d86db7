package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"sprite-offsets/internal/adjust"
	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/catalog"
	"sprite-offsets/internal/config"
	"sprite-offsets/internal/loader"
	"sprite-offsets/internal/preview"
	"sprite-offsets/internal/resolve"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Path to base directory (default: auto-detect)")
	spriteDir := flag.String("sprites", "", "Sprite directory (default: <data>/sprite)")
	id := flag.String("id", "", "Subject id (required)")
	animName := flag.String("anim", "Idle", "Animation type, e.g. Idle, WalkLeft, Attack")
	out := flag.String("out", "", "Output WebP path (default: <output>/previews/<id>-<anim>.webp)")
	scale := flag.Int("scale", 0, "Upscale factor (default: preview_scale)")
	flag.Parse()

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		os.Exit(1)
	}
	t, ok := anim.Parse(*animName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown animation %q (known: %v)\n", *animName, anim.All)
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
	cfg.Resolve(config.Flags{DataDir: *dataDir, SpriteDir: *spriteDir})
	if *scale <= 0 {
		*scale = cfg.PreviewScale
	}

	sub, err := catalog.Open(*id, filepath.Join(cfg.SpriteDir, filepath.FromSlash(*id)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := adjust.Load(cfg.AdjustmentsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: adjustments: %v\n", err)
		store = adjust.NewStore()
	}

	l := loader.New([]*catalog.Subject{sub}, store, loader.Options{
		CacheSize: 1,
		Resolver: &resolve.Resolver{
			PreferStandard: cfg.Standard(),
			IgnoreStored:   anim.NewIgnoreSet(cfg.IgnoreStoredGridFor),
		},
	})
	clip, err := l.Load(context.Background(), *id, t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s %s: %s, grid %s, frame %s (%s), %d frames\n",
		clip.Subject, clip.Anim, clip.File, clip.Grid, clip.Frame, clip.Source, len(clip.Frames))
	fmt.Printf("  ground %d, center %d, reviewed %v\n", clip.Offsets.GroundY, clip.Offsets.CenterX, clip.Reviewed)
	if len(clip.Durations) > 0 {
		fmt.Printf("  durations %v\n", clip.Durations)
	}

	columns := clip.Grid.Columns
	if t.Direction() >= 0 {
		columns = 0
	}
	img := preview.ContactSheet(clip.Frames, preview.Options{Columns: columns, Scale: *scale})

	path := *out
	if path == "" {
		path = filepath.Join(cfg.OutputDir, "previews", filepath.FromSlash(clip.Subject)+"-"+string(clip.Anim)+".webp")
	}
	if err := preview.WriteFile(path, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Preview: %s\n", path)
}
