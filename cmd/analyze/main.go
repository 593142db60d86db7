package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sprite-offsets/internal/adjust"
	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/batch"
	"sprite-offsets/internal/catalog"
	"sprite-offsets/internal/config"
	"sprite-offsets/internal/resolve"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Analyse only the first N subjects")
	only := flag.String("id", "", "Analyse only this subject id (prefix match, e.g. 0025)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	dataDir := flag.String("data", "", "Path to base directory (default: auto-detect)")
	spriteDir := flag.String("sprites", "", "Sprite directory (default: <data>/sprite)")
	adjustments := flag.String("adjustments", "", "Adjustments file (default: <data>/offset_adjustments.json)")
	outputDir := flag.String("output", "", "Report directory (default: <data>/analysis)")
	generic := flag.Bool("generic", false, "Skip the standard-layout fast path")
	previews := flag.Bool("previews", false, "Write a WebP contact sheet per subject")
	dryRun := flag.Bool("dry-run", false, "Do not write the adjustments file")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		DataDir:     *dataDir,
		SpriteDir:   *spriteDir,
		Adjustments: *adjustments,
		OutputDir:   *outputDir,
		Workers:     *workers,
		Generic:     *generic,
	})

	if cfg.BaseDir == "" && cfg.SpriteDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find sprite directory. Use -data or -sprites.")
		os.Exit(1)
	}

	subjects, err := catalog.Scan(cfg.SpriteDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning sprites: %v\n", err)
		os.Exit(1)
	}

	// Filter by id
	if *only != "" {
		var filtered []*catalog.Subject
		for _, s := range subjects {
			if s.ID == *only || strings.HasPrefix(s.ID, *only+"/") {
				filtered = append(filtered, s)
			}
		}
		subjects = filtered
	}

	// Limit for testing
	if *testN > 0 && *testN < len(subjects) {
		subjects = subjects[:*testN]
	}

	if len(subjects) == 0 {
		fmt.Println("No subjects to analyse.")
		os.Exit(0)
	}

	store, err := adjust.Load(cfg.AdjustmentsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading adjustments: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Adjustments: %d records loaded\n", store.Len())

	// Print summary
	mode := ""
	if *only != "" {
		mode = fmt.Sprintf(" (ID %s)", *only)
	} else if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("Sprite sheet offset analysis%s\n", mode)
	fmt.Printf("Subjects: %d, Workers: %d, Standard layouts: %v\n", len(subjects), cfg.Workers, cfg.Standard())
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir: cfg.OutputDir,
		Resolver: &resolve.Resolver{
			PreferStandard: cfg.Standard(),
			IgnoreStored:   anim.NewIgnoreSet(cfg.IgnoreStoredGridFor),
		},
		Store:             store,
		PrimaryAnimations: cfg.PrimaryAnimations,
		OffsetRows:        cfg.OffsetRows,
		GroundRatio:       cfg.AnomalyGroundRatio,
		Previews:          *previews,
		PreviewScale:      cfg.PreviewScale,
		Workers:           cfg.Workers,
	}

	results := batch.Run(batchCfg, subjects)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Analysed: %d/%d\n", success, len(subjects))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(20, len(errors))
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.ID, e.Error)
		}
	}

	anomalies := append(batch.Anomalies(results), batch.Outliers(results, cfg.OutlierZ)...)
	if len(anomalies) > 0 {
		fmt.Printf("\nAnomalies (%d):\n", len(anomalies))
		limit := min(20, len(anomalies))
		for _, a := range anomalies[:limit] {
			fmt.Printf("  %s %s [%s] %s\n", a.Subject, a.Animation, a.Kind, a.Detail)
		}
	}

	// Merge proposals
	accepted, kept := batch.Merge(store, results)
	fmt.Printf("\nProposals: %d written, %d held by reviewed records\n", accepted, kept)
	if *dryRun {
		fmt.Println("Dry run: adjustments not saved")
	} else if err := store.Save(cfg.AdjustmentsFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving adjustments: %v\n", err)
		os.Exit(1)
	} else {
		fmt.Printf("Adjustments: %s\n", cfg.AdjustmentsFile)
	}

	// Write report
	reportPath := filepath.Join(cfg.OutputDir, "report.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	runID := batch.NewRunID()
	if err := batch.WriteReport(reportPath, runID, results, anomalies); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: report write failed: %v\n", err)
	} else {
		fmt.Printf("Report: %s (run %s)\n", reportPath, runID)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
