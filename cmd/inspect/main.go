package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sprite-offsets/internal/anim"
	"sprite-offsets/internal/animdata"
	"sprite-offsets/internal/grid"
	"sprite-offsets/internal/offsets"
	"sprite-offsets/internal/resolve"
	"sprite-offsets/internal/sheet"
)

func main() {
	generic := flag.Bool("generic", false, "Skip the standard-layout fast path")
	animName := flag.String("anim", "", "Animation type (default: from file name)")
	animData := flag.String("animdata", "", "AnimData.xml to resolve declared frame sizes")
	rowList := flag.String("rows", "", "Comma-separated rows used for offsets (default: all)")
	boxes := flag.Bool("boxes", false, "Print the opaque box of every cell")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: inspect [flags] <sheet>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	img, err := sheet.Load(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	buf, err := sheet.Buffer(img)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sheet: %s (%dx%d)\n", filepath.Base(path), buf.Width(), buf.Height())
	if !buf.HasOpaque() {
		fmt.Println("  fully transparent")
	}

	name := *animName
	if name == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name = strings.TrimSuffix(strings.TrimSuffix(stem, "-Anim"), "-anim")
	}
	t := anim.Type(name)
	if known, ok := anim.Parse(name); ok {
		t = known
	}

	g, f := grid.Detect(buf, !*generic)
	fmt.Printf("Detected: grid %s, frame %s, score %.2f\n", g, f, grid.Score(buf, g.Columns, g.Rows, f.Width, f.Height))
	if g.Degenerate() {
		fmt.Println("  low confidence: no grid found")
	}

	req := resolve.Request{Sheet: buf, File: filepath.Base(path), Anim: t}
	if *animData != "" {
		doc, err := animdata.Parse(*animData)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		} else {
			req.Declared = doc
		}
	}
	res := resolve.New(!*generic).Resolve(req)
	fmt.Printf("Resolved (%s): grid %s, frame %s, source %s\n", t, res.Grid, res.Frame, res.Source)
	if res.DeclaredErr != nil {
		fmt.Printf("  declared size rejected: %v\n", res.DeclaredErr)
	}

	var rows []int
	if *rowList != "" {
		for _, s := range strings.Split(*rowList, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				fmt.Printf("Error: bad row %q\n", s)
				os.Exit(1)
			}
			rows = append(rows, n)
		}
	}
	off := offsets.Compute(buf, res.Grid, res.Frame, rows)
	fmt.Printf("Offsets: ground %d, center %d (ground line y=%d)\n",
		off.GroundY, off.CenterX, offsets.GroundLine(res.Frame.Height, off.GroundY))

	cellBoxes := offsets.Boxes(buf, res.Grid, res.Frame)
	fmt.Printf("Union box: %v\n", offsets.Union(cellBoxes, res.Grid, rows))
	if *boxes {
		for i, b := range cellBoxes {
			row, col := i/res.Grid.Columns, i%res.Grid.Columns
			if b.Empty() {
				fmt.Printf("  [%d,%d] empty\n", row, col)
				continue
			}
			fmt.Printf("  [%d,%d] %v (%dx%d)\n", row, col, b, b.Dx(), b.Dy())
		}
	}
}
