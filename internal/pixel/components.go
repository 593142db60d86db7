package pixel

import "image"

// StrayPixels counts opaque pixels in r that belong to small disconnected
// groups: 8-connected components holding less than minRatio of r's opaque
// pixels. Such specks stretch the opaque bounds of a cell. It returns 0
// when r has fewer than two components.
func (b *Buffer) StrayPixels(r image.Rectangle, minRatio float64) int {
	r = r.Intersect(b.Bounds())
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return 0
	}

	opaque := make([]bool, w*h)
	total := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if b.Opaque(r.Min.X+x, r.Min.Y+y) {
				opaque[y*w+x] = true
				total++
			}
		}
	}
	if total == 0 {
		return 0
	}

	// 8-connected flood fill BFS
	labels := make([]int, w*h)
	for i := range labels {
		labels[i] = -1
	}
	var sizes []int

	dx := [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	dy := [8]int{-1, -1, -1, 0, 0, 1, 1, 1}
	queue := make([]int, 0, 256)

	for idx := range opaque {
		if !opaque[idx] || labels[idx] >= 0 {
			continue
		}
		id := len(sizes)
		queue = append(queue[:0], idx)
		labels[idx] = id
		size := 0
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			size++
			cx, cy := curr%w, curr/w
			for d := 0; d < 8; d++ {
				nx, ny := cx+dx[d], cy+dy[d]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if opaque[ni] && labels[ni] < 0 {
					labels[ni] = id
					queue = append(queue, ni)
				}
			}
		}
		sizes = append(sizes, size)
	}

	if len(sizes) <= 1 {
		return 0
	}
	minSize := int(float64(total) * minRatio)
	stray := 0
	for _, s := range sizes {
		if s < minSize {
			stray += s
		}
	}
	return stray
}
