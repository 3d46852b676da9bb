package atlas

import (
	"math"
	"sort"
	"sync"
)

// offset is a search window displacement and its length.
type offset struct {
	dx, dy int
	dist   float32
}

var (
	offsetsMu    sync.Mutex
	offsetsCache = map[int][]offset{}
)

// searchOffsets returns every displacement within radius spread, nearest
// first, so the first opposite texel found is the nearest one.
func searchOffsets(spread int) []offset {
	offsetsMu.Lock()
	defer offsetsMu.Unlock()
	if offs, ok := offsetsCache[spread]; ok {
		return offs
	}
	offs := make([]offset, 0, (2*spread+1)*(2*spread+1))
	for dy := -spread; dy <= spread; dy++ {
		for dx := -spread; dx <= spread; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			if d <= float32(spread) {
				offs = append(offs, offset{dx: dx, dy: dy, dist: d})
			}
		}
	}
	sort.SliceStable(offs, func(i, j int) bool { return offs[i].dist < offs[j].dist })
	offsetsCache[spread] = offs
	return offs
}

// DistanceField computes the signed distance field of a coverage mask.
// covered reports whether mask texel (x, y) is inside the silhouette and
// must return false outside [0, w) x [0, h). The field is the mask grown
// by spread on every side: (w+2*spread) x (h+2*spread) values in [0, 1],
// row-major, 0.5 at the silhouette boundary.
func DistanceField(covered func(x, y int) bool, w, h, spread int) []float32 {
	cw, ch := w+2*spread, h+2*spread
	field := make([]float32, cw*ch)

	// Coverage of the grown cell, with a spread-wide false border so the
	// search window never needs bounds checks against the mask.
	pw, ph := cw+2*spread, ch+2*spread
	in := make([]bool, pw*ph)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			in[(y+2*spread)*pw+x+2*spread] = covered(x, y)
		}
	}

	offs := searchOffsets(spread)
	s := float32(spread)
	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			px, py := cx+spread, cy+spread
			inside := in[py*pw+px]
			dist := s
			for _, o := range offs {
				if in[(py+o.dy)*pw+px+o.dx] != inside {
					dist = o.dist
					break
				}
			}
			sign := float32(-1)
			if inside {
				sign = 1
			}
			v := 0.5 + sign*dist/(2*s)
			field[cy*cw+cx] = min(max(v, 0), 1)
		}
	}
	return field
}

// quantize converts distance values to 8-bit texels.
func quantize(field []float32) []byte {
	out := make([]byte, len(field))
	for i, v := range field {
		out[i] = uint8(v*255 + 0.5)
	}
	return out
}
