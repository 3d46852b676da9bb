package atlas

// ShelfPacker places rectangles left to right along horizontal shelves,
// top to bottom. A shelf is as tall as the tallest rectangle placed on it;
// when a rectangle would cross the right edge a new shelf starts below
// the current one. Earlier shelves are never revisited, so placement is
// fully determined by the insertion order.
type ShelfPacker struct {
	width   int
	height  int
	padding int

	// Current shelf.
	shelfY int
	shelfH int
	x      int
	shelves int

	usedArea int
}

// NewShelfPacker creates a packer for a width x height area, leaving
// padding empty pixels between rectangles.
func NewShelfPacker(width, height, padding int) *ShelfPacker {
	return &ShelfPacker{width: width, height: height, padding: padding}
}

// Place returns the top-left position for a w x h rectangle, or false if
// it does not fit in the remaining space.
func (p *ShelfPacker) Place(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 || w > p.width || h > p.height {
		return -1, -1, false
	}

	if p.shelves == 0 {
		p.shelves = 1
	} else if p.x+w > p.width {
		// Start a new shelf below the current one.
		p.shelfY += p.shelfH + p.padding
		p.shelfH = 0
		p.x = 0
		p.shelves++
	}

	if p.shelfY+h > p.height {
		return -1, -1, false
	}

	x, y = p.x, p.shelfY
	p.x += w + p.padding
	p.shelfH = max(p.shelfH, h)
	p.usedArea += w * h
	return x, y, true
}

// Reset clears all placements.
func (p *ShelfPacker) Reset() {
	p.shelfY, p.shelfH, p.x, p.shelves, p.usedArea = 0, 0, 0, 0, 0
}

// Utilization returns the fraction of the area covered by rectangles.
func (p *ShelfPacker) Utilization() float64 {
	if p.width <= 0 || p.height <= 0 {
		return 0
	}
	return float64(p.usedArea) / float64(p.width*p.height)
}

// UsedArea returns the total area of placed rectangles.
func (p *ShelfPacker) UsedArea() int {
	return p.usedArea
}

// ShelfCount returns the number of shelves started.
func (p *ShelfPacker) ShelfCount() int {
	return p.shelves
}
