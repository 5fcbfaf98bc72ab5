package document

// BBox is an axis-aligned bounding box in page coordinates,
// origin top-left, Y increasing downward.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (b BBox) Width() float64  { return b.X1 - b.X0 }
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// IsEmpty reports whether the box has no area.
func (b BBox) IsEmpty() bool {
	return b.X1 <= b.X0 || b.Y1 <= b.Y0
}

func (b BBox) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width() * b.Height()
}

// Union returns the smallest box containing both b and o.
// An empty box is the identity.
func (b BBox) Union(o BBox) BBox {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// IntersectArea returns the area of overlap between b and o.
func (b BBox) IntersectArea(o BBox) float64 {
	w := min(b.X1, o.X1) - max(b.X0, o.X0)
	h := min(b.Y1, o.Y1) - max(b.Y0, o.Y0)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// HorizontalOverlap returns the width of the X-axis overlap between b and o,
// or 0 if they do not overlap horizontally.
func (b BBox) HorizontalOverlap(o BBox) float64 {
	w := min(b.X1, o.X1) - max(b.X0, o.X0)
	if w < 0 {
		return 0
	}
	return w
}

// VerticalGap returns the distance from the bottom of b to the top of o.
// Negative when the boxes overlap vertically.
func (b BBox) VerticalGap(o BBox) float64 {
	return o.Y0 - b.Y1
}
