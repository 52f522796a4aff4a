package geom

// Point is a position in viewport coordinates (origin top-left).
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width/height pair.
type Size struct {
	W int `json:"w" yaml:"width"`
	H int `json:"h" yaml:"height"`
}

// Rect represents a window position and size
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// RectFrom builds a Rect from a position and size.
func RectFrom(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.W, Height: s.H}
}

// Pos returns the top-left corner.
func (r Rect) Pos() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{W: r.Width, H: r.Height}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Contains reports whether p lies inside r. Right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Abs returns the absolute value of v.
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
