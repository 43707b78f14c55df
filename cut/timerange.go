package cut

import (
	"fmt"
	"math"
)

// TimeRange is a half-open window [Start, Start+Duration) in milliseconds.
type TimeRange struct {
	Start    uint32
	Duration uint32
}

func NewTimeRange(start, duration uint32) TimeRange {
	return TimeRange{Start: start, Duration: duration}
}

func (r TimeRange) End() uint32 {
	return r.Start + r.Duration
}

// Contains reports whether t falls inside the range. Start is inclusive,
// End is exclusive.
func (r TimeRange) Contains(t uint32) bool {
	return t >= r.Start && t < r.End()
}

func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End() && other.Start < r.End()
}

// Intersection returns the overlapping window of two ranges, or false when
// they are disjoint.
func (r TimeRange) Intersection(other TimeRange) (TimeRange, bool) {
	start := max(r.Start, other.Start)
	end := min(r.End(), other.End())
	if start >= end {
		return TimeRange{}, false
	}
	return NewTimeRange(start, end-start), true
}

// IsValid reports whether the range may be used for a placed segment.
// Zero-duration ranges are invalid.
func (r TimeRange) IsValid() bool {
	return r.Duration > 0
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%dms-%dms", r.Start, r.End())
}

// Position is a point on the stage in pixels. Coordinates may be negative
// for off-stage placement.
type Position struct {
	X int32
	Y int32
}

func NewPosition(x, y int32) Position {
	return Position{X: x, Y: y}
}

func Origin() Position {
	return Position{}
}

// Center places an item of the given size centered on a stage of the given
// size.
func Center(stageWidth, stageHeight, itemWidth, itemHeight int32) Position {
	return NewPosition((stageWidth-itemWidth)/2, (stageHeight-itemHeight)/2)
}

func (p Position) Offset(dx, dy int32) Position {
	return NewPosition(p.X+dx, p.Y+dy)
}

func (p Position) WithinBounds(width, height int32) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Dimension is a width/height pair in pixels.
type Dimension struct {
	Width  int32
	Height int32
}

func NewDimension(width, height int32) Dimension {
	return Dimension{Width: width, Height: height}
}

// AspectRatio returns width/height, or 0 when height is 0.
func (d Dimension) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

func (d Dimension) ScaleBy(factor float64) Dimension {
	return NewDimension(
		int32(math.Round(float64(d.Width)*factor)),
		int32(math.Round(float64(d.Height)*factor)),
	)
}

// FitWithin shrinks the dimension to fit inside the given bounds while
// preserving aspect ratio. Dimensions already inside the bounds are returned
// unchanged.
func (d Dimension) FitWithin(maxWidth, maxHeight int32) Dimension {
	widthRatio := float64(maxWidth) / float64(d.Width)
	heightRatio := float64(maxHeight) / float64(d.Height)
	factor := min(widthRatio, heightRatio)
	if factor >= 1 {
		return d
	}
	return d.ScaleBy(factor)
}

func (d Dimension) IsValid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}
