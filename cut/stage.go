package cut

import (
	"fmt"

	"github.com/ansel1/merry/v2"
)

// Stage is the canvas every video track is composited onto.
type Stage struct {
	Width  int32
	Height int32
}

func NewStage(width, height int32) Stage {
	return Stage{Width: width, Height: height}
}

func StageHD1080() Stage     { return NewStage(1920, 1080) }
func StageHD720() Stage      { return NewStage(1280, 720) }
func StageUHD4K() Stage      { return NewStage(3840, 2160) }
func StageVerticalHD() Stage { return NewStage(1080, 1920) }
func StageSquare() Stage     { return NewStage(1080, 1080) }

func (s Stage) AspectRatio() float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

func (s Stage) IsLandscape() bool { return s.Width > s.Height }
func (s Stage) IsPortrait() bool  { return s.Width < s.Height }
func (s Stage) IsSquare() bool    { return s.Width == s.Height }

func (s Stage) PixelCount() int64 {
	return int64(s.Width) * int64(s.Height)
}

func (s Stage) Dimension() Dimension {
	return NewDimension(s.Width, s.Height)
}

// FitWithin shrinks the stage to fit inside the given bounds while keeping
// the aspect ratio.
func (s Stage) FitWithin(maxWidth, maxHeight int32) Stage {
	fitted := s.Dimension().FitWithin(maxWidth, maxHeight)
	return NewStage(fitted.Width, fitted.Height)
}

func (s Stage) ContainsPoint(x, y int32) bool {
	return x >= 0 && x < s.Width && y >= 0 && y < s.Height
}

func (s Stage) ContainsRect(x, y, width, height int32) bool {
	return x >= 0 && y >= 0 && x+width <= s.Width && y+height <= s.Height
}

func (s Stage) CenterPoint() Position {
	return NewPosition(s.Width/2, s.Height/2)
}

func (s Stage) Validate() error {
	if s.Width <= 0 {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessage("stage width must be positive"))
	}
	if s.Height <= 0 {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessage("stage height must be positive"))
	}
	return nil
}

func (s Stage) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
