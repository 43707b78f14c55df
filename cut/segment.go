package cut

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ansel1/merry/v2"
	"github.com/google/uuid"
	"github.com/orsinium-labs/enum"
)

type SegmentType enum.Member[string]

var (
	SegmentTypeVideo    = SegmentType{Value: "video"}
	SegmentTypeAudio    = SegmentType{Value: "audio"}
	SegmentTypeImage    = SegmentType{Value: "image"}
	SegmentTypeText     = SegmentType{Value: "text"}
	SegmentTypeSubtitle = SegmentType{Value: "subtitle"}
	SegmentTypes        = enum.New(SegmentTypeVideo, SegmentTypeAudio, SegmentTypeImage, SegmentTypeText, SegmentTypeSubtitle)
)

//goland:noinspection GoMixedReceiverTypes
func (t SegmentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (t *SegmentType) UnmarshalJSON(value []byte) error {
	var stringValue string
	if err := json.Unmarshal(value, &stringValue); err != nil {
		return err
	}
	parsed := SegmentTypes.Parse(stringValue)
	if parsed == nil {
		return merry.Wrap(ErrUnsupportedFormat, merry.AppendMessagef("segment type %q", stringValue))
	}
	*t = *parsed
	return nil
}

// Segment places a window of one material onto the timeline. The target
// range is where the content appears on the session timeline, the source
// range is what is consumed from the material; differing durations imply a
// playback-speed change.
type Segment struct {
	ID              string
	Type            SegmentType
	MaterialID      string
	TargetTimeRange TimeRange
	SourceTimeRange TimeRange
	Scale           *Dimension
	Position        *Position
}

func NewSegment(id string, segmentType SegmentType, materialID string, target, source TimeRange) *Segment {
	return &Segment{
		ID:              id,
		Type:            segmentType,
		MaterialID:      materialID,
		TargetTimeRange: target,
		SourceTimeRange: source,
	}
}

func VideoSegment(materialID string, target, source TimeRange) *Segment {
	return NewSegment(uuid.NewString(), SegmentTypeVideo, materialID, target, source)
}

func AudioSegment(materialID string, target, source TimeRange) *Segment {
	return NewSegment(uuid.NewString(), SegmentTypeAudio, materialID, target, source)
}

func ImageSegment(materialID string, target, source TimeRange) *Segment {
	return NewSegment(uuid.NewString(), SegmentTypeImage, materialID, target, source)
}

// WithScale sets the on-stage render size.
func (s *Segment) WithScale(scale Dimension) *Segment {
	s.Scale = &scale
	return s
}

// WithPosition sets the on-stage placement of the top-left corner.
func (s *Segment) WithPosition(position Position) *Segment {
	s.Position = &position
	return s
}

func (s *Segment) TargetEnd() uint32 {
	return s.TargetTimeRange.End()
}

func (s *Segment) SourceEnd() uint32 {
	return s.SourceTimeRange.End()
}

func (s *Segment) ContainsTime(t uint32) bool {
	return s.TargetTimeRange.Contains(t)
}

func (s *Segment) OverlapsWith(other *Segment) bool {
	return s.TargetTimeRange.Overlaps(other.TargetTimeRange)
}

// PlaybackSpeed is the ratio of source duration to target duration. A value
// above 1 plays the source sped up, below 1 slowed down.
func (s *Segment) PlaybackSpeed() float64 {
	if s.TargetTimeRange.Duration == 0 {
		return 1
	}
	return float64(s.SourceTimeRange.Duration) / float64(s.TargetTimeRange.Duration)
}

func (s *Segment) NeedsSpeedAdjustment() bool {
	return s.SourceTimeRange.Duration != s.TargetTimeRange.Duration
}

// TrimStart shrinks the segment from its left edge by amount milliseconds,
// consuming proportionally from the source window so the playback speed is
// preserved. Durations are clamped to a 1ms floor so a segment never
// disappears.
func (s *Segment) TrimStart(amount uint32) {
	if amount >= s.TargetTimeRange.Duration {
		s.TargetTimeRange.Duration = 1
		return
	}

	speed := s.PlaybackSpeed()
	s.TargetTimeRange.Start += amount
	s.TargetTimeRange.Duration -= amount

	sourceTrim := uint32(float64(amount) * speed)
	s.SourceTimeRange.Start += sourceTrim
	if sourceTrim < s.SourceTimeRange.Duration {
		s.SourceTimeRange.Duration -= sourceTrim
	} else {
		s.SourceTimeRange.Duration = 1
	}
}

// TrimEnd shrinks the segment from its right edge by amount milliseconds,
// with the same speed-preserving source adjustment and 1ms floor as
// TrimStart.
func (s *Segment) TrimEnd(amount uint32) {
	if amount >= s.TargetTimeRange.Duration {
		s.TargetTimeRange.Duration = 1
		return
	}

	speed := s.PlaybackSpeed()
	s.TargetTimeRange.Duration -= amount

	sourceTrim := uint32(float64(amount) * speed)
	if sourceTrim < s.SourceTimeRange.Duration {
		s.SourceTimeRange.Duration -= sourceTrim
	} else {
		s.SourceTimeRange.Duration = 1
	}
}

// SplitAt cuts the segment into two at the given timeline position. The
// target windows partition exactly at t; the source windows partition
// proportionally using the playback speed of the original segment. t must
// satisfy ContainsTime, so splitting at the exact end is rejected.
func (s *Segment) SplitAt(t uint32) (*Segment, *Segment, error) {
	if !s.ContainsTime(t) {
		return nil, nil, merry.Wrap(ErrInvalidParams,
			merry.AppendMessagef("segment %s: split time %dms is not within %s", s.ID, t, s.TargetTimeRange))
	}

	offset := t - s.TargetTimeRange.Start
	speed := s.PlaybackSpeed()
	sourceOffset := uint32(math.Round(float64(offset) * speed))

	first := s.clone()
	first.ID = s.ID + "_part1"
	first.TargetTimeRange = NewTimeRange(s.TargetTimeRange.Start, offset)
	first.SourceTimeRange = NewTimeRange(s.SourceTimeRange.Start, sourceOffset)

	second := s.clone()
	second.ID = s.ID + "_part2"
	second.TargetTimeRange = NewTimeRange(t, s.TargetTimeRange.Duration-offset)
	second.SourceTimeRange = NewTimeRange(s.SourceTimeRange.Start+sourceOffset, s.SourceTimeRange.Duration-sourceOffset)

	return first, second, nil
}

// MoveTo shifts the segment to a new timeline start without changing its
// duration or source window.
func (s *Segment) MoveTo(newStart uint32) {
	s.TargetTimeRange.Start = newStart
}

func (s *Segment) CloneWithID(newID string) *Segment {
	cloned := s.clone()
	cloned.ID = newID
	return cloned
}

func (s *Segment) clone() *Segment {
	cloned := *s
	if s.Scale != nil {
		scale := *s.Scale
		cloned.Scale = &scale
	}
	if s.Position != nil {
		position := *s.Position
		cloned.Position = &position
	}
	return &cloned
}

func (s *Segment) Validate() error {
	if s.ID == "" {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessage("segment id cannot be empty"))
	}
	if s.MaterialID == "" {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("segment %s: material id cannot be empty", s.ID))
	}
	if !s.TargetTimeRange.IsValid() {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("segment %s: target duration must be positive", s.ID))
	}
	if !s.SourceTimeRange.IsValid() {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("segment %s: source duration must be positive", s.ID))
	}
	if s.Scale != nil && !s.Scale.IsValid() {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("segment %s: scale dimensions must be positive", s.ID))
	}
	return nil
}

func (s *Segment) String() string {
	return fmt.Sprintf("Segment(id=%s, type=%s, target=%s)", s.ID, s.Type.Value, s.TargetTimeRange)
}
