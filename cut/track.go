package cut

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ansel1/merry/v2"
	"github.com/google/uuid"
	"github.com/orsinium-labs/enum"
	"github.com/samber/lo"
)

type TrackType enum.Member[string]

var (
	TrackTypeVideo    = TrackType{Value: "video"}
	TrackTypeAudio    = TrackType{Value: "audio"}
	TrackTypeImage    = TrackType{Value: "image"}
	TrackTypeText     = TrackType{Value: "text"}
	TrackTypeSubtitle = TrackType{Value: "subtitle"}
	TrackTypes        = enum.New(TrackTypeVideo, TrackTypeAudio, TrackTypeImage, TrackTypeText, TrackTypeSubtitle)
)

//goland:noinspection GoMixedReceiverTypes
func (t TrackType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (t *TrackType) UnmarshalJSON(value []byte) error {
	var stringValue string
	if err := json.Unmarshal(value, &stringValue); err != nil {
		return err
	}
	parsed := TrackTypes.Parse(stringValue)
	if parsed == nil {
		return merry.Wrap(ErrUnsupportedFormat, merry.AppendMessagef("track type %q", stringValue))
	}
	*t = *parsed
	return nil
}

// Track is an ordered container of segments on the timeline. Insertion
// order is authoritative: it is never resorted implicitly, and the compiler
// uses it for z-order tie-breaks.
type Track struct {
	ID        string
	Type      TrackType
	Segments  []*Segment
	Enabled   bool
	Muted     bool
	Volume    float64
	Opacity   float64
	BlendMode *string
}

func NewTrack(id string, trackType TrackType) *Track {
	return &Track{
		ID:      id,
		Type:    trackType,
		Enabled: true,
		Volume:  1,
		Opacity: 1,
	}
}

func VideoTrack() *Track    { return NewTrack(uuid.NewString(), TrackTypeVideo) }
func AudioTrack() *Track    { return NewTrack(uuid.NewString(), TrackTypeAudio) }
func ImageTrack() *Track    { return NewTrack(uuid.NewString(), TrackTypeImage) }
func TextTrack() *Track     { return NewTrack(uuid.NewString(), TrackTypeText) }
func SubtitleTrack() *Track { return NewTrack(uuid.NewString(), TrackTypeSubtitle) }

func (t *Track) AddSegment(segment *Segment) *Track {
	t.Segments = append(t.Segments, segment)
	return t
}

func (t *Track) AddSegments(segments ...*Segment) *Track {
	t.Segments = append(t.Segments, segments...)
	return t
}

// RemoveSegment deletes the segment with the given id, reporting whether it
// was present.
func (t *Track) RemoveSegment(segmentID string) bool {
	for i, s := range t.Segments {
		if s.ID == segmentID {
			t.Segments = append(t.Segments[:i], t.Segments[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Track) Segment(segmentID string) (*Segment, bool) {
	return lo.Find(t.Segments, func(s *Segment) bool {
		return s.ID == segmentID
	})
}

func (t *Track) SetEnabled(enabled bool) *Track {
	t.Enabled = enabled
	return t
}

func (t *Track) SetMuted(muted bool) *Track {
	t.Muted = muted
	return t
}

func (t *Track) SetVolume(volume float64) *Track {
	t.Volume = min(max(volume, 0), 1)
	return t
}

func (t *Track) SetOpacity(opacity float64) *Track {
	t.Opacity = min(max(opacity, 0), 1)
	return t
}

func (t *Track) SetBlendMode(blendMode string) *Track {
	t.BlendMode = &blendMode
	return t
}

// Duration is the end of the last-ending segment, 0 for an empty track.
func (t *Track) Duration() uint32 {
	var d uint32
	for _, s := range t.Segments {
		d = max(d, s.TargetEnd())
	}
	return d
}

// StartTime is the start of the earliest segment, 0 for an empty track.
func (t *Track) StartTime() uint32 {
	if len(t.Segments) == 0 {
		return 0
	}
	start := t.Segments[0].TargetTimeRange.Start
	for _, s := range t.Segments[1:] {
		start = min(start, s.TargetTimeRange.Start)
	}
	return start
}

func (t *Track) IsEmpty() bool {
	return len(t.Segments) == 0
}

// SortSegments orders the live segment slice by target start. This is the
// only operation that reorders Segments.
func (t *Track) SortSegments() {
	sort.SliceStable(t.Segments, func(i, j int) bool {
		return t.Segments[i].TargetTimeRange.Start < t.Segments[j].TargetTimeRange.Start
	})
}

// HasOverlappingSegments checks adjacent pairs of a copy sorted by start
// time; the live segment order is left untouched.
func (t *Track) HasOverlappingSegments() bool {
	if len(t.Segments) < 2 {
		return false
	}

	sorted := make([]*Segment, len(t.Segments))
	copy(sorted, t.Segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TargetTimeRange.Start < sorted[j].TargetTimeRange.Start
	})

	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i].TargetEnd() > sorted[i+1].TargetTimeRange.Start {
			return true
		}
	}
	return false
}

func (t *Track) SegmentsAtTime(time uint32) []*Segment {
	return lo.Filter(t.Segments, func(s *Segment, _ int) bool {
		return s.ContainsTime(time)
	})
}

func (t *Track) SegmentsInRange(start, end uint32) []*Segment {
	return lo.Filter(t.Segments, func(s *Segment, _ int) bool {
		return s.TargetTimeRange.Start < end && s.TargetEnd() > start
	})
}

// Capability flags per track type. These gate which attributes are
// meaningful, they are not enforced by Validate.

func (t *Track) SupportsVolume() bool {
	return t.Type == TrackTypeAudio
}

func (t *Track) SupportsOpacity() bool {
	return t.Type == TrackTypeVideo || t.Type == TrackTypeImage || t.Type == TrackTypeText
}

func (t *Track) SupportsBlendMode() bool {
	return t.Type == TrackTypeVideo || t.Type == TrackTypeImage || t.Type == TrackTypeText
}

// validateAttrs checks the track's own attributes without descending into
// segments; EditSession.Validate relies on this split to keep its phase
// order deterministic.
func (t *Track) validateAttrs() error {
	if t.ID == "" {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessage("track id cannot be empty"))
	}
	if t.Volume < 0 || t.Volume > 1 {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("track %s: volume must be between 0 and 1", t.ID))
	}
	if t.Opacity < 0 || t.Opacity > 1 {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("track %s: opacity must be between 0 and 1", t.ID))
	}
	return nil
}

func (t *Track) Validate() error {
	if err := t.validateAttrs(); err != nil {
		return err
	}
	for _, s := range t.Segments {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Track) CloneWithID(newID string) *Track {
	cloned := *t
	cloned.ID = newID
	cloned.Segments = make([]*Segment, len(t.Segments))
	for i, s := range t.Segments {
		cloned.Segments[i] = s.clone()
	}
	if t.BlendMode != nil {
		blendMode := *t.BlendMode
		cloned.BlendMode = &blendMode
	}
	return &cloned
}

func (t *Track) String() string {
	return fmt.Sprintf("Track(id=%s, type=%s, segments=%d)", t.ID, t.Type.Value, len(t.Segments))
}
