package cut

import (
	"encoding/json"

	"github.com/ansel1/merry/v2"
	mapset "github.com/deckarep/golang-set/v2"
)

// Protocol is the persisted document form of an EditSession. It mirrors the
// session field for field but uses plain JSON-friendly structs so the wire
// shape stays stable independently of the in-memory model.
type Protocol struct {
	Stage     StageConfig     `json:"stage"`
	Materials MaterialsConfig `json:"materials"`
	Tracks    []ProtocolTrack `json:"tracks"`
}

type StageConfig struct {
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

type MaterialsConfig struct {
	Videos []VideoMaterialProto `json:"videos"`
	Images []ImageMaterialProto `json:"images"`
	Audios []AudioMaterialProto `json:"audios"`
}

type VideoMaterialProto struct {
	ID        string         `json:"id"`
	Src       string         `json:"src"`
	Dimension DimensionProto `json:"dimension"`
	Duration  *uint32        `json:"duration,omitempty"`
	FPS       *float64       `json:"fps,omitempty"`
	Codec     *string        `json:"codec,omitempty"`
	Bitrate   *uint32        `json:"bitrate,omitempty"`
}

type ImageMaterialProto struct {
	ID        string         `json:"id"`
	Src       string         `json:"src"`
	Dimension DimensionProto `json:"dimension"`
	Format    *string        `json:"format,omitempty"`
}

type AudioMaterialProto struct {
	ID         string  `json:"id"`
	Src        string  `json:"src"`
	Duration   *uint32 `json:"duration,omitempty"`
	SampleRate *uint32 `json:"sample_rate,omitempty"`
	Channels   *uint32 `json:"channels,omitempty"`
	Codec      *string `json:"codec,omitempty"`
	Bitrate    *uint32 `json:"bitrate,omitempty"`
}

type DimensionProto struct {
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

type ProtocolTrack struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Segments []ProtocolSegment `json:"segments"`
}

type ProtocolSegment struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	MaterialID      string          `json:"material_id"`
	TargetTimeRange TimeRangeProto  `json:"target_timerange"`
	SourceTimeRange TimeRangeProto  `json:"source_timerange"`
	Scale           *DimensionProto `json:"scale,omitempty"`
	Position        *PositionProto  `json:"position,omitempty"`
}

type TimeRangeProto struct {
	Start    uint32 `json:"start"`
	Duration uint32 `json:"duration"`
}

type PositionProto struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

func NewProtocol(stageWidth, stageHeight int32) *Protocol {
	return &Protocol{
		Stage: StageConfig{Width: stageWidth, Height: stageHeight},
		Materials: MaterialsConfig{
			Videos: []VideoMaterialProto{},
			Images: []ImageMaterialProto{},
			Audios: []AudioMaterialProto{},
		},
		Tracks: []ProtocolTrack{},
	}
}

// ToProtocol projects the session into document form. The conversion is
// total: every session value has a protocol representation.
func (s *EditSession) ToProtocol() *Protocol {
	p := NewProtocol(s.Stage.Width, s.Stage.Height)

	for _, material := range s.Materials {
		switch m := material.(type) {
		case *VideoMaterial:
			p.Materials.Videos = append(p.Materials.Videos, VideoMaterialProto{
				ID:        m.ID(),
				Src:       m.Src(),
				Dimension: DimensionProto(m.Dimension),
				Duration:  m.Duration,
				FPS:       m.FPS,
				Codec:     m.Codec,
				Bitrate:   m.Bitrate,
			})
		case *AudioMaterial:
			p.Materials.Audios = append(p.Materials.Audios, AudioMaterialProto{
				ID:         m.ID(),
				Src:        m.Src(),
				Duration:   m.Duration,
				SampleRate: m.SampleRate,
				Channels:   m.Channels,
				Codec:      m.Codec,
				Bitrate:    m.Bitrate,
			})
		case *ImageMaterial:
			p.Materials.Images = append(p.Materials.Images, ImageMaterialProto{
				ID:        m.ID(),
				Src:       m.Src(),
				Dimension: DimensionProto(m.Dimension),
				Format:    m.Format,
			})
		}
	}

	for _, track := range s.Tracks {
		pt := ProtocolTrack{
			ID:       track.ID,
			Type:     track.Type.Value,
			Segments: []ProtocolSegment{},
		}
		for _, seg := range track.Segments {
			ps := ProtocolSegment{
				ID:              seg.ID,
				Type:            seg.Type.Value,
				MaterialID:      seg.MaterialID,
				TargetTimeRange: TimeRangeProto(seg.TargetTimeRange),
				SourceTimeRange: TimeRangeProto(seg.SourceTimeRange),
			}
			if seg.Scale != nil {
				scale := DimensionProto(*seg.Scale)
				ps.Scale = &scale
			}
			if seg.Position != nil {
				position := PositionProto(*seg.Position)
				ps.Position = &position
			}
			pt.Segments = append(pt.Segments, ps)
		}
		p.Tracks = append(p.Tracks, pt)
	}

	return p
}

// ToSession rebuilds an EditSession from document form. It fails only when
// a track or segment carries an unrecognized type tag.
func (p *Protocol) ToSession() (*EditSession, error) {
	session := NewEditSession(NewStage(p.Stage.Width, p.Stage.Height))

	for _, v := range p.Materials.Videos {
		m := NewVideoMaterial(v.ID, v.Src, Dimension(v.Dimension))
		m.Duration = v.Duration
		m.FPS = v.FPS
		m.Codec = v.Codec
		m.Bitrate = v.Bitrate
		session.AddMaterial(m)
	}
	for _, a := range p.Materials.Audios {
		m := NewAudioMaterial(a.ID, a.Src)
		m.Duration = a.Duration
		m.SampleRate = a.SampleRate
		m.Channels = a.Channels
		m.Codec = a.Codec
		m.Bitrate = a.Bitrate
		session.AddMaterial(m)
	}
	for _, i := range p.Materials.Images {
		m := NewImageMaterial(i.ID, i.Src, Dimension(i.Dimension))
		m.Format = i.Format
		session.AddMaterial(m)
	}

	for _, pt := range p.Tracks {
		trackType := TrackTypes.Parse(pt.Type)
		if trackType == nil {
			return nil, merry.Wrap(ErrUnsupportedFormat, merry.AppendMessagef("track %s: unknown track type %q", pt.ID, pt.Type))
		}
		track := NewTrack(pt.ID, *trackType)

		for _, ps := range pt.Segments {
			segmentType := SegmentTypes.Parse(ps.Type)
			if segmentType == nil {
				return nil, merry.Wrap(ErrUnsupportedFormat, merry.AppendMessagef("segment %s: unknown segment type %q", ps.ID, ps.Type))
			}
			seg := NewSegment(ps.ID, *segmentType, ps.MaterialID,
				TimeRange(ps.TargetTimeRange), TimeRange(ps.SourceTimeRange))
			if ps.Scale != nil {
				seg.WithScale(Dimension(*ps.Scale))
			}
			if ps.Position != nil {
				seg.WithPosition(Position(*ps.Position))
			}
			track.AddSegment(seg)
		}

		session.AddTrack(track)
	}

	return session, nil
}

func ProtocolFromJSON(data []byte) (*Protocol, error) {
	var p Protocol
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, merry.Wrap(ErrSerialization, merry.WithCause(err))
	}
	return &p, nil
}

func (p *Protocol) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, merry.Wrap(ErrSerialization, merry.WithCause(err))
	}
	return data, nil
}

// Validate checks the document without building a session: stage, unique
// non-empty ids, segment time ranges and material references.
func (p *Protocol) Validate() error {
	if p.Stage.Width <= 0 || p.Stage.Height <= 0 {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessage("stage dimensions must be positive"))
	}

	materialIDs := mapset.NewSet[string]()
	for _, v := range p.Materials.Videos {
		if v.ID == "" {
			return merry.Wrap(ErrInvalidParams, merry.AppendMessage("video material id cannot be empty"))
		}
		if !materialIDs.Add(v.ID) {
			return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("duplicate material id %q", v.ID))
		}
	}
	for _, a := range p.Materials.Audios {
		if a.ID == "" {
			return merry.Wrap(ErrInvalidParams, merry.AppendMessage("audio material id cannot be empty"))
		}
		if !materialIDs.Add(a.ID) {
			return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("duplicate material id %q", a.ID))
		}
	}
	for _, i := range p.Materials.Images {
		if i.ID == "" {
			return merry.Wrap(ErrInvalidParams, merry.AppendMessage("image material id cannot be empty"))
		}
		if !materialIDs.Add(i.ID) {
			return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("duplicate material id %q", i.ID))
		}
	}

	trackIDs := mapset.NewSet[string]()
	for _, t := range p.Tracks {
		if t.ID == "" {
			return merry.Wrap(ErrInvalidParams, merry.AppendMessage("track id cannot be empty"))
		}
		if !trackIDs.Add(t.ID) {
			return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("duplicate track id %q", t.ID))
		}

		segmentIDs := mapset.NewSet[string]()
		for _, s := range t.Segments {
			if s.ID == "" {
				return merry.Wrap(ErrInvalidParams, merry.AppendMessage("segment id cannot be empty"))
			}
			if !segmentIDs.Add(s.ID) {
				return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("duplicate segment id %q", s.ID))
			}
			if !materialIDs.Contains(s.MaterialID) {
				return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("segment %s: material %q not found", s.ID, s.MaterialID))
			}
			if s.TargetTimeRange.Duration == 0 {
				return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("segment %s: target duration must be positive", s.ID))
			}
			if s.SourceTimeRange.Duration == 0 {
				return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("segment %s: source duration must be positive", s.ID))
			}
			if s.Scale != nil && (s.Scale.Width <= 0 || s.Scale.Height <= 0) {
				return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("segment %s: scale dimensions must be positive", s.ID))
			}
		}
	}

	return nil
}

// TotalDuration is the end of the last-ending segment across all tracks.
func (p *Protocol) TotalDuration() uint32 {
	var d uint32
	for _, t := range p.Tracks {
		for _, s := range t.Segments {
			d = max(d, s.TargetTimeRange.Start+s.TargetTimeRange.Duration)
		}
	}
	return d
}
