package cut_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/fxkt-tech/cluv/cut"
	"github.com/stretchr/testify/assert"
)

func TestProtocolRoundTrip(t *testing.T) {
	session := cut.NewEditSession(cut.NewStage(960, 540))

	video := cut.NewVideoMaterial("v1", "/media/clip.mp4", cut.NewDimension(1920, 1080))
	duration := uint32(12000)
	fps := 25.0
	video.Duration = &duration
	video.FPS = &fps
	session.AddMaterial(video)
	session.AddMaterial(cut.NewAudioMaterial("a1", "/media/music.mp3"))
	session.AddMaterial(cut.NewImageMaterial("i1", "/media/logo.png", cut.NewDimension(200, 100)))

	videoTrack := cut.NewTrack("t1", cut.TrackTypeVideo).
		AddSegment(cut.NewSegment("s2", cut.SegmentTypeVideo, "v1",
			cut.NewTimeRange(5000, 2000), cut.NewTimeRange(0, 4000))).
		AddSegment(cut.NewSegment("s1", cut.SegmentTypeVideo, "v1",
			cut.NewTimeRange(0, 5000), cut.NewTimeRange(0, 5000)).
			WithScale(cut.NewDimension(1280, 720)).
			WithPosition(cut.NewPosition(100, 200)))
	audioTrack := cut.NewTrack("t2", cut.TrackTypeAudio).
		AddSegment(cut.NewSegment("s3", cut.SegmentTypeAudio, "a1",
			cut.NewTimeRange(0, 7000), cut.NewTimeRange(1000, 7000)))
	session.AddTrack(videoTrack).AddTrack(audioTrack)

	data, err := session.ToProtocol().ToJSON()
	assert.NoError(t, err)

	decoded, err := cut.ProtocolFromJSON(data)
	assert.NoError(t, err)

	rebuilt, err := decoded.ToSession()
	assert.NoError(t, err)
	assert.Equal(t, session, rebuilt)

	// Segment order within a track survives exactly.
	assert.Equal(t, "s2", rebuilt.Tracks[0].Segments[0].ID)
	assert.Equal(t, "s1", rebuilt.Tracks[0].Segments[1].ID)
}

func TestProtocolFieldNames(t *testing.T) {
	session := cut.NewEditSession(cut.NewStage(960, 540))
	session.AddMaterial(cut.NewVideoMaterial("v1", "/media/clip.mp4", cut.NewDimension(1920, 1080)))
	session.AddTrack(cut.NewTrack("t1", cut.TrackTypeVideo).
		AddSegment(cut.NewSegment("s1", cut.SegmentTypeVideo, "v1",
			cut.NewTimeRange(0, 5000), cut.NewTimeRange(0, 5000))))

	data, err := session.ToProtocol().ToJSON()
	assert.NoError(t, err)

	document := string(data)
	assert.Contains(t, document, `"material_id"`)
	assert.Contains(t, document, `"target_timerange"`)
	assert.Contains(t, document, `"source_timerange"`)
	assert.Contains(t, document, `"videos"`)
	assert.NotContains(t, document, `"fps"`) // omitted while absent
}

func TestProtocolUnknownTypeTags(t *testing.T) {
	p := cut.NewProtocol(960, 540)
	p.Tracks = append(p.Tracks, cut.ProtocolTrack{ID: "t1", Type: "hologram"})

	_, err := p.ToSession()
	assert.ErrorIs(t, err, cut.ErrUnsupportedFormat)

	p = cut.NewProtocol(960, 540)
	p.Tracks = append(p.Tracks, cut.ProtocolTrack{
		ID:   "t1",
		Type: "video",
		Segments: []cut.ProtocolSegment{{
			ID:              "s1",
			Type:            "hologram",
			MaterialID:      "v1",
			TargetTimeRange: cut.TimeRangeProto{Start: 0, Duration: 1000},
			SourceTimeRange: cut.TimeRangeProto{Start: 0, Duration: 1000},
		}},
	})
	_, err = p.ToSession()
	assert.ErrorIs(t, err, cut.ErrUnsupportedFormat)
}

func TestProtocolValidateDuplicates(t *testing.T) {
	p := cut.NewProtocol(960, 540)
	p.Materials.Videos = append(p.Materials.Videos,
		cut.VideoMaterialProto{ID: "v1", Src: "/a.mp4", Dimension: cut.DimensionProto{Width: 1920, Height: 1080}},
		cut.VideoMaterialProto{ID: "v1", Src: "/b.mp4", Dimension: cut.DimensionProto{Width: 1920, Height: 1080}},
	)

	err := p.Validate()
	assert.ErrorIs(t, err, cut.ErrInvalidParams)
	assert.Contains(t, err.Error(), "v1")
}

func TestProtocolFromJSONMalformed(t *testing.T) {
	_, err := cut.ProtocolFromJSON([]byte("{not json"))
	assert.ErrorIs(t, err, cut.ErrSerialization)

	if testing.Verbose() {
		spew.Dump(err)
	}
}
