package cut_test

import (
	"strings"
	"testing"

	"github.com/fxkt-tech/cluv/cut"
	"github.com/stretchr/testify/assert"
)

func validSession() *cut.EditSession {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddMaterial(cut.NewVideoMaterial("v1", "/media/clip.mp4", cut.NewDimension(1920, 1080)))
	session.AddMaterial(cut.NewAudioMaterial("a1", "/media/music.mp3"))

	video := cut.VideoTrack().AddSegment(
		cut.VideoSegment("v1", cut.NewTimeRange(0, 5000), cut.NewTimeRange(0, 5000)),
	)
	audio := cut.AudioTrack().AddSegment(
		cut.AudioSegment("a1", cut.NewTimeRange(0, 5000), cut.NewTimeRange(0, 5000)),
	)
	session.AddTrack(video).AddTrack(audio)
	return session
}

func TestSessionValidateOK(t *testing.T) {
	assert.NoError(t, validSession().Validate())
}

func TestSessionValidateOrder(t *testing.T) {
	// A broken stage wins over every other violation.
	session := validSession()
	session.Stage = cut.Stage{Width: 0, Height: 1080}
	session.Tracks[0].Volume = 5
	err := session.Validate()
	assert.ErrorIs(t, err, cut.ErrInvalidParams)
	assert.Contains(t, err.Error(), "stage")

	// Material violations win over track violations.
	session = validSession()
	session.AddMaterial(cut.NewVideoMaterial("v2", "", cut.NewDimension(1920, 1080)))
	session.Tracks[0].Volume = 5
	err = session.Validate()
	assert.Contains(t, err.Error(), "src")

	// Track attribute violations win over segment violations.
	session = validSession()
	session.Tracks[0].Volume = 5
	session.Tracks[1].Segments[0].TargetTimeRange.Duration = 0
	err = session.Validate()
	assert.Contains(t, err.Error(), "volume")

	// Segment violations win over dangling references.
	session = validSession()
	session.Tracks[0].Segments[0].SourceTimeRange.Duration = 0
	session.Tracks[1].Segments[0].MaterialID = "ghost"
	err = session.Validate()
	assert.Contains(t, err.Error(), "source duration")
}

func TestSessionValidateDanglingReference(t *testing.T) {
	session := validSession()
	session.Tracks[0].Segments[0].MaterialID = "ghost"

	err := session.Validate()
	assert.ErrorIs(t, err, cut.ErrInvalidParams)
	assert.True(t, strings.Contains(err.Error(), "ghost"))
}

func TestSessionTotalDuration(t *testing.T) {
	session := validSession()
	assert.Equal(t, uint32(5000), session.TotalDuration())

	session.Tracks[1].AddSegment(
		cut.AudioSegment("a1", cut.NewTimeRange(5000, 3000), cut.NewTimeRange(0, 3000)),
	)
	assert.Equal(t, uint32(8000), session.TotalDuration())

	assert.Equal(t, uint32(0), cut.NewEditSession(cut.StageHD1080()).TotalDuration())
}

func TestSessionTrackFilters(t *testing.T) {
	session := validSession()
	assert.Len(t, session.VideoTracks(), 1)
	assert.Len(t, session.AudioTracks(), 1)

	session.AddTrack(cut.SubtitleTrack())
	assert.Len(t, session.VideoTracks(), 1)
}

func TestSessionRemove(t *testing.T) {
	session := validSession()

	assert.True(t, session.RemoveMaterial("a1"))
	assert.False(t, session.RemoveMaterial("a1"))
	assert.Len(t, session.Materials, 1)

	id := session.Tracks[0].ID
	assert.True(t, session.RemoveTrack(id))
	assert.Len(t, session.Tracks, 1)
}
