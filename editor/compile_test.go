package editor

import (
	"strings"
	"testing"

	"github.com/fxkt-tech/cluv/cut"
	"github.com/fxkt-tech/cluv/services/ffmpeg"
	"github.com/stretchr/testify/assert"
)

func filtersNamed(command *ffmpeg.FFmpeg, name string) []*ffmpeg.Filter {
	var found []*ffmpeg.Filter
	for _, f := range command.Filters() {
		if f.Name == name {
			found = append(found, f)
		}
	}
	return found
}

func videoExport() ExportOptions {
	return ExportOptions{OutputFile: "/out.mp4", Kind: ExportKindVideo}
}

func TestCompileSingleSegmentComposition(t *testing.T) {
	session := cut.NewEditSession(cut.NewStage(960, 540))
	session.AddMaterial(cut.NewVideoMaterial("v1", "/media/clip.mp4", cut.NewDimension(1920, 1080)))
	session.AddTrack(cut.VideoTrack().AddSegment(
		cut.VideoSegment("v1", cut.NewTimeRange(0, 5000), cut.NewTimeRange(0, 5000)).
			WithScale(cut.NewDimension(1280, 720)).
			WithPosition(cut.NewPosition(100, 200)),
	))
	assert.NoError(t, session.Validate())

	command, err := Compile(session, ffmpeg.DefaultOptions(), videoExport())
	assert.NoError(t, err)

	assert.Len(t, command.Inputs(), 1)
	assert.Len(t, filtersNamed(command, "color"), 1)
	assert.Len(t, filtersNamed(command, "scale"), 1)
	// Placement only; speed is 1.0 so no speed node appears.
	assert.Len(t, filtersNamed(command, "setpts"), 1)
	assert.Len(t, filtersNamed(command, "overlay"), 1)
	// No audio tracks, so the mix degenerates to synthesized silence.
	assert.Len(t, filtersNamed(command, "anullsrc"), 1)
	assert.Empty(t, filtersNamed(command, "amix"))

	background := filtersNamed(command, "color")[0]
	assert.Contains(t, background.Params, "s=960x540")
	assert.Contains(t, background.Params, "d=5")

	overlay := filtersNamed(command, "overlay")[0]
	assert.Contains(t, overlay.Params, "x=100")
	assert.Contains(t, overlay.Params, "y=200")
	assert.Contains(t, overlay.Params, "enable='between(t,0,5)'")
	assert.Equal(t, background.Label(), overlay.Inputs[0])

	output := command.Outputs()[0]
	assert.Equal(t, []string{"[" + overlay.Label() + "]", "[" + filtersNamed(command, "anullsrc")[0].Label() + "]"}, output.Maps)
	assert.Equal(t, "libx264", output.VideoCodec)
	assert.Equal(t, "aac", output.AudioCodec)
}

func TestCompileZOrder(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddMaterial(cut.NewVideoMaterial("v1", "/media/a.mp4", cut.NewDimension(1920, 1080)))
	session.AddMaterial(cut.NewVideoMaterial("v2", "/media/b.mp4", cut.NewDimension(1920, 1080)))

	trackA := cut.VideoTrack().AddSegment(
		cut.VideoSegment("v1", cut.NewTimeRange(0, 3000), cut.NewTimeRange(0, 3000)))
	trackB := cut.VideoTrack().AddSegment(
		cut.VideoSegment("v2", cut.NewTimeRange(0, 3000), cut.NewTimeRange(0, 3000)))
	session.AddTrack(trackA).AddTrack(trackB)
	assert.NoError(t, session.Validate())

	command, err := Compile(session, ffmpeg.DefaultOptions(), videoExport())
	assert.NoError(t, err)

	overlays := filtersNamed(command, "overlay")
	assert.Len(t, overlays, 2)

	// Track B composes first, track A last: the first session track ends
	// up on top of the stack.
	first, second := overlays[0], overlays[1]
	assert.Equal(t, first.Label(), second.Inputs[0])

	// Inputs bind in track order (v1 is 0:v, v2 is 1:v), so the first
	// placement chain consumed by an overlay belongs to track B.
	placements := filtersNamed(command, "setpts")
	assert.Equal(t, "1:v", placements[0].Inputs[0])
	assert.Equal(t, "0:v", placements[1].Inputs[0])

	// The overlay composing track A's segment consumes the canvas built
	// from track B's overlay and feeds the output map.
	output := command.Outputs()[0]
	assert.Equal(t, "["+second.Label()+"]", output.Maps[0])
}

func TestCompileInputDeduplication(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddMaterial(cut.NewVideoMaterial("v1", "/media/clip.mp4", cut.NewDimension(1920, 1080)))
	session.AddTrack(cut.VideoTrack().
		AddSegment(cut.VideoSegment("v1", cut.NewTimeRange(0, 2000), cut.NewTimeRange(0, 2000))).
		AddSegment(cut.VideoSegment("v1", cut.NewTimeRange(2000, 2000), cut.NewTimeRange(5000, 2000))))
	assert.NoError(t, session.Validate())

	command, err := Compile(session, ffmpeg.DefaultOptions(), videoExport())
	assert.NoError(t, err)

	assert.Len(t, command.Inputs(), 1)
	assert.Len(t, filtersNamed(command, "overlay"), 2)
}

func TestCompileSkipsDisabledTracks(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddMaterial(cut.NewVideoMaterial("v1", "/media/clip.mp4", cut.NewDimension(1920, 1080)))
	session.AddMaterial(cut.NewAudioMaterial("a1", "/media/music.mp3"))

	session.AddTrack(cut.VideoTrack().SetEnabled(false).AddSegment(
		cut.VideoSegment("v1", cut.NewTimeRange(0, 2000), cut.NewTimeRange(0, 2000))))
	session.AddTrack(cut.AudioTrack().SetMuted(true).AddSegment(
		cut.AudioSegment("a1", cut.NewTimeRange(0, 2000), cut.NewTimeRange(0, 2000))))
	assert.NoError(t, session.Validate())

	command, err := Compile(session, ffmpeg.DefaultOptions(), videoExport())
	assert.NoError(t, err)

	assert.Empty(t, filtersNamed(command, "overlay"))
	// Muted audio leaves zero streams, so silence is synthesized.
	assert.Len(t, filtersNamed(command, "anullsrc"), 1)
}

func TestCompileAudioMixArity(t *testing.T) {
	build := func(segments int) *ffmpeg.FFmpeg {
		session := cut.NewEditSession(cut.StageHD1080())
		session.AddMaterial(cut.NewAudioMaterial("a1", "/media/music.mp3"))
		track := cut.AudioTrack()
		for i := 0; i < segments; i++ {
			start := uint32(i) * 2000
			track.AddSegment(cut.AudioSegment("a1",
				cut.NewTimeRange(start, 2000), cut.NewTimeRange(0, 2000)))
		}
		session.AddTrack(track)
		if err := session.Validate(); err != nil {
			t.Fatal(err)
		}
		command, err := Compile(session, ffmpeg.DefaultOptions(), ExportOptions{OutputFile: "/out.mp3", Kind: ExportKindAudio})
		if err != nil {
			t.Fatal(err)
		}
		return command
	}

	// Zero segments: silence only.
	command := build(0)
	assert.Len(t, filtersNamed(command, "anullsrc"), 1)
	assert.Empty(t, filtersNamed(command, "amix"))

	// One segment: passthrough, no mix node.
	command = build(1)
	assert.Empty(t, filtersNamed(command, "amix"))
	assert.Empty(t, filtersNamed(command, "anullsrc"))

	// Three segments: exactly one mix node referencing all of them.
	command = build(3)
	mixes := filtersNamed(command, "amix")
	assert.Len(t, mixes, 1)
	assert.Len(t, mixes[0].Inputs, 3)
	assert.Contains(t, mixes[0].Params, "inputs=3")
}

func TestCompileAudioSegmentChain(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddMaterial(cut.NewAudioMaterial("a1", "/media/music.mp3"))
	// Trimmed source, half volume, 2x speed, delayed placement.
	track := cut.AudioTrack().SetVolume(0.5).AddSegment(
		cut.AudioSegment("a1", cut.NewTimeRange(3000, 2000), cut.NewTimeRange(1000, 4000)))
	session.AddTrack(track)
	assert.NoError(t, session.Validate())

	command, err := Compile(session, ffmpeg.DefaultOptions(), ExportOptions{OutputFile: "/out.mp3", Kind: ExportKindAudio})
	assert.NoError(t, err)

	atrims := filtersNamed(command, "atrim")
	assert.Len(t, atrims, 1)
	assert.Contains(t, atrims[0].Params, "start=1")
	assert.Contains(t, atrims[0].Params, "duration=4")
	assert.Len(t, filtersNamed(command, "asetpts"), 1)

	volumes := filtersNamed(command, "volume")
	assert.Len(t, volumes, 1)
	assert.Equal(t, []string{"0.5"}, volumes[0].Params)

	tempos := filtersNamed(command, "atempo")
	assert.Len(t, tempos, 1)
	assert.Equal(t, []string{"2"}, tempos[0].Params)

	delays := filtersNamed(command, "adelay")
	assert.Len(t, delays, 1)
	assert.Equal(t, []string{"3000:all=1"}, delays[0].Params)
}

func TestCompileUntouchedAudioPassesRawPad(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddMaterial(cut.NewAudioMaterial("a1", "/media/music.mp3"))
	session.AddTrack(cut.AudioTrack().AddSegment(
		cut.AudioSegment("a1", cut.NewTimeRange(0, 2000), cut.NewTimeRange(0, 2000))))
	assert.NoError(t, session.Validate())

	command, err := Compile(session, ffmpeg.DefaultOptions(), ExportOptions{OutputFile: "/out.mp3", Kind: ExportKindAudio})
	assert.NoError(t, err)

	// No filters needed at all: the input pad maps straight through.
	assert.Empty(t, command.Filters()[1:]) // only the background color node remains
	assert.Equal(t, []string{"0:a"}, command.Outputs()[0].Maps)
	assert.Equal(t, "libmp3lame", command.Outputs()[0].AudioCodec)
}

func TestCompileImageExport(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddMaterial(cut.NewVideoMaterial("v1", "/media/clip.mp4", cut.NewDimension(1920, 1080)))
	session.AddTrack(cut.VideoTrack().AddSegment(
		cut.VideoSegment("v1", cut.NewTimeRange(0, 2000), cut.NewTimeRange(0, 2000))))
	assert.NoError(t, session.Validate())

	command, err := Compile(session, ffmpeg.DefaultOptions(), ExportOptions{OutputFile: "/out.jpg", Kind: ExportKindImage})
	assert.NoError(t, err)

	output := command.Outputs()[0]
	assert.Len(t, output.Maps, 1)
	assert.Equal(t, "mjpeg", output.VideoCodec)
	assert.Equal(t, "image2", output.Format)
	assert.Equal(t, 1, output.Frames)
}

func TestCompileCustomOptions(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddMaterial(cut.NewVideoMaterial("v1", "/media/clip.mp4", cut.NewDimension(1920, 1080)))
	session.AddTrack(cut.VideoTrack().AddSegment(
		cut.VideoSegment("v1", cut.NewTimeRange(0, 2000), cut.NewTimeRange(0, 2000))))
	assert.NoError(t, session.Validate())

	opts := videoExport()
	opts.VideoCodec = "libx265"
	opts.Quality = 20
	opts.CustomOptions = []string{"-pix_fmt", "yuv420p"}

	command, err := Compile(session, ffmpeg.DefaultOptions(), opts)
	assert.NoError(t, err)

	output := command.Outputs()[0]
	assert.Equal(t, "libx265", output.VideoCodec)
	assert.Equal(t, 20, output.CRF)
	assert.Equal(t, []string{"-pix_fmt", "yuv420p"}, output.CustomOptions)

	rendered := strings.Join(output.Args(), " ")
	assert.True(t, strings.HasSuffix(rendered, "-pix_fmt yuv420p /out.mp4"))
}

func TestCompileRequiresOutputFile(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())

	_, err := Compile(session, ffmpeg.DefaultOptions(), ExportOptions{Kind: ExportKindVideo})
	assert.ErrorIs(t, err, cut.ErrMissingParam)

	_, err = Compile(session, ffmpeg.DefaultOptions(), ExportOptions{OutputFile: "/out.mp4"})
	assert.ErrorIs(t, err, cut.ErrMissingParam)
}

func TestCompilePanicsOnUnresolvedMaterial(t *testing.T) {
	session := cut.NewEditSession(cut.StageHD1080())
	session.AddTrack(cut.VideoTrack().AddSegment(
		cut.VideoSegment("ghost", cut.NewTimeRange(0, 2000), cut.NewTimeRange(0, 2000))))

	assert.Panics(t, func() {
		_, _ = Compile(session, ffmpeg.DefaultOptions(), videoExport())
	})
}
