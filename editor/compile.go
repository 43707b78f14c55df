package editor

import (
	"encoding/json"
	"fmt"

	"github.com/ansel1/merry/v2"
	"github.com/fxkt-tech/cluv/cut"
	"github.com/fxkt-tech/cluv/services/ffmpeg"
	"github.com/orsinium-labs/enum"
)

type ExportKind enum.Member[string]

var (
	ExportKindVideo = ExportKind{Value: "video"}
	ExportKindAudio = ExportKind{Value: "audio"}
	ExportKindImage = ExportKind{Value: "image"}
	ExportKinds     = enum.New(ExportKindVideo, ExportKindAudio, ExportKindImage)
)

//goland:noinspection GoMixedReceiverTypes
func (k ExportKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (k *ExportKind) UnmarshalJSON(value []byte) error {
	var stringValue string
	if err := json.Unmarshal(value, &stringValue); err != nil {
		return err
	}
	parsed := ExportKinds.Parse(stringValue)
	if parsed == nil {
		return merry.Wrap(cut.ErrUnsupportedFormat, merry.AppendMessagef("export kind %q", stringValue))
	}
	*k = *parsed
	return nil
}

type ExportOptions struct {
	OutputFile string
	Kind       ExportKind

	// VideoCodec and AudioCodec fall back to libx264/aac for video
	// exports, libmp3lame for audio and mjpeg for image.
	VideoCodec string
	AudioCodec string
	// Quality is a CRF value, applied when > 0.
	Quality      int
	VideoBitrate int
	AudioBitrate int
	// CustomOptions are passed to the engine verbatim, after every
	// rendered option, in the order given.
	CustomOptions []string
}

func (o ExportOptions) Validate() error {
	if o.OutputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("output file is required"))
	}
	if ExportKinds.Parse(o.Kind.Value) == nil {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessagef("export kind %q", o.Kind.Value))
	}
	return nil
}

// audioStream is one prepared per-segment audio stream, either a raw
// input pad ("0:a") or a filter label.
type audioStream struct {
	ref     string
	isLabel bool
}

func (s audioStream) mapRef() string {
	if s.isLabel {
		return "[" + s.ref + "]"
	}
	return s.ref
}

// Compile walks an already validated session and builds the full engine
// command: input bindings, the filter graph and the output mapping. The
// session must have passed Validate; compilation does not re-check it.
func Compile(session *cut.EditSession, engineOpts ffmpeg.Options, opts ExportOptions) (*ffmpeg.FFmpeg, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	command := ffmpeg.New(engineOpts)

	// Bind one input per distinct material, in first-reference order.
	// A material referenced by several segments still binds once.
	inputs := map[string]*ffmpeg.Input{}
	for _, track := range session.Tracks {
		for _, segment := range track.Segments {
			if _, bound := inputs[segment.MaterialID]; bound {
				continue
			}
			material, ok := session.Material(segment.MaterialID)
			if !ok {
				// Validation guarantees every reference resolves.
				panic(fmt.Sprintf("compile: unresolved material %q", segment.MaterialID))
			}
			inputs[segment.MaterialID] = command.AddInput(ffmpeg.NewInput(material.Src()))
		}
	}

	total := session.TotalDuration()

	// Background canvas the video tracks composite onto.
	background := command.Label("color")
	command.AddFilter(ffmpeg.Color("black", session.Stage.Width, session.Stage.Height, total).Into(background))

	// Video tracks compose in reverse storage order so the first track
	// in the session lands on top of the stack.
	canvas := background
	videoTracks := session.VideoTracks()
	for i := len(videoTracks) - 1; i >= 0; i-- {
		track := videoTracks[i]
		if !track.Enabled {
			continue
		}
		for _, segment := range track.Segments {
			canvas = compileVideoSegment(command, inputs[segment.MaterialID], segment, canvas)
		}
	}

	var streams []audioStream
	for _, track := range session.AudioTracks() {
		if !track.Enabled || track.Muted {
			continue
		}
		for _, segment := range track.Segments {
			streams = append(streams, compileAudioSegment(command, inputs[segment.MaterialID], segment, track.Volume))
		}
	}

	var audio audioStream
	switch len(streams) {
	case 0:
		silence := command.Label("anullsrc")
		command.AddFilter(ffmpeg.ANullSrc(total).Into(silence))
		audio = audioStream{ref: silence, isLabel: true}
	case 1:
		audio = streams[0]
	default:
		mixed := command.Label("amix")
		mix := ffmpeg.AMix(len(streams))
		for _, stream := range streams {
			mix.Use(stream.ref)
		}
		command.AddFilter(mix.Into(mixed))
		audio = audioStream{ref: mixed, isLabel: true}
	}

	output := ffmpeg.NewOutput(opts.OutputFile)
	switch opts.Kind {
	case ExportKindVideo:
		output.Map("["+canvas+"]", audio.mapRef())
		output.VideoCodec = fallback(opts.VideoCodec, ffmpeg.VideoCodecH264)
		output.AudioCodec = fallback(opts.AudioCodec, ffmpeg.AudioCodecAAC)
	case ExportKindAudio:
		output.Map(audio.mapRef())
		output.AudioCodec = fallback(opts.AudioCodec, ffmpeg.AudioCodecMP3)
	case ExportKindImage:
		output.Map("[" + canvas + "]")
		output.VideoCodec = fallback(opts.VideoCodec, ffmpeg.VideoCodecMJPEG)
		output.Format = ffmpeg.FormatImage2
		output.Frames = 1
	}
	output.CRF = opts.Quality
	output.VideoBitrate = opts.VideoBitrate
	output.AudioBitrate = opts.AudioBitrate
	output.CustomOptions = opts.CustomOptions
	command.AddOutput(output)

	return command, nil
}

// compileVideoSegment appends the scale/speed/placement chain for one
// segment and overlays it onto the running canvas, returning the new
// canvas label.
func compileVideoSegment(command *ffmpeg.FFmpeg, input *ffmpeg.Input, segment *cut.Segment, canvas string) string {
	current := input.V()

	if segment.Scale != nil {
		label := command.Label("scale")
		command.AddFilter(ffmpeg.Scale(segment.Scale.Width, segment.Scale.Height).Use(current).Into(label))
		current = label
	}

	if segment.NeedsSpeedAdjustment() {
		label := command.Label("setpts")
		command.AddFilter(ffmpeg.SetPTSSpeed(segment.PlaybackSpeed()).Use(current).Into(label))
		current = label
	}

	// Timeline placement, so the content starts at the segment's
	// target position on the absolute clock.
	placed := command.Label("setpts")
	command.AddFilter(ffmpeg.SetPTSDelay(segment.TargetTimeRange.Start).Use(current).Into(placed))
	current = placed

	position := cut.Position{}
	if segment.Position != nil {
		position = *segment.Position
	}
	overlaid := command.Label("overlay")
	command.AddFilter(ffmpeg.Overlay(
		position.X, position.Y,
		segment.TargetTimeRange.Start, segment.TargetEnd(),
	).Use(canvas, current).Into(overlaid))
	return overlaid
}

// compileAudioSegment appends the trim/volume/tempo/delay chain for one
// segment and returns the resulting stream reference. Segments that need
// none of the steps pass their input pad through untouched.
func compileAudioSegment(command *ffmpeg.FFmpeg, input *ffmpeg.Input, segment *cut.Segment, volume float64) audioStream {
	stream := audioStream{ref: input.A()}

	if segment.SourceTimeRange.Start > 0 || segment.NeedsSpeedAdjustment() {
		trimmed := command.Label("atrim")
		command.AddFilter(ffmpeg.ATrim(segment.SourceTimeRange.Start, segment.SourceTimeRange.Duration).
			Use(stream.ref).Into(trimmed))
		reset := command.Label("asetpts")
		command.AddFilter(ffmpeg.ASetPTSStart().Use(trimmed).Into(reset))
		stream = audioStream{ref: reset, isLabel: true}
	}

	if volume != 1 {
		label := command.Label("volume")
		command.AddFilter(ffmpeg.Volume(volume).Use(stream.ref).Into(label))
		stream = audioStream{ref: label, isLabel: true}
	}

	if segment.NeedsSpeedAdjustment() {
		label := command.Label("atempo")
		command.AddFilter(ffmpeg.ATempo(segment.PlaybackSpeed()).Use(stream.ref).Into(label))
		stream = audioStream{ref: label, isLabel: true}
	}

	if segment.TargetTimeRange.Start > 0 {
		label := command.Label("adelay")
		command.AddFilter(ffmpeg.ADelay(segment.TargetTimeRange.Start).Use(stream.ref).Into(label))
		stream = audioStream{ref: label, isLabel: true}
	}

	return stream
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
