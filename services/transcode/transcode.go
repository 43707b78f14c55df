package transcode

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fxkt-tech/cluv/services/ffmpeg"
)

// Transcoder runs single-input transcode jobs that sit outside the
// timeline compiler: plain conversions, watermarking, audio extraction.
type Transcoder struct {
	opts ffmpeg.Options
}

func New(opts ffmpeg.Options) *Transcoder {
	return &Transcoder{opts: opts}
}

// SimpleMP4 transcodes one input into one or more MP4 outputs. With
// multiple outputs the decoded video is split once and each branch gets
// its own delogo/scale/logo chain.
func (t *Transcoder) SimpleMP4(ctx context.Context, params TranscodeParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	command := ffmpeg.New(t.opts)
	input := command.AddInput(ffmpeg.NewInput(params.InputFile))

	branches := make([]string, len(params.Subs))
	if len(params.Subs) > 1 {
		split := ffmpeg.Split(len(params.Subs)).Use(input.V())
		for i := range params.Subs {
			branches[i] = fmt.Sprintf("split_%d", i)
			split.Into(branches[i])
		}
		command.AddFilter(split)
	} else {
		branches[0] = input.V()
	}

	for i, sub := range params.Subs {
		current := branches[i]

		if sub.Filters != nil {
			for _, delogo := range sub.Filters.Delogo {
				label := command.Label("delogo")
				command.AddFilter(ffmpeg.NewFilter("delogo",
					fmt.Sprintf("x=%d", delogo.Rect.X),
					fmt.Sprintf("y=%d", delogo.Rect.Y),
					fmt.Sprintf("w=%d", delogo.Rect.Width),
					fmt.Sprintf("h=%d", delogo.Rect.Height),
				).Use(current).Into(label))
				current = label
			}

			if video := sub.Filters.Video; video != nil && (video.Width > 0 || video.Height > 0) {
				label := command.Label("scale")
				command.AddFilter(ffmpeg.Scale(evenPixel(video.Width), evenPixel(video.Height)).
					Use(current).Into(label))
				current = label
			}

			for _, logo := range sub.Filters.Logo {
				logoInput := command.AddInput(ffmpeg.NewInput(logo.File))
				logoStream := logoInput.V()

				if logo.Width > 0 || logo.Height > 0 {
					label := command.Label("scale")
					command.AddFilter(ffmpeg.Scale(evenPixel(logo.Width), evenPixel(logo.Height)).
						Use(logoStream).Into(label))
					logoStream = label
				}

				label := command.Label("overlay")
				command.AddFilter(ffmpeg.NewFilter("overlay", logoPosition(logo.DX, logo.DY, logo.Position)).
					Use(current, logoStream).Into(label))
				current = label
			}
		}

		output := ffmpeg.NewOutput(sub.OutputFile).Map(mapRef(current), input.A())
		output.MovFlags = "faststart"
		output.MaxMuxingQueueSize = 4096
		output.Threads = sub.Threads
		applyFilters(output, sub.Filters)
		command.AddOutput(output)
	}

	return command.Run(ctx)
}

// SimpleMP3 extracts and encodes audio-only outputs.
func (t *Transcoder) SimpleMP3(ctx context.Context, params TranscodeParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	command := ffmpeg.New(t.opts)
	input := command.AddInput(ffmpeg.NewInput(params.InputFile))

	branches := make([]string, len(params.Subs))
	if len(params.Subs) > 1 {
		split := ffmpeg.ASplit(len(params.Subs)).Use(input.A())
		for i := range params.Subs {
			branches[i] = fmt.Sprintf("asplit_%d", i)
			split.Into(branches[i])
		}
		command.AddFilter(split)
	} else {
		branches[0] = input.A()
	}

	for i, sub := range params.Subs {
		output := ffmpeg.NewOutput(sub.OutputFile).Map(mapRef(branches[i]))
		output.AudioCodec = ffmpeg.AudioCodecMP3
		output.MaxMuxingQueueSize = 4096
		output.Threads = sub.Threads
		if sub.Filters != nil && sub.Filters.Audio != nil {
			if sub.Filters.Audio.Codec != "" {
				output.AudioCodec = sub.Filters.Audio.Codec
			}
			output.AudioBitrate = sub.Filters.Audio.Bitrate
		}
		command.AddOutput(output)
	}

	return command.Run(ctx)
}

// SimpleJPEG grabs one frame per output, optionally scaled.
func (t *Transcoder) SimpleJPEG(ctx context.Context, params TranscodeParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	command := ffmpeg.New(t.opts)
	input := command.AddInput(ffmpeg.NewInput(params.InputFile))

	branches := make([]string, len(params.Subs))
	if len(params.Subs) > 1 {
		split := ffmpeg.Split(len(params.Subs)).Use(input.V())
		for i := range params.Subs {
			branches[i] = fmt.Sprintf("split_%d", i)
			split.Into(branches[i])
		}
		command.AddFilter(split)
	} else {
		branches[0] = input.V()
	}

	for i, sub := range params.Subs {
		current := branches[i]
		if sub.Filters != nil {
			if video := sub.Filters.Video; video != nil && (video.Width > 0 || video.Height > 0) {
				label := command.Label("scale")
				command.AddFilter(ffmpeg.Scale(evenPixel(video.Width), evenPixel(video.Height)).
					Use(current).Into(label))
				current = label
			}
		}

		output := ffmpeg.NewOutput(sub.OutputFile).Map(mapRef(current))
		output.Format = ffmpeg.FormatImage2
		output.Frames = 1
		output.MaxMuxingQueueSize = 4096
		output.Threads = sub.Threads
		if sub.Filters != nil && sub.Filters.Video != nil && sub.Filters.Video.Codec != "" {
			output.VideoCodec = sub.Filters.Video.Codec
		}
		command.AddOutput(output)
	}

	return command.Run(ctx)
}

// ConvertContainer remuxes the input into a new container without
// re-encoding.
func (t *Transcoder) ConvertContainer(ctx context.Context, params ConvertContainerParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	command := ffmpeg.New(t.opts)
	input := command.AddInput(ffmpeg.NewInput(params.InputFile))

	output := ffmpeg.NewOutput(params.OutputFile).Map(input.V(), input.A())
	output.VideoCodec = ffmpeg.VideoCodecCopy
	output.AudioCodec = ffmpeg.AudioCodecCopy
	output.MovFlags = "faststart"
	output.MaxMuxingQueueSize = 4096
	output.Threads = params.Threads
	if len(params.Metadata) > 0 {
		output.Metadata = map[string]string{}
		for _, kv := range params.Metadata {
			output.Metadata[kv.Key] = kv.Value
		}
	}
	command.AddOutput(output)

	return command.Run(ctx)
}

// ExtractAudio copies the audio stream out of the input untouched.
func (t *Transcoder) ExtractAudio(ctx context.Context, params ExtractAudioParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	command := ffmpeg.New(t.opts)
	input := command.AddInput(ffmpeg.NewInput(params.InputFile))

	output := ffmpeg.NewOutput(params.OutputFile).Map(input.A())
	output.AudioCodec = ffmpeg.AudioCodecCopy
	command.AddOutput(output)

	return command.Run(ctx)
}

func applyFilters(output *ffmpeg.Output, filters *Filters) {
	if filters == nil {
		return
	}
	if filters.Video != nil {
		if filters.Video.Codec != "" {
			output.VideoCodec = filters.Video.Codec
		}
		output.CRF = filters.Video.CRF
		output.VideoBitrate = filters.Video.Bitrate
		output.FrameRate = filters.Video.FPS
	}
	if filters.Audio != nil {
		if filters.Audio.Codec != "" {
			output.AudioCodec = filters.Audio.Codec
		}
		output.AudioBitrate = filters.Audio.Bitrate
	}
	if len(filters.Metadata) > 0 {
		output.Metadata = map[string]string{}
		for _, kv := range filters.Metadata {
			output.Metadata[kv.Key] = kv.Value
		}
	}
	if filters.Clip != nil {
		output.SeekMS = filters.Clip.SeekMS
		output.DurationMS = filters.Clip.DurationMS
	}
	if filters.Container != "" {
		output.Format = filters.Container
	}
}

// evenPixel keeps encoder-friendly even dimensions; non-positive values
// pass through so scale derives them.
func evenPixel(length int32) int32 {
	if length > 0 && length%2 != 0 {
		return length + 1
	}
	return length
}

// logoPosition renders a corner preset plus offsets as an overlay x:y
// expression in engine coordinate variables.
func logoPosition(dx, dy int32, position string) string {
	x := strconv.Itoa(int(dx))
	y := strconv.Itoa(int(dy))
	switch position {
	case "top-right":
		return fmt.Sprintf("W-w-%s:%s", x, y)
	case "bottom-left":
		return fmt.Sprintf("%s:H-h-%s", x, y)
	case "bottom-right":
		return fmt.Sprintf("W-w-%s:H-h-%s", x, y)
	case "center":
		return fmt.Sprintf("(W-w)/2+%s:(H-h)/2+%s", x, y)
	default:
		return x + ":" + y
	}
}

func mapRef(stream string) string {
	// Raw input pads map bare; filter labels map bracketed.
	for _, c := range stream {
		if c == ':' {
			return stream
		}
	}
	return "[" + stream + "]"
}
