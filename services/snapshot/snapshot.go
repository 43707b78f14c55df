package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/fxkt-tech/cluv/cut"
	"github.com/fxkt-tech/cluv/services/ffmpeg"
	"github.com/fxkt-tech/cluv/services/ffprobe"
	"github.com/orsinium-labs/enum"
)

// FrameType selects which frames of the input become screenshots.
type FrameType enum.Member[string]

var (
	FrameTypeKeyframes = FrameType{Value: "keyframes"}
	FrameTypeInterval  = FrameType{Value: "interval"}
	FrameTypeSpecific  = FrameType{Value: "specific"}
	FrameTypes         = enum.New(FrameTypeKeyframes, FrameTypeInterval, FrameTypeSpecific)
)

//goland:noinspection GoMixedReceiverTypes
func (t FrameType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (t *FrameType) UnmarshalJSON(value []byte) error {
	var stringValue string
	if err := json.Unmarshal(value, &stringValue); err != nil {
		return err
	}
	parsed := FrameTypes.Parse(stringValue)
	if parsed == nil {
		return merry.Wrap(cut.ErrUnsupportedFormat, merry.AppendMessagef("frame type %q", stringValue))
	}
	*t = *parsed
	return nil
}

type SnapshotParams struct {
	InputFile  string    `json:"input_file"`
	OutputFile string    `json:"output_file"`
	FrameType  FrameType `json:"frame_type"`
	// IntervalSeconds spaces interval screenshots; IntervalFrames,
	// when set, takes precedence and counts frames instead.
	IntervalSeconds float64 `json:"interval,omitempty"`
	IntervalFrames  int     `json:"interval_frames,omitempty"`
	// Frames are frame numbers for the specific frame type.
	Frames       []int   `json:"frames,omitempty"`
	StartSeconds float64 `json:"start_time,omitempty"`
	MaxCount     int     `json:"max_count,omitempty"`
	Width        int32   `json:"width,omitempty"`
	Height       int32   `json:"height,omitempty"`
}

type SpriteParams struct {
	InputFile  string `json:"input_file"`
	OutputFile string `json:"output_file"`
	Cols       int    `json:"cols"`
	Rows       int    `json:"rows"`
	// Width and Height size each thumbnail cell.
	Width           int32   `json:"width"`
	Height          int32   `json:"height"`
	IntervalSeconds float64 `json:"interval"`
}

func (p SnapshotParams) Validate() error {
	if p.InputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("input_file"))
	}
	if p.OutputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("output_file"))
	}
	if FrameTypes.Parse(p.FrameType.Value) == nil {
		return merry.Wrap(cut.ErrInvalidParams, merry.AppendMessagef("frame type %q", p.FrameType.Value))
	}
	if p.FrameType == FrameTypeInterval && p.MaxCount != 1 &&
		p.IntervalSeconds <= 0 && p.IntervalFrames <= 0 {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("interval is required for interval screenshots"))
	}
	if p.FrameType == FrameTypeSpecific && len(p.Frames) == 0 {
		return merry.Wrap(cut.ErrInvalidParams, merry.AppendMessage("frames list is required for specific screenshots"))
	}
	return nil
}

func (p SpriteParams) Validate() error {
	if p.InputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("input_file"))
	}
	if p.OutputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("output_file"))
	}
	if p.Cols <= 0 || p.Rows <= 0 {
		return merry.Wrap(cut.ErrInvalidParams, merry.AppendMessage("cols and rows must be positive"))
	}
	if p.Width <= 0 || p.Height <= 0 {
		return merry.Wrap(cut.ErrInvalidParams, merry.AppendMessage("width and height must be positive"))
	}
	if p.IntervalSeconds <= 0 {
		return merry.Wrap(cut.ErrInvalidParams, merry.AppendMessage("interval must be positive"))
	}
	return nil
}

// Snapshotter produces screenshots and sprite sheets from a single
// input.
type Snapshotter struct {
	ffmpegOpts  ffmpeg.Options
	ffprobeOpts ffprobe.Options
}

func New(ffmpegOpts ffmpeg.Options, ffprobeOpts ffprobe.Options) *Snapshotter {
	return &Snapshotter{ffmpegOpts: ffmpegOpts, ffprobeOpts: ffprobeOpts}
}

// Simple writes screenshots selected by frame type, optionally scaled.
func (s *Snapshotter) Simple(ctx context.Context, params SnapshotParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	command := ffmpeg.New(s.ffmpegOpts)

	input := ffmpeg.NewInput(params.InputFile)
	if params.StartSeconds > 0 {
		input.SeekMS = uint32(params.StartSeconds * 1000)
	}
	command.AddInput(input)

	current := input.V()
	switch params.FrameType {
	case FrameTypeKeyframes:
		label := command.Label("select")
		command.AddFilter(ffmpeg.SelectExpr("eq(pict_type,I)").Use(current).Into(label))
		current = label
	case FrameTypeInterval:
		// A single interval screenshot needs no selection at all.
		if params.MaxCount != 1 {
			if params.IntervalFrames > 0 {
				label := command.Label("select")
				command.AddFilter(ffmpeg.SelectExpr(fmt.Sprintf("not(mod(n,%d))", params.IntervalFrames)).
					Use(current).Into(label))
				current = label
			} else {
				label := command.Label("fps")
				command.AddFilter(ffmpeg.FPS(1 / params.IntervalSeconds).Use(current).Into(label))
				current = label
			}
		}
	case FrameTypeSpecific:
		expressions := make([]string, len(params.Frames))
		for i, frame := range params.Frames {
			expressions[i] = fmt.Sprintf("eq(n,%d)", frame)
		}
		label := command.Label("select")
		command.AddFilter(ffmpeg.SelectExpr(strings.Join(expressions, "+")).Use(current).Into(label))
		current = label
	}

	if params.Width > 0 || params.Height > 0 {
		label := command.Label("scale")
		command.AddFilter(ffmpeg.Scale(params.Width, params.Height).Use(current).Into(label))
		current = label
	}

	output := ffmpeg.NewOutput(params.OutputFile)
	output.Format = ffmpeg.FormatImage2
	if current != input.V() {
		output.Map("[" + current + "]")
	}
	output.Frames = params.MaxCount
	if params.FrameType != FrameTypeInterval || params.MaxCount != 1 {
		output.VSync = "vfr"
	}
	command.AddOutput(output)

	return command.Run(ctx)
}

// Sprite tiles evenly spaced thumbnails into one grid image. The frame
// rate is derived from the probed duration so the grid spans the whole
// input.
func (s *Snapshotter) Sprite(ctx context.Context, params SpriteParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	frames := params.Cols * params.Rows
	duration := float64(frames) * params.IntervalSeconds

	probed, err := ffprobe.Probe(ctx, s.ffprobeOpts, params.InputFile)
	if err != nil {
		return err
	}
	if stream, ok := probed.VideoStream(); ok {
		if count, err := strconv.Atoi(stream.NbFrames); err == nil && count > 0 && count < frames {
			frames = count
		}
	}
	if probedDuration := probed.DurationMS(); probedDuration > 0 {
		duration = float64(probedDuration) / 1000
	}

	command := ffmpeg.New(s.ffmpegOpts)
	input := command.AddInput(ffmpeg.NewInput(params.InputFile))

	sampled := command.Label("fps")
	command.AddFilter(ffmpeg.FPS(float64(frames) / duration).Use(input.V()).Into(sampled))
	scaled := command.Label("scale")
	command.AddFilter(ffmpeg.Scale(params.Width, params.Height).Use(sampled).Into(scaled))
	tiled := command.Label("tile")
	command.AddFilter(ffmpeg.Tile(params.Cols, params.Rows).Use(scaled).Into(tiled))

	command.AddOutput(ffmpeg.NewOutput(params.OutputFile).Map("[" + tiled + "]"))

	return command.Run(ctx)
}
