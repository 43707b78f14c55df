package transcode

import (
	"github.com/ansel1/merry/v2"
	"github.com/fxkt-tech/cluv/cut"
)

// TranscodeParams drives one input through one or more outputs. Several
// subs share one decode of the input via split/asplit.
type TranscodeParams struct {
	InputFile string              `json:"input_file"`
	Subs      []SubTranscodeParams `json:"subs"`
}

type SubTranscodeParams struct {
	OutputFile string   `json:"output_file"`
	Filters    *Filters `json:"filters,omitempty"`
	Threads    int      `json:"threads,omitempty"`
}

type Filters struct {
	Container string        `json:"container,omitempty"`
	Metadata  []KeyValue    `json:"metadata,omitempty"`
	Video     *VideoFilter  `json:"video,omitempty"`
	Audio     *AudioFilter  `json:"audio,omitempty"`
	Logo      []LogoFilter  `json:"logo,omitempty"`
	Delogo    []DelogoFilter `json:"delogo,omitempty"`
	Clip      *ClipFilter   `json:"clip,omitempty"`
}

type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type VideoFilter struct {
	Codec   string  `json:"codec,omitempty"`
	Width   int32   `json:"width,omitempty"`
	Height  int32   `json:"height,omitempty"`
	FPS     float64 `json:"fps,omitempty"`
	CRF     int     `json:"crf,omitempty"`
	Bitrate int     `json:"bitrate,omitempty"`
}

type AudioFilter struct {
	Codec   string `json:"codec,omitempty"`
	Bitrate int    `json:"bitrate,omitempty"`
}

// LogoFilter overlays a watermark image, positioned by corner preset
// plus pixel offsets.
type LogoFilter struct {
	File     string `json:"file"`
	Position string `json:"position,omitempty"`
	DX       int32  `json:"dx,omitempty"`
	DY       int32  `json:"dy,omitempty"`
	Width    int32  `json:"width,omitempty"`
	Height   int32  `json:"height,omitempty"`
}

type DelogoFilter struct {
	Rect Rectangle `json:"rect"`
}

type Rectangle struct {
	X      int32 `json:"x"`
	Y      int32 `json:"y"`
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

// ClipFilter cuts the output to a window, in milliseconds.
type ClipFilter struct {
	SeekMS     uint32 `json:"seek,omitempty"`
	DurationMS uint32 `json:"duration,omitempty"`
}

type ConvertContainerParams struct {
	InputFile  string     `json:"input_file"`
	OutputFile string     `json:"output_file"`
	Metadata   []KeyValue `json:"metadata,omitempty"`
	Threads    int        `json:"threads,omitempty"`
}

type ExtractAudioParams struct {
	InputFile  string `json:"input_file"`
	OutputFile string `json:"output_file"`
}

func (p TranscodeParams) Validate() error {
	if p.InputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("input_file"))
	}
	if len(p.Subs) == 0 {
		return merry.Wrap(cut.ErrInvalidParams, merry.AppendMessage("no sub-transcode parameters provided"))
	}
	for _, sub := range p.Subs {
		if sub.OutputFile == "" {
			return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("output_file"))
		}
	}
	return nil
}

func (p ConvertContainerParams) Validate() error {
	if p.InputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("input_file"))
	}
	if p.OutputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("output_file"))
	}
	return nil
}

func (p ExtractAudioParams) Validate() error {
	if p.InputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("input_file"))
	}
	if p.OutputFile == "" {
		return merry.Wrap(cut.ErrMissingParam, merry.AppendMessage("output_file"))
	}
	return nil
}
