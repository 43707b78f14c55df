package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter is a single node in a filter_complex graph. Params are already
// rendered key=value (or bare value) strings and are joined with ":".
type Filter struct {
	Name    string
	Params  []string
	Inputs  []string
	Outputs []string
}

func NewFilter(name string, params ...string) *Filter {
	return &Filter{Name: name, Params: params}
}

func (f *Filter) Use(labels ...string) *Filter {
	f.Inputs = append(f.Inputs, labels...)
	return f
}

func (f *Filter) Into(labels ...string) *Filter {
	f.Outputs = append(f.Outputs, labels...)
	return f
}

// Label returns the first output label, which is how downstream filters
// and output maps refer to this node.
func (f *Filter) Label() string {
	if len(f.Outputs) == 0 {
		return ""
	}
	return f.Outputs[0]
}

func (f *Filter) String() string {
	var sb strings.Builder
	for _, in := range f.Inputs {
		sb.WriteString("[" + in + "]")
	}
	sb.WriteString(f.Name)
	if len(f.Params) > 0 {
		sb.WriteString("=" + strings.Join(f.Params, ":"))
	}
	for _, out := range f.Outputs {
		sb.WriteString("[" + out + "]")
	}
	return sb.String()
}

// Seconds renders a millisecond count as a seconds value with no
// trailing zeros, the way ffmpeg expressions expect.
func Seconds(ms uint32) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64)
}

// Scale resizes a stream. Non-positive dimensions become -2 so ffmpeg
// derives them from the aspect ratio while keeping them even.
func Scale(w, h int32) *Filter {
	if w <= 0 {
		w = -2
	}
	if h <= 0 {
		h = -2
	}
	return NewFilter("scale", strconv.Itoa(int(w)), strconv.Itoa(int(h)))
}

func SetPTSSpeed(speed float64) *Filter {
	return NewFilter("setpts", fmt.Sprintf("%s*PTS", strconv.FormatFloat(1/speed, 'f', -1, 64)))
}

func SetPTSDelay(startMS uint32) *Filter {
	return NewFilter("setpts", fmt.Sprintf("PTS+%s/TB", Seconds(startMS)))
}

// Overlay composites the second input onto the first at (x, y), enabled
// only inside [start, end) on the output timeline.
func Overlay(x, y int32, startMS, endMS uint32) *Filter {
	return NewFilter("overlay",
		fmt.Sprintf("x=%d", x),
		fmt.Sprintf("y=%d", y),
		fmt.Sprintf("enable='between(t,%s,%s)'", Seconds(startMS), Seconds(endMS)),
	)
}

func Color(color string, w, h int32, durationMS uint32) *Filter {
	return NewFilter("color",
		"c="+color,
		fmt.Sprintf("s=%dx%d", w, h),
		"d="+Seconds(durationMS),
	)
}

func ATrim(startMS, durationMS uint32) *Filter {
	return NewFilter("atrim",
		"start="+Seconds(startMS),
		"duration="+Seconds(durationMS),
	)
}

func ASetPTSStart() *Filter {
	return NewFilter("asetpts", "PTS-STARTPTS")
}

func Volume(volume float64) *Filter {
	return NewFilter("volume", strconv.FormatFloat(volume, 'f', -1, 64))
}

func ATempo(speed float64) *Filter {
	return NewFilter("atempo", strconv.FormatFloat(speed, 'f', -1, 64))
}

// ADelay shifts an audio stream by a millisecond offset on all channels.
func ADelay(delayMS uint32) *Filter {
	return NewFilter("adelay", fmt.Sprintf("%d:all=1", delayMS))
}

func AMix(inputs int) *Filter {
	return NewFilter("amix", fmt.Sprintf("inputs=%d", inputs))
}

// ANullSrc produces stereo silence for exports that have no audio at all.
func ANullSrc(durationMS uint32) *Filter {
	return NewFilter("anullsrc",
		"channel_layout=stereo",
		"sample_rate=44100",
		"duration="+Seconds(durationMS),
	)
}

func FPS(fps float64) *Filter {
	return NewFilter("fps", strconv.FormatFloat(fps, 'f', -1, 64))
}

func SelectExpr(expr string) *Filter {
	return NewFilter("select", "'"+expr+"'")
}

func Tile(cols, rows int) *Filter {
	return NewFilter("tile", fmt.Sprintf("%dx%d", cols, rows))
}

func Split(count int) *Filter {
	return NewFilter("split", strconv.Itoa(count))
}

func ASplit(count int) *Filter {
	return NewFilter("asplit", strconv.Itoa(count))
}

func Crop(w, h, x, y int32) *Filter {
	return NewFilter("crop",
		strconv.Itoa(int(w)), strconv.Itoa(int(h)),
		strconv.Itoa(int(x)), strconv.Itoa(int(y)),
	)
}
