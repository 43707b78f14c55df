package ffprobe

import (
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/fxkt-tech/cluv/cut"
	"github.com/fxkt-tech/cluv/utils"
	"github.com/samber/lo"
)

type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecLongName string `json:"codec_long_name"`
	Profile       string `json:"profile"`
	CodecType     string `json:"codec_type"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	PixFmt        string `json:"pix_fmt"`
	RFrameRate    string `json:"r_frame_rate"`
	AvgFrameRate  string `json:"avg_frame_rate"`
	TimeBase      string `json:"time_base"`
	StartTime     string `json:"start_time"`
	Duration      string `json:"duration"`
	BitRate       string `json:"bit_rate"`
	NbFrames      string `json:"nb_frames"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
}

type Format struct {
	Filename       string `json:"filename"`
	NbStreams      int    `json:"nb_streams"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	StartTime      string `json:"start_time"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
	ProbeScore     int    `json:"probe_score"`
}

type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Options struct {
	BinaryPath string
}

func DefaultOptions() Options {
	return Options{BinaryPath: "ffprobe"}
}

// Probe runs ffprobe on the given file and decodes its JSON report.
// Requires ffprobe present.
func Probe(ctx context.Context, opts Options, path string) (*Result, error) {
	cmd := exec.CommandContext(
		ctx,
		opts.BinaryPath,
		"-hide_banner",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	out, err := utils.ExecuteCmd(cmd, nil)
	if err != nil {
		return nil, merry.Wrap(cut.ErrProbe, merry.AppendMessage(path), merry.WithCause(err))
	}

	var result Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, merry.Wrap(cut.ErrProbe, merry.AppendMessage(path), merry.WithCause(err))
	}
	return &result, nil
}

func (r *Result) VideoStream() (Stream, bool) {
	return lo.Find(r.Streams, func(s Stream) bool {
		return s.CodecType == "video"
	})
}

func (r *Result) AudioStream() (Stream, bool) {
	return lo.Find(r.Streams, func(s Stream) bool {
		return s.CodecType == "audio"
	})
}

// DurationMS returns the container duration in milliseconds, rounded to
// the nearest millisecond. Zero when the format carries no duration.
func (r *Result) DurationMS() uint32 {
	seconds, err := strconv.ParseFloat(r.Format.Duration, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return uint32(math.Round(seconds * 1000))
}

func (r *Result) BitRateKbps() int32 {
	bps, err := strconv.Atoi(r.Format.BitRate)
	if err != nil {
		return 0
	}
	return int32(bps / 1000)
}

// FrameRate parses the stream's average frame rate, which ffprobe
// reports as a rational like "30000/1001".
func (s Stream) FrameRate() float64 {
	rate := s.AvgFrameRate
	if rate == "" || rate == "0/0" {
		rate = s.RFrameRate
	}
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		value, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0
		}
		return value
	}
	numValue, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	denValue, err := strconv.ParseFloat(den, 64)
	if err != nil || denValue == 0 {
		return 0
	}
	return numValue / denValue
}

func (s Stream) SampleRateHz() int32 {
	hz, err := strconv.Atoi(s.SampleRate)
	if err != nil {
		return 0
	}
	return int32(hz)
}
