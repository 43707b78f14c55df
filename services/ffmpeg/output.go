package ffmpeg

import (
	"fmt"
	"sort"
	"strconv"
)

// Output describes one output file with its stream maps and encoding
// options. Map entries are passed to -map verbatim, so both bare pad
// references ("0:a") and filter labels ("[vout]") work.
type Output struct {
	Path string
	Maps []string

	VideoCodec string
	AudioCodec string
	// CRF applies only when > 0.
	CRF          int
	VideoBitrate int
	AudioBitrate int

	FrameRate float64
	// Frames limits the number of output video frames (-frames:v).
	Frames int
	VSync  string

	Format   string
	MovFlags string
	// MaxMuxingQueueSize guards against muxer stalls on long
	// filter graphs. Zero means unset.
	MaxMuxingQueueSize int
	Threads            int

	SeekMS     uint32
	DurationMS uint32

	Metadata map[string]string
	// CustomOptions are appended last, in order, and win over the
	// options rendered above.
	CustomOptions []string
}

func NewOutput(path string) *Output {
	return &Output{Path: path}
}

func (o *Output) Map(labels ...string) *Output {
	o.Maps = append(o.Maps, labels...)
	return o
}

func (o *Output) Args() []string {
	var args []string
	for _, m := range o.Maps {
		args = append(args, "-map", m)
	}
	if o.VideoCodec != "" {
		args = append(args, "-c:v", o.VideoCodec)
	}
	if o.AudioCodec != "" {
		args = append(args, "-c:a", o.AudioCodec)
	}
	if o.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(o.CRF))
	}
	if o.VideoBitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", o.VideoBitrate))
	}
	if o.AudioBitrate > 0 {
		args = append(args, "-b:a", fmt.Sprintf("%dk", o.AudioBitrate))
	}
	if o.FrameRate > 0 {
		args = append(args, "-r", strconv.FormatFloat(o.FrameRate, 'f', -1, 64))
	}
	if o.Frames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(o.Frames))
	}
	if o.VSync != "" {
		args = append(args, "-vsync", o.VSync)
	}
	if o.SeekMS > 0 {
		args = append(args, "-ss", Seconds(o.SeekMS))
	}
	if o.DurationMS > 0 {
		args = append(args, "-t", Seconds(o.DurationMS))
	}
	if o.MovFlags != "" {
		args = append(args, "-movflags", o.MovFlags)
	}
	if o.MaxMuxingQueueSize > 0 {
		args = append(args, "-max_muxing_queue_size", strconv.Itoa(o.MaxMuxingQueueSize))
	}
	if o.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(o.Threads))
	}
	metaKeys := make([]string, 0, len(o.Metadata))
	for key := range o.Metadata {
		metaKeys = append(metaKeys, key)
	}
	sort.Strings(metaKeys)
	for _, key := range metaKeys {
		args = append(args, "-metadata", fmt.Sprintf("%s=%s", key, o.Metadata[key]))
	}
	if o.Format != "" {
		args = append(args, "-f", o.Format)
	}
	args = append(args, o.CustomOptions...)
	return append(args, o.Path)
}
