package ffmpeg

import "strconv"

// Input is a single -i source. Its index is assigned when it is added
// to a command and is used to build the [N:v] / [N:a] pad references.
type Input struct {
	Path string
	// SeekMS and DurationMS apply -ss and -t before the input, both in
	// milliseconds. Zero means unset.
	SeekMS     uint32
	DurationMS uint32
	// Loop enables -stream_loop -1, used for still images.
	Loop bool

	index int
}

func NewInput(path string) *Input {
	return &Input{Path: path}
}

func (i *Input) WithSeek(seekMS, durationMS uint32) *Input {
	i.SeekMS = seekMS
	i.DurationMS = durationMS
	return i
}

func (i *Input) WithLoop() *Input {
	i.Loop = true
	return i
}

func (i *Input) Index() int {
	return i.index
}

// V returns the video pad reference for this input, e.g. "0:v".
func (i *Input) V() string {
	return strconv.Itoa(i.index) + ":v"
}

// A returns the audio pad reference for this input, e.g. "0:a".
func (i *Input) A() string {
	return strconv.Itoa(i.index) + ":a"
}

func (i *Input) Args() []string {
	var args []string
	if i.Loop {
		args = append(args, "-stream_loop", "-1")
	}
	if i.SeekMS > 0 {
		args = append(args, "-ss", Seconds(i.SeekMS))
	}
	if i.DurationMS > 0 {
		args = append(args, "-t", Seconds(i.DurationMS))
	}
	return append(args, "-i", i.Path)
}
