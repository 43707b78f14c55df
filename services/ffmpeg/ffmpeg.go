package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/fxkt-tech/cluv/cut"
	"github.com/fxkt-tech/cluv/utils"
)

// FFmpeg accumulates inputs, filter_complex nodes and outputs, then
// renders and runs the full command. Filter labels generated through
// Label share a single counter, so graph node names are stable for a
// given build order.
type FFmpeg struct {
	opts    Options
	inputs  []*Input
	filters []*Filter
	outputs []*Output

	labelCount int
}

func New(opts Options) *FFmpeg {
	return &FFmpeg{opts: opts}
}

func (f *FFmpeg) AddInput(in *Input) *Input {
	in.index = len(f.inputs)
	f.inputs = append(f.inputs, in)
	return in
}

func (f *FFmpeg) AddFilter(filter *Filter) *Filter {
	f.filters = append(f.filters, filter)
	return filter
}

// Label returns the next auto-generated label for the given node name,
// e.g. "scale_3". The counter is shared across names so every label in
// a graph is unique.
func (f *FFmpeg) Label(name string) string {
	label := fmt.Sprintf("%s_%d", name, f.labelCount)
	f.labelCount++
	return label
}

func (f *FFmpeg) AddOutput(out *Output) *Output {
	f.outputs = append(f.outputs, out)
	return out
}

func (f *FFmpeg) Inputs() []*Input   { return f.inputs }
func (f *FFmpeg) Filters() []*Filter { return f.filters }
func (f *FFmpeg) Outputs() []*Output { return f.outputs }

// FilterComplex renders every filter node joined with ";", in insertion
// order.
func (f *FFmpeg) FilterComplex() string {
	parts := make([]string, len(f.filters))
	for i, filter := range f.filters {
		parts[i] = filter.String()
	}
	return strings.Join(parts, ";")
}

func (f *FFmpeg) BuildArgs() []string {
	args := []string{"-hide_banner", "-loglevel", f.opts.LogLevel.Value}
	if f.opts.Overwrite {
		args = append(args, "-y")
	}
	args = append(args, f.opts.ExtraArgs...)
	for _, in := range f.inputs {
		args = append(args, in.Args()...)
	}
	if fc := f.FilterComplex(); fc != "" {
		args = append(args, "-filter_complex", fc)
	}
	for _, out := range f.outputs {
		args = append(args, out.Args()...)
	}
	return args
}

// CommandString renders the command as it would be run, for logs and
// dry runs.
func (f *FFmpeg) CommandString() string {
	return f.opts.BinaryPath + " " + strings.Join(f.BuildArgs(), " ")
}

func (f *FFmpeg) Run(ctx context.Context) error {
	if f.opts.DryRun {
		f.opts.Logger.Info().Str("command", f.CommandString()).Msg("dry run")
		return nil
	}
	if f.opts.Debug {
		f.opts.Logger.Debug().Str("command", f.CommandString()).Msg("running ffmpeg")
	}
	cmd := exec.CommandContext(ctx, f.opts.BinaryPath, f.BuildArgs()...)
	_, err := utils.ExecuteCmd(cmd, func(line string) {
		f.opts.Logger.Debug().Str("source", "ffmpeg").Msg(line)
	})
	if err != nil {
		return merry.Wrap(cut.ErrEngine, merry.WithCause(err))
	}
	return nil
}
