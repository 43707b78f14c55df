package editor

import (
	"context"
	"os"

	"github.com/ansel1/merry/v2"
	"github.com/fxkt-tech/cluv/cut"
	"github.com/fxkt-tech/cluv/services/ffmpeg"
	"github.com/fxkt-tech/cluv/services/ffprobe"
	"github.com/rs/zerolog"
)

type Options struct {
	FFmpeg  ffmpeg.Options
	FFprobe ffprobe.Options
	Logger  zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		FFmpeg:  ffmpeg.DefaultOptions(),
		FFprobe: ffprobe.DefaultOptions(),
		Logger:  zerolog.Nop(),
	}
}

// Editor owns one composition session and the services needed to take it
// from a protocol document to a finished export. It is not safe for
// concurrent use; callers keep single-writer ownership of the session.
type Editor struct {
	opts     Options
	session  *cut.EditSession
	resolver *Resolver
}

func New(opts Options) *Editor {
	opts.FFmpeg.Logger = opts.Logger
	return &Editor{
		opts:     opts,
		session:  cut.NewEditSession(cut.StageHD1080()),
		resolver: NewResolver(ffprobeProber{opts: opts.FFprobe}, opts.Logger),
	}
}

func (e *Editor) Session() *cut.EditSession {
	return e.session
}

func (e *Editor) SetStage(stage cut.Stage) {
	e.session.Stage = stage
}

func (e *Editor) AddMaterial(material cut.Material) {
	e.session.AddMaterial(material)
}

func (e *Editor) AddTrack(track *cut.Track) {
	e.session.AddTrack(track)
}

func (e *Editor) AddVideoTrack() *cut.Track {
	track := cut.VideoTrack()
	e.session.AddTrack(track)
	return track
}

func (e *Editor) AddAudioTrack() *cut.Track {
	track := cut.AudioTrack()
	e.session.AddTrack(track)
	return track
}

// AddSegmentToTrack places a segment onto an existing track.
func (e *Editor) AddSegmentToTrack(trackID string, segment *cut.Segment) error {
	track, ok := e.session.Track(trackID)
	if !ok {
		return merry.Wrap(cut.ErrInvalidParams, merry.AppendMessagef("track %s not found", trackID))
	}
	track.AddSegment(segment)
	return nil
}

func (e *Editor) Validate() error {
	return e.session.Validate()
}

// Resolve fills in absent material metadata via the probe service.
func (e *Editor) Resolve(ctx context.Context) error {
	return e.resolver.Resolve(ctx, e.session)
}

// Load replaces the current session with one decoded from protocol JSON.
func (e *Editor) Load(data []byte) error {
	protocol, err := cut.ProtocolFromJSON(data)
	if err != nil {
		return err
	}
	session, err := protocol.ToSession()
	if err != nil {
		return err
	}
	e.session = session
	return nil
}

func (e *Editor) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return merry.Wrap(cut.ErrFileNotFound, merry.AppendMessage(path), merry.WithCause(err))
	}
	return e.Load(data)
}

// Save renders the current session as protocol JSON.
func (e *Editor) Save() ([]byte, error) {
	return e.session.ToProtocol().ToJSON()
}

func (e *Editor) SaveFile(path string) error {
	data, err := e.Save()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return merry.Wrap(cut.ErrSerialization, merry.AppendMessage(path), merry.WithCause(err))
	}
	return nil
}

// Export validates, compiles and runs the session as a single operation.
func (e *Editor) Export(ctx context.Context, opts ExportOptions) error {
	if err := e.session.Validate(); err != nil {
		return err
	}
	command, err := Compile(e.session, e.opts.FFmpeg, opts)
	if err != nil {
		return err
	}
	return command.Run(ctx)
}
