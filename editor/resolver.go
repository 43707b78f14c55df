package editor

import (
	"context"

	"github.com/ansel1/merry/v2"
	"github.com/fxkt-tech/cluv/cut"
	"github.com/fxkt-tech/cluv/services/ffprobe"
	"github.com/rs/zerolog"
)

// Prober answers metadata questions about a source locator. The default
// implementation shells out to ffprobe; tests substitute a fake.
type Prober interface {
	Probe(ctx context.Context, src string) (*ffprobe.Result, error)
}

type ffprobeProber struct {
	opts ffprobe.Options
}

func (p ffprobeProber) Probe(ctx context.Context, src string) (*ffprobe.Result, error) {
	return ffprobe.Probe(ctx, p.opts, src)
}

// Resolver fills in absent material metadata by probing each source.
// Materials are probed one at a time, and the first probe failure aborts
// the whole pass; materials already enriched keep what they got.
type Resolver struct {
	prober Prober
	logger zerolog.Logger
}

func NewResolver(prober Prober, logger zerolog.Logger) *Resolver {
	return &Resolver{prober: prober, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, session *cut.EditSession) error {
	for _, material := range session.Materials {
		if !cut.NeedsResolve(material) {
			continue
		}
		result, err := r.prober.Probe(ctx, material.Src())
		if err != nil {
			return err
		}
		r.logger.Debug().
			Str("material", material.ID()).
			Str("src", material.Src()).
			Msg("resolved material metadata")
		if err := enrich(material, result); err != nil {
			return err
		}
	}
	return nil
}

// enrich copies probed values onto the material, but only into fields
// that are still absent. Present values are never overwritten.
func enrich(material cut.Material, result *ffprobe.Result) error {
	switch mat := material.(type) {
	case *cut.VideoMaterial:
		stream, ok := result.VideoStream()
		if !ok {
			return merry.Wrap(cut.ErrProbe, merry.AppendMessagef("%s: no video stream", material.Src()))
		}
		if !mat.Dimension.IsValid() {
			mat.Dimension = cut.Dimension{Width: int32(stream.Width), Height: int32(stream.Height)}
		}
		if mat.Duration == nil {
			duration := result.DurationMS()
			mat.Duration = &duration
		}
		if mat.FPS == nil {
			fps := stream.FrameRate()
			mat.FPS = &fps
		}
		if mat.Codec == nil {
			codec := stream.CodecName
			mat.Codec = &codec
		}
		if mat.Bitrate == nil {
			bitrate := uint32(result.BitRateKbps())
			mat.Bitrate = &bitrate
		}
	case *cut.AudioMaterial:
		stream, ok := result.AudioStream()
		if !ok {
			return merry.Wrap(cut.ErrProbe, merry.AppendMessagef("%s: no audio stream", material.Src()))
		}
		if mat.Duration == nil {
			duration := result.DurationMS()
			mat.Duration = &duration
		}
		if mat.SampleRate == nil {
			sampleRate := uint32(stream.SampleRateHz())
			mat.SampleRate = &sampleRate
		}
		if mat.Channels == nil {
			channels := uint32(stream.Channels)
			mat.Channels = &channels
		}
		if mat.Codec == nil {
			codec := stream.CodecName
			mat.Codec = &codec
		}
		if mat.Bitrate == nil {
			bitrate := uint32(result.BitRateKbps())
			mat.Bitrate = &bitrate
		}
	case *cut.ImageMaterial:
		stream, ok := result.VideoStream()
		if !ok {
			return merry.Wrap(cut.ErrProbe, merry.AppendMessagef("%s: no image stream", material.Src()))
		}
		if !mat.Dimension.IsValid() {
			mat.Dimension = cut.Dimension{Width: int32(stream.Width), Height: int32(stream.Height)}
		}
		if mat.Format == nil {
			format := stream.CodecName
			mat.Format = &format
		}
	}
	return nil
}
