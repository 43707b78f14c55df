package cut

import (
	"encoding/json"
	"os"

	"github.com/ansel1/merry/v2"
	"github.com/google/uuid"
	"github.com/orsinium-labs/enum"
)

type MaterialType enum.Member[string]

var (
	MaterialTypeVideo = MaterialType{Value: "video"}
	MaterialTypeAudio = MaterialType{Value: "audio"}
	MaterialTypeImage = MaterialType{Value: "image"}
	MaterialTypes     = enum.New(MaterialTypeVideo, MaterialTypeAudio, MaterialTypeImage)
)

//goland:noinspection GoMixedReceiverTypes
func (t MaterialType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (t *MaterialType) UnmarshalJSON(value []byte) error {
	var stringValue string
	if err := json.Unmarshal(value, &stringValue); err != nil {
		return err
	}
	parsed := MaterialTypes.Parse(stringValue)
	if parsed == nil {
		return merry.Wrap(ErrUnsupportedFormat, merry.AppendMessagef("material type %q", stringValue))
	}
	*t = *parsed
	return nil
}

// Material is the closed set of media assets a segment can reference:
// video, audio or image. The identity and source locator are fixed at
// construction; the optional metadata fields may be filled in later by the
// resolver but are never overwritten once present.
type Material interface {
	ID() string
	Src() string
	Kind() MaterialType
	Validate() error

	isMaterial()
}

type VideoMaterial struct {
	id  string
	src string

	Dimension Dimension
	Duration  *uint32 // ms
	FPS       *float64
	Codec     *string
	Bitrate   *uint32 // kbps
}

type AudioMaterial struct {
	id  string
	src string

	Duration   *uint32 // ms
	SampleRate *uint32 // Hz
	Channels   *uint32
	Codec      *string
	Bitrate    *uint32 // kbps
}

type ImageMaterial struct {
	id  string
	src string

	Dimension Dimension
	Format    *string
}

func NewVideoMaterial(id, src string, dimension Dimension) *VideoMaterial {
	return &VideoMaterial{id: id, src: src, Dimension: dimension}
}

func NewAudioMaterial(id, src string) *AudioMaterial {
	return &AudioMaterial{id: id, src: src}
}

func NewImageMaterial(id, src string, dimension Dimension) *ImageMaterial {
	return &ImageMaterial{id: id, src: src, Dimension: dimension}
}

// VideoMaterialFromFile references a local video file with a generated id.
// Dimensions and the rest of the metadata are left for the resolver.
func VideoMaterialFromFile(src string) *VideoMaterial {
	return NewVideoMaterial(uuid.NewString(), src, Dimension{})
}

func AudioMaterialFromFile(src string) *AudioMaterial {
	return NewAudioMaterial(uuid.NewString(), src)
}

func ImageMaterialFromFile(src string) *ImageMaterial {
	return NewImageMaterial(uuid.NewString(), src, Dimension{})
}

func (m *VideoMaterial) ID() string         { return m.id }
func (m *VideoMaterial) Src() string        { return m.src }
func (m *VideoMaterial) Kind() MaterialType { return MaterialTypeVideo }
func (m *VideoMaterial) isMaterial()        {}

func (m *AudioMaterial) ID() string         { return m.id }
func (m *AudioMaterial) Src() string        { return m.src }
func (m *AudioMaterial) Kind() MaterialType { return MaterialTypeAudio }
func (m *AudioMaterial) isMaterial()        {}

func (m *ImageMaterial) ID() string         { return m.id }
func (m *ImageMaterial) Src() string        { return m.src }
func (m *ImageMaterial) Kind() MaterialType { return MaterialTypeImage }
func (m *ImageMaterial) isMaterial()        {}

func validateMaterialCore(id, src string) error {
	if id == "" {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessage("material id cannot be empty"))
	}
	if src == "" {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("material %s: src cannot be empty", id))
	}
	return nil
}

func (m *VideoMaterial) Validate() error {
	if err := validateMaterialCore(m.id, m.src); err != nil {
		return err
	}
	if !m.Dimension.IsValid() {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("material %s: video dimensions must be positive", m.id))
	}
	if m.FPS != nil && *m.FPS <= 0 {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("material %s: fps must be positive", m.id))
	}
	return nil
}

func (m *AudioMaterial) Validate() error {
	if err := validateMaterialCore(m.id, m.src); err != nil {
		return err
	}
	if m.SampleRate != nil && *m.SampleRate == 0 {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("material %s: sample rate must be positive", m.id))
	}
	if m.Channels != nil && *m.Channels == 0 {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("material %s: channels must be positive", m.id))
	}
	return nil
}

func (m *ImageMaterial) Validate() error {
	if err := validateMaterialCore(m.id, m.src); err != nil {
		return err
	}
	if !m.Dimension.IsValid() {
		return merry.Wrap(ErrInvalidParams, merry.AppendMessagef("material %s: image dimensions must be positive", m.id))
	}
	return nil
}

// Exists reports whether the material's source path is present on disk.
// Remote locators always report false.
func Exists(m Material) bool {
	_, err := os.Stat(m.Src())
	return err == nil
}

// NeedsResolve reports whether any enrichable metadata field is still
// absent, i.e. whether the resolver should probe this material.
func NeedsResolve(m Material) bool {
	switch mat := m.(type) {
	case *VideoMaterial:
		return !mat.Dimension.IsValid() || mat.Duration == nil || mat.FPS == nil ||
			mat.Codec == nil || mat.Bitrate == nil
	case *AudioMaterial:
		return mat.Duration == nil || mat.SampleRate == nil || mat.Channels == nil ||
			mat.Codec == nil || mat.Bitrate == nil
	case *ImageMaterial:
		return !mat.Dimension.IsValid() || mat.Format == nil
	}
	return false
}
