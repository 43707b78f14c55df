package snapshot

import (
	"context"
	"testing"

	"github.com/fxkt-tech/cluv/cut"
	"github.com/fxkt-tech/cluv/services/ffmpeg"
	"github.com/fxkt-tech/cluv/services/ffprobe"
	"github.com/stretchr/testify/assert"
)

func dryRunSnapshotter() *Snapshotter {
	opts := ffmpeg.DefaultOptions()
	opts.DryRun = true
	return New(opts, ffprobe.DefaultOptions())
}

func TestSnapshotParamsValidate(t *testing.T) {
	err := SnapshotParams{}.Validate()
	assert.ErrorIs(t, err, cut.ErrMissingParam)

	err = SnapshotParams{
		InputFile:  "/in.mp4",
		OutputFile: "/out_%03d.jpg",
		FrameType:  FrameType{Value: "bogus"},
	}.Validate()
	assert.ErrorIs(t, err, cut.ErrInvalidParams)

	// Interval screenshots need an interval unless a single frame is
	// requested.
	err = SnapshotParams{
		InputFile:  "/in.mp4",
		OutputFile: "/out_%03d.jpg",
		FrameType:  FrameTypeInterval,
	}.Validate()
	assert.ErrorIs(t, err, cut.ErrMissingParam)

	err = SnapshotParams{
		InputFile:  "/in.mp4",
		OutputFile: "/out.jpg",
		FrameType:  FrameTypeInterval,
		MaxCount:   1,
	}.Validate()
	assert.NoError(t, err)

	err = SnapshotParams{
		InputFile:  "/in.mp4",
		OutputFile: "/out_%03d.jpg",
		FrameType:  FrameTypeSpecific,
	}.Validate()
	assert.ErrorIs(t, err, cut.ErrInvalidParams)

	err = SnapshotParams{
		InputFile:  "/in.mp4",
		OutputFile: "/out_%03d.jpg",
		FrameType:  FrameTypeKeyframes,
	}.Validate()
	assert.NoError(t, err)
}

func TestSpriteParamsValidate(t *testing.T) {
	valid := SpriteParams{
		InputFile:       "/in.mp4",
		OutputFile:      "/sprite.jpg",
		Cols:            5,
		Rows:            4,
		Width:           160,
		Height:          90,
		IntervalSeconds: 2,
	}
	assert.NoError(t, valid.Validate())

	broken := valid
	broken.Cols = 0
	assert.ErrorIs(t, broken.Validate(), cut.ErrInvalidParams)

	broken = valid
	broken.Height = -90
	assert.ErrorIs(t, broken.Validate(), cut.ErrInvalidParams)

	broken = valid
	broken.IntervalSeconds = 0
	assert.ErrorIs(t, broken.Validate(), cut.ErrInvalidParams)
}

func TestSimpleKeyframesDryRun(t *testing.T) {
	err := dryRunSnapshotter().Simple(context.Background(), SnapshotParams{
		InputFile:  "/in.mp4",
		OutputFile: "/out_%03d.jpg",
		FrameType:  FrameTypeKeyframes,
		Width:      640,
		MaxCount:   10,
	})
	assert.NoError(t, err)
}

func TestSimpleSpecificFramesDryRun(t *testing.T) {
	err := dryRunSnapshotter().Simple(context.Background(), SnapshotParams{
		InputFile:  "/in.mp4",
		OutputFile: "/out_%03d.jpg",
		FrameType:  FrameTypeSpecific,
		Frames:     []int{0, 25, 50},
	})
	assert.NoError(t, err)
}

func TestFrameTypeJSON(t *testing.T) {
	data, err := FrameTypeInterval.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"interval"`, string(data))

	var decoded FrameType
	assert.NoError(t, decoded.UnmarshalJSON([]byte(`"keyframes"`)))
	assert.Equal(t, FrameTypeKeyframes, decoded)

	assert.ErrorIs(t, decoded.UnmarshalJSON([]byte(`"bogus"`)), cut.ErrUnsupportedFormat)
}
