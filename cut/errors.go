package cut

import (
	"github.com/ansel1/merry/v2"
)

// Error sentinels shared by the composition packages. Wrap with
// merry.Wrap(Err..., merry.AppendMessagef(...)) so callers can test with
// errors.Is while still seeing which id or field failed.
var (
	ErrInvalidParams     = merry.Sentinel("invalid params")
	ErrMissingParam      = merry.Sentinel("missing required param")
	ErrFileNotFound      = merry.Sentinel("file not found")
	ErrUnsupportedFormat = merry.Sentinel("unsupported format")
	ErrProbe             = merry.Sentinel("probe failed")
	ErrEngine            = merry.Sentinel("engine failed")
	ErrSerialization     = merry.Sentinel("serialization failed")
)
