package ffmpeg

import (
	"encoding/json"

	"github.com/ansel1/merry/v2"
	"github.com/fxkt-tech/cluv/cut"
	"github.com/orsinium-labs/enum"
	"github.com/rs/zerolog"
)

type LogLevel enum.Member[string]

var (
	LogLevelQuiet   = LogLevel{Value: "quiet"}
	LogLevelError   = LogLevel{Value: "error"}
	LogLevelWarning = LogLevel{Value: "warning"}
	LogLevelInfo    = LogLevel{Value: "info"}
	LogLevelVerbose = LogLevel{Value: "verbose"}
	LogLevelDebug   = LogLevel{Value: "debug"}
	LogLevels       = enum.New(LogLevelQuiet, LogLevelError, LogLevelWarning, LogLevelInfo, LogLevelVerbose, LogLevelDebug)
)

//goland:noinspection GoMixedReceiverTypes
func (l LogLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (l *LogLevel) UnmarshalJSON(value []byte) error {
	var stringValue string
	if err := json.Unmarshal(value, &stringValue); err != nil {
		return err
	}
	parsed := LogLevels.Parse(stringValue)
	if parsed == nil {
		return merry.Wrap(cut.ErrUnsupportedFormat, merry.AppendMessagef("log level %q", stringValue))
	}
	*l = *parsed
	return nil
}

// Options configures how the ffmpeg binary is invoked. The zero value is
// not usable; start from DefaultOptions.
type Options struct {
	BinaryPath string
	LogLevel   LogLevel
	Overwrite  bool
	// Debug logs the full command line before running it.
	Debug bool
	// DryRun logs the full command line instead of running it.
	DryRun    bool
	ExtraArgs []string
	Logger    zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		BinaryPath: "ffmpeg",
		LogLevel:   LogLevelError,
		Overwrite:  true,
		Logger:     zerolog.Nop(),
	}
}
