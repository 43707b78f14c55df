package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fxkt-tech/cluv/editor"
	"github.com/fxkt-tech/cluv/services/ffprobe"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagFFmpeg  string
	flagFFprobe string

	flagOutput  string
	flagKind    string
	flagDryRun  bool
	flagResolve bool

	flagVideoCodec   string
	flagAudioCodec   string
	flagQuality      int
	flagVideoBitrate int
	flagAudioBitrate int
)

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func newEditor() *editor.Editor {
	opts := editor.DefaultOptions()
	opts.Logger = newLogger()
	opts.FFmpeg.BinaryPath = flagFFmpeg
	opts.FFmpeg.Debug = flagVerbose
	opts.FFmpeg.DryRun = flagDryRun
	opts.FFprobe.BinaryPath = flagFFprobe
	return editor.New(opts)
}

var rootCmd = &cobra.Command{
	Use:   "cluv",
	Short: "Timeline composition and media processing toolkit",
}

var validateCmd = &cobra.Command{
	Use:   "validate <protocol.json>",
	Short: "Validate a composition document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newEditor()
		if err := app.LoadFile(args[0]); err != nil {
			return err
		}
		if err := app.Validate(); err != nil {
			return err
		}
		fmt.Println("OK")
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Print media metadata as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := ffprobe.DefaultOptions()
		opts.BinaryPath = flagFFprobe
		result, err := ffprobe.Probe(cmd.Context(), opts, args[0])
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <protocol.json>",
	Short: "Compile a composition document and run the export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newEditor()
		if err := app.LoadFile(args[0]); err != nil {
			return err
		}
		if flagResolve {
			if err := app.Resolve(cmd.Context()); err != nil {
				return err
			}
		}
		return app.Export(cmd.Context(), editor.ExportOptions{
			OutputFile:   flagOutput,
			Kind:         editor.ExportKind{Value: flagKind},
			VideoCodec:   flagVideoCodec,
			AudioCodec:   flagAudioCodec,
			Quality:      flagQuality,
			VideoBitrate: flagVideoBitrate,
			AudioBitrate: flagAudioBitrate,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&flagFFmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary path")
	rootCmd.PersistentFlags().StringVar(&flagFFprobe, "ffprobe", "ffprobe", "ffprobe binary path")

	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (required)")
	exportCmd.Flags().StringVar(&flagKind, "kind", "video", "export kind: video, audio or image")
	exportCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the engine command instead of running it")
	exportCmd.Flags().BoolVar(&flagResolve, "resolve", false, "probe materials for missing metadata first")
	exportCmd.Flags().StringVar(&flagVideoCodec, "video-codec", "", "video codec override")
	exportCmd.Flags().StringVar(&flagAudioCodec, "audio-codec", "", "audio codec override")
	exportCmd.Flags().IntVar(&flagQuality, "quality", 0, "CRF quality value")
	exportCmd.Flags().IntVar(&flagVideoBitrate, "video-bitrate", 0, "video bitrate in kbps")
	exportCmd.Flags().IntVar(&flagAudioBitrate, "audio-bitrate", 0, "audio bitrate in kbps")
	_ = exportCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(validateCmd, probeCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
