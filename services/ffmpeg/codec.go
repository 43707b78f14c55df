package ffmpeg

// Codec and container names as ffmpeg knows them.
const (
	VideoCodecH264  = "libx264"
	VideoCodecH265  = "libx265"
	VideoCodecMJPEG = "mjpeg"
	VideoCodecCopy  = "copy"

	AudioCodecAAC  = "aac"
	AudioCodecMP3  = "libmp3lame"
	AudioCodecPCM  = "pcm_s16le"
	AudioCodecCopy = "copy"

	FormatMP4    = "mp4"
	FormatMOV    = "mov"
	FormatMXF    = "mxf"
	FormatMP3    = "mp3"
	FormatWAV    = "wav"
	FormatImage2 = "image2"
)
