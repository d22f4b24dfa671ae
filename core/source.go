package playback

import (
	"bytes"
	"time"

	"github.com/mkoprivica/duplex-core/core/audio"
)

// BufferedSource is an in-memory PCM audio source, for canned prompts and
// tests.
type BufferedSource struct {
	reader       *bytes.Reader
	encodingInfo audio.EncodingInfo
	size         int
}

func NewBufferedSource(pcm []byte, encodingInfo audio.EncodingInfo) *BufferedSource {
	if encodingInfo.IsZero() {
		encodingInfo = audio.GetDefaultEncodingInfo()
	}

	return &BufferedSource{
		reader:       bytes.NewReader(pcm),
		encodingInfo: encodingInfo,
		size:         len(pcm),
	}
}

func (s *BufferedSource) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *BufferedSource) EncodingInfo() audio.EncodingInfo {
	return s.encodingInfo
}

// Duration reports the total playback length of the buffered audio.
func (s *BufferedSource) Duration() time.Duration {
	return s.encodingInfo.Duration(s.size)
}
