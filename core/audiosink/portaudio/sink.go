package portaudio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/mkoprivica/duplex-core/core/audio"
)

// Sink plays linear16 PCM through the default PortAudio output stream.
//
// PortAudio writes are blocking, so a writer goroutine feeds the stream one
// buffer at a time and checks for a stop between writes; worst-case stop
// latency is one buffer of audio.
type Sink struct {
	bufferSize   int
	stream       *portaudio.Stream
	out          []int16
	encodingInfo audio.EncodingInfo

	mu         sync.Mutex
	playing    bool
	stopWriter chan struct{}
}

func NewSink(bufferSize int) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, 1, audio.DefaultSampleRate, bufferSize, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Sink{
		bufferSize: bufferSize,
		stream:     stream,
		out:        out,
		encodingInfo: audio.EncodingInfo{
			SampleRate: audio.DefaultSampleRate,
			Format:     audio.EncodingLinear16,
		},
	}, nil
}

func (s *Sink) Start(source io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		return fmt.Errorf("sink already playing")
	}

	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	s.playing = true
	stopWriter := make(chan struct{})
	s.stopWriter = stopWriter
	go s.write(source, stopWriter)

	return nil
}

func (s *Sink) write(source io.Reader, stop chan struct{}) {
	frame := make([]byte, s.bufferSize*2)
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := io.ReadFull(source, frame)
		if n > 0 {
			for i := n; i < len(frame); i++ {
				frame[i] = 0
			}
			binary.Read(bytes.NewReader(frame), binary.LittleEndian, s.out)
			if writeErr := s.stream.Write(); writeErr != nil {
				log.Printf("Failed to write to portaudio stream: %v", writeErr)
			}
		}
		if err != nil {
			s.mu.Lock()
			s.playing = false
			s.mu.Unlock()
			return
		}
	}
}

// Stop aborts the stream without draining buffered audio; an interrupted
// session should go quiet immediately, not finish its last buffer.
func (s *Sink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return nil
	}

	close(s.stopWriter)
	s.stopWriter = nil
	s.playing = false

	if err := s.stream.Abort(); err != nil {
		return fmt.Errorf("failed to abort portaudio stream: %w", err)
	}

	return nil
}

func (s *Sink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Sink) EncodingInfo() audio.EncodingInfo {
	return s.encodingInfo
}

func (s *Sink) Close() {
	s.stream.Close()
	portaudio.Terminate()
}
