package miniaudio

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/mkoprivica/duplex-core/core/audio"
)

// Sink plays linear16 PCM through the default output device using miniaudio.
//
// The device callback pulls from an internal buffer that a pump goroutine
// fills from the session's audio source, so the device never blocks on a slow
// source and Stop only has to halt the device.
type Sink struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig
	encodingInfo audio.EncodingInfo

	mu sync.Mutex

	audioMu  sync.Mutex
	buffer   []byte
	loaded   bool
	drained  bool
	started  bool
	stopPump chan struct{}
}

func NewSink() (*Sink, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize miniaudio context: %w", err)
	}

	sink := &Sink{
		audioContext: audioCtx,
		encodingInfo: audio.GetDefaultEncodingInfo(),
	}

	sampleRate := uint32(sink.encodingInfo.SampleRate)
	channels := 1
	format := malgo.FormatS16

	sink.config = malgo.DefaultDeviceConfig(malgo.Playback)
	sink.config.SampleRate = sampleRate
	sink.config.Playback.Format = format
	sink.config.Playback.Channels = uint32(channels)
	sink.config.Alsa.NoMMap = 1
	// Short periods keep device-side buffering from adding to stop latency.
	sink.config.PeriodSizeInFrames = sampleRate / 50 // ~20ms of audio
	sink.config.Periods = 2

	if sink.device, err = malgo.InitDevice(
		audioCtx.Context,
		sink.config,
		malgo.DeviceCallbacks{Data: sink.processAudio()},
	); err != nil {
		sink.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return sink, nil
}

func (s *Sink) processAudio() malgo.DataProc {
	return func(outputSamples, inputSamples []byte, frameCount uint32) {
		s.audioMu.Lock()
		defer s.audioMu.Unlock()

		n := copy(outputSamples, s.buffer)
		s.buffer = s.buffer[n:]
		for i := n; i < len(outputSamples); i++ {
			outputSamples[i] = 0
		}

		if len(s.buffer) == 0 && s.loaded {
			s.drained = true
		}
	}
}

// Start begins streaming source through the device. The sink reports playing
// until the source drains or Stop is called.
func (s *Sink) Start(source io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return fmt.Errorf("device not initialized")
	}

	s.audioMu.Lock()
	if s.started && !s.drained {
		s.audioMu.Unlock()
		return fmt.Errorf("sink already playing")
	}
	s.buffer = nil
	s.loaded = false
	s.drained = false
	s.started = true
	stopPump := make(chan struct{})
	s.stopPump = stopPump
	s.audioMu.Unlock()

	go s.pump(source, stopPump)

	if !s.device.IsStarted() {
		if err := s.device.Start(); err != nil {
			return fmt.Errorf("failed to start playback device: %w", err)
		}
	}

	return nil
}

func (s *Sink) pump(source io.Reader, stop chan struct{}) {
	chunk := make([]byte, 4096)
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := source.Read(chunk)
		if n > 0 {
			s.audioMu.Lock()
			s.buffer = append(s.buffer, chunk[:n]...)
			s.audioMu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				log.Println("Failed to read from audio source:", err)
			}
			s.audioMu.Lock()
			s.loaded = true
			if len(s.buffer) == 0 {
				s.drained = true
			}
			s.audioMu.Unlock()
			return
		}
	}
}

// Stop halts the device and discards any unplayed audio.
func (s *Sink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return fmt.Errorf("device not initialized")
	}

	s.audioMu.Lock()
	if s.stopPump != nil {
		close(s.stopPump)
		s.stopPump = nil
	}
	s.buffer = nil
	s.loaded = true
	s.drained = true
	s.audioMu.Unlock()

	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}

	return nil
}

func (s *Sink) IsPlaying() bool {
	s.audioMu.Lock()
	defer s.audioMu.Unlock()

	return s.started && !s.drained
}

func (s *Sink) EncodingInfo() audio.EncodingInfo {
	return s.encodingInfo
}

func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	if s.audioContext != nil {
		_ = s.audioContext.Uninit()
		s.audioContext.Free()
		s.audioContext = nil
	}
}
