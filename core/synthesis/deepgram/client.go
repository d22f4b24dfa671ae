package deepgram

import (
	"context"
	"fmt"

	"github.com/mkoprivica/duplex-core/core/audio"
)

type deepgramVoice string

const (
	VoiceAsteria deepgramVoice = "aura-2-asteria-en"
	VoiceThalia  deepgramVoice = "aura-2-thalia-en"
	VoiceOrion   deepgramVoice = "aura-2-orion-en"

	defaultVoice = VoiceAsteria
)

// Client synthesizes speech through Deepgram's speak websocket.
type Client struct {
	voice        deepgramVoice
	encodingInfo audio.EncodingInfo
}

type ClientOption func(*Client)

func WithVoice(voice deepgramVoice) ClientOption {
	return func(c *Client) { c.voice = voice }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) ClientOption {
	return func(c *Client) { c.encodingInfo = encodingInfo }
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		voice:        defaultVoice,
		encodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Speak opens a speak stream for text and returns a source streaming the
// synthesized PCM. The stream is flushed and closed server-side once all text
// is submitted, so the source drains to EOF on its own.
func (c *Client) Speak(ctx context.Context, text string) (*SpeechSource, error) {
	source, err := newSpeechSource(ctx, c.voice, c.encodingInfo)
	if err != nil {
		return nil, err
	}

	if err := source.sendText(text); err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to send text to deepgram: %w", err)
	}
	if err := source.flush(); err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to flush deepgram stream: %w", err)
	}

	return source, nil
}
