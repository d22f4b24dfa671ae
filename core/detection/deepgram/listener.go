package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/mkoprivica/duplex-core/core/audio"
	"github.com/mkoprivica/duplex-core/core/bargein"
)

const keepAliveInterval = 5 * time.Second

// Listener adapts Deepgram's live-listen websocket into a barge-in detection
// source: VAD speech-started messages and interim transcripts become
// detection events, utterance ends become negative signals.
//
// Microphone audio is forwarded through SendAudio; the listener itself never
// touches capture devices.
type Listener struct {
	encodingInfo audio.EncodingInfo

	connMu    sync.Mutex
	conn      *websocket.Conn
	lastMsgTs time.Time
}

type ListenerOption func(*Listener)

func WithEncodingInfo(encodingInfo audio.EncodingInfo) ListenerOption {
	return func(l *Listener) { l.encodingInfo = encodingInfo }
}

func NewListener(opts ...ListenerOption) *Listener {
	listener := &Listener{encodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(listener)
	}
	return listener
}

// Listen connects to Deepgram and blocks converting messages to detection
// events until ctx is cancelled or the socket fails.
func (l *Listener) Listen(ctx context.Context, onEvent func(event bargein.Event)) error {
	encoding, err := convertEncoding(l.encodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := connectWebsocket(connectionOptions{
		sampleRate: encoding.SampleRate,
		encoding:   encoding.Format.Name(),
	})
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	l.connMu.Lock()
	l.conn = conn
	l.lastMsgTs = time.Now()
	l.connMu.Unlock()

	keepAliveCtx, cancelKeepAlive := context.WithCancel(ctx)
	defer cancelKeepAlive()
	go l.keepAlive(keepAliveCtx)

	go func() {
		<-ctx.Done()
		if err := l.Close(); err != nil {
			log.Println("Failed to close deepgram stream", "error", err)
		}
		conn.Close()
	}()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			l.connMu.Lock()
			l.conn = nil
			l.connMu.Unlock()
			conn.Close()

			if ctx.Err() != nil || err.Error() == "websocket: close 1000 (normal)" {
				return nil
			}
			return fmt.Errorf("failed to read deepgram websocket message: %w", err)
		}
		if msgType != websocket.BinaryMessage {
			l.processMessage(msg, onEvent)
		}
	}
}

type connectionOptions struct {
	sampleRate int
	encoding   string
}

func connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", "nova-3")
	queryParams.Set("language", "en-US")
	queryParams.Set("interim_results", "true")
	queryParams.Set("vad_events", "true")
	queryParams.Set("endpointing", "300")
	queryParams.Set("utterance_end_ms", "1000")

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (l *Listener) processMessage(msg []byte, onEvent func(event bargein.Event)) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeSpeechStartedResponse:
		var msgResp api.SpeechStartedResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}
		onEvent(bargein.NewEvent(true))

	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}

		alternative := msgResp.Channel.Alternatives[0]
		transcript := strings.TrimSpace(alternative.Transcript)
		if transcript == "" {
			return
		}
		onEvent(bargein.NewTranscriptEvent(transcript, alternative.Confidence))

	case api.TypeUtteranceEndResponse:
		var msgResp api.UtteranceEndResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}
		onEvent(bargein.NewEvent(false))
	}
}

// SendAudio forwards captured microphone audio to the live-listen stream.
func (l *Listener) SendAudio(audio []byte) error {
	l.connMu.Lock()
	defer l.connMu.Unlock()

	if l.conn == nil {
		return fmt.Errorf("listener not connected")
	}

	l.lastMsgTs = time.Now()
	if err := l.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

// keepAlive keeps the socket open across quiet stretches where no microphone
// audio is being forwarded.
func (l *Listener) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.connMu.Lock()
			if l.conn != nil && time.Since(l.lastMsgTs) >= keepAliveInterval {
				if err := l.conn.WriteJSON(struct {
					Type string `json:"type"`
				}{Type: "KeepAlive"}); err != nil {
					log.Println("Failed to write keep-alive to deepgram client", "error", err)
				}
			}
			l.connMu.Unlock()
		}
	}
}

func (l *Listener) Close() error {
	l.connMu.Lock()
	defer l.connMu.Unlock()

	if l.conn == nil {
		return nil
	}

	if err := l.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream through websocket: %w", err)
	}
	return nil
}
