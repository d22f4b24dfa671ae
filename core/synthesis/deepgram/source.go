package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mkoprivica/duplex-core/core/audio"
)

// SpeechSource streams synthesized PCM from a speak websocket. It implements
// the audio-source contract of the playback core: Read plus EncodingInfo.
//
// Binary frames are relayed through a pipe so a slow sink applies
// backpressure to the socket instead of buffering unbounded audio.
type SpeechSource struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	reader *io.PipeReader
	writer *io.PipeWriter

	encodingInfo audio.EncodingInfo

	closeOnce sync.Once
}

func newSpeechSource(ctx context.Context, voice deepgramVoice, encodingInfo audio.EncodingInfo) (*SpeechSource, error) {
	conn, err := connectWebsocket(voice, encodingInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}

	source := &SpeechSource{
		conn:         conn,
		encodingInfo: encodingInfo,
	}
	source.reader, source.writer = io.Pipe()

	// An interrupted session stops reading mid-stream; tear the socket down
	// with the context so the relay goroutine cannot leak.
	context.AfterFunc(ctx, func() { source.Close() })

	go source.relayMessages(conn)

	return source, nil
}

func connectWebsocket(voice deepgramVoice, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (s *SpeechSource) relayMessages(conn *websocket.Conn) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			s.writer.CloseWithError(io.EOF)
			return
		}

		if msgType == websocket.BinaryMessage {
			if _, err := s.writer.Write(msg); err != nil {
				// Reader side is gone; stop relaying.
				s.Close()
				return
			}
			continue
		}

		var parsedMsg struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(msg, &parsedMsg); err != nil {
			log.Println("Failed to unmarshal deepgram message", "error", err)
			continue
		}

		switch parsedMsg.Type {
		case "Flushed":
			s.writer.Close()
			s.closeConn()
			return
		case "Error":
			s.writer.CloseWithError(fmt.Errorf("deepgram speak error: %s", parsedMsg.Description))
			s.closeConn()
			return
		}
	}
}

func (s *SpeechSource) sendText(text string) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("speak stream already closed")
	}
	return s.conn.WriteJSON(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: "Speak", Text: text})
}

func (s *SpeechSource) flush() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("speak stream already closed")
	}
	return s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: "Flush"})
}

func (s *SpeechSource) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *SpeechSource) EncodingInfo() audio.EncodingInfo {
	return s.encodingInfo
}

// Close tears down the socket and unblocks any pending Read. Safe to call
// more than once.
func (s *SpeechSource) Close() error {
	s.closeOnce.Do(func() {
		s.writer.CloseWithError(io.EOF)
		s.reader.Close()
		s.closeConn()
	})
	return nil
}

func (s *SpeechSource) closeConn() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
