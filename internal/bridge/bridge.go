// Package bridge connects the assistant to a remote hub over a websocket.
// Peers send utterances as text or as encoded audio; the bridge decodes
// and transcribes audio locally, then feeds the session the same way the
// microphone would. Responses go back to whichever peer spoke last.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	log "log/slog"

	"github.com/gorilla/websocket"

	"synbi/internal/assistant"
	"synbi/pkg/audioconv"
	"synbi/pkg/stt"
)

// Message is one frame on the hub. Audio, when present, holds a wav, mp3
// or ogg payload and takes precedence over Content.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Audio   []byte `json:"audio,omitempty"`
}

type inbound struct {
	text string
	err  error
}

// Bridge implements both sides of the session's I/O over a single
// websocket connection. Run must be pumping for Capture to see anything.
type Bridge struct {
	conn *websocket.Conn
	name string
	stt  *stt.Transcriber

	in chan inbound

	mu       sync.Mutex
	lastFrom string
}

// Dial connects to the hub. name identifies this daemon in the From field
// of outgoing frames. transcriber may be nil when peers only send text.
func Dial(wsURL, name string, transcriber *stt.Transcriber) (*Bridge, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	log.Info("Connected to hub", "url", wsURL)
	return &Bridge{
		conn: conn,
		name: name,
		stt:  transcriber,
		in:   make(chan inbound, 8),
	}, nil
}

// Run is the read pump. It returns when the connection drops; the pending
// Capture then reports a closed source.
func (b *Bridge) Run(ctx context.Context) error {
	defer close(b.in)

	for {
		_, raw, err := b.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read hub frame: %w", err)
		}

		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			log.Warn("Malformed hub frame", "err", err)
			continue
		}

		b.mu.Lock()
		b.lastFrom = m.From
		b.mu.Unlock()

		text, err := b.extract(ctx, &m)
		select {
		case b.in <- inbound{text: text, err: err}:
		case <-ctx.Done():
			return nil
		}
	}
}

func (b *Bridge) extract(ctx context.Context, m *Message) (string, error) {
	if len(m.Audio) == 0 {
		if m.Content == "" {
			return "", assistant.ErrNoSpeech
		}
		return m.Content, nil
	}

	if b.stt == nil {
		log.Warn("Audio frame received but no transcriber configured")
		return "", assistant.ErrChannelDown
	}

	pcm, err := audioconv.Decode(m.Audio, audioconv.Options{})
	if err != nil {
		log.Warn("Failed to decode audio frame", "from", m.From, "err", err)
		return "", assistant.ErrUnintelligible
	}

	res, err := b.stt.TranscribePCM(ctx, pcm, stt.Options{Language: "en"})
	if err != nil {
		log.Error("Failed to transcribe audio frame", "err", err)
		return "", assistant.ErrChannelDown
	}
	if res.Text == "" {
		return "", assistant.ErrUnintelligible
	}
	return res.Text, nil
}

// Capture blocks for the next inbound utterance.
func (b *Bridge) Capture(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", assistant.ErrSourceClosed
	case msg, ok := <-b.in:
		if !ok {
			return "", assistant.ErrSourceClosed
		}
		return msg.text, msg.err
	}
}

// Say sends text back to the peer whose utterance is being handled.
func (b *Bridge) Say(text string) error {
	b.mu.Lock()
	to := b.lastFrom
	b.mu.Unlock()

	data, err := json.Marshal(Message{
		From:    b.name,
		To:      to,
		Kind:    "say",
		Content: text,
	})
	if err != nil {
		return err
	}
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Bridge) Close() error {
	return b.conn.Close()
}
