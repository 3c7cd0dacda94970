package transport

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/rkvadlamudi/campusql/internal/catalog"
	"github.com/rkvadlamudi/campusql/internal/engine"
)

type wsFrame struct {
	Event    string `json:"event"`
	Response string `json:"response"`
	Typing   bool   `json:"typing"`
}

func readFrame(t *testing.T, ctx context.Context, c *websocket.Conn) wsFrame {
	t.Helper()
	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var f wsFrame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode frame %s: %v", data, err)
	}
	return f
}

func TestWebSocketConversation(t *testing.T) {
	store := countStore{}
	names := catalog.NewNameList([]string{"Faculty"})
	eng := engine.New(engine.Options{
		LLM:         chatLLM{},
		Store:       store,
		Names:       names,
		Institute:   "CIET",
		FuzzyCutoff: 0.6,
		MaxAttempts: 3,
	})
	registry := engine.NewRegistry(10)
	ws := NewWebSocketHandler(eng, registry, time.Second, "CIET")

	srv := httptest.NewServer(ws)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close(websocket.StatusNormalClosure, "")

	greeting := readFrame(t, ctx, c)
	if greeting.Event != EventBotResponse || !strings.Contains(greeting.Response, "Welcome") {
		t.Fatalf("expected greeting, got %+v", greeting)
	}
	if registry.Len() != 1 {
		t.Errorf("expected one registered session, got %d", registry.Len())
	}

	send := func(text string) {
		data, _ := json.Marshal(InboundMessage{Event: EventChatMessage, Message: text})
		if err := c.Write(ctx, websocket.MessageText, data); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	send("hello")
	if f := readFrame(t, ctx, c); f.Event != EventBotTyping || !f.Typing {
		t.Errorf("expected typing on, got %+v", f)
	}
	if f := readFrame(t, ctx, c); f.Event != EventBotResponse || f.Response != "Hello from the enquiry desk." {
		t.Errorf("expected answer, got %+v", f)
	}
	if f := readFrame(t, ctx, c); f.Event != EventBotTyping || f.Typing {
		t.Errorf("expected typing off, got %+v", f)
	}

	// A second message inside the interval gets the throttle notice and
	// never reaches the engine.
	send("again")
	if f := readFrame(t, ctx, c); f.Response != msgThrottled {
		t.Errorf("expected throttle notice, got %+v", f)
	}
}

func TestWebSocketInvalidFramesIgnored(t *testing.T) {
	eng := engine.New(engine.Options{
		LLM:         chatLLM{},
		Store:       countStore{},
		Names:       catalog.NewNameList(nil),
		Institute:   "CIET",
		FuzzyCutoff: 0.6,
		MaxAttempts: 3,
	})
	registry := engine.NewRegistry(10)
	srv := httptest.NewServer(NewWebSocketHandler(eng, registry, time.Second, "CIET"))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close(websocket.StatusNormalClosure, "")

	readFrame(t, ctx, c) // greeting

	if err := c.Write(ctx, websocket.MessageText, []byte(`{"event":"bot-response","message":"spoof"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	// A valid message after the junk still gets answered.
	data, _ := json.Marshal(InboundMessage{Event: EventChatMessage, Message: "hi"})
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	if f := readFrame(t, ctx, c); f.Event != EventBotTyping {
		t.Errorf("junk frame should be skipped silently, got %+v", f)
	}
}
