package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/inkwell-dev/inkwell/internal/document"
	"github.com/inkwell-dev/inkwell/internal/history"
	"github.com/inkwell-dev/inkwell/internal/provider"
	"github.com/inkwell-dev/inkwell/internal/session"
)

// Bridge hosts one live editor session per websocket connection. The client
// sends editing commands; the bridge pushes every state transition and every
// document change, so a thin web editor can render the typing reveal without
// owning any session logic.
type Bridge struct {
	prov     provider.Provider
	hist     *history.Store
	sessOpts session.Options

	mu      sync.RWMutex
	clients map[string]*wsClient
	nextID  int
}

type wsClient struct {
	conn *websocket.Conn
	ctx  context.Context
	mu   sync.Mutex // serializes writes
	ctrl *session.Controller
}

// ClientMessage is a command from the editor client.
type ClientMessage struct {
	Type string `json:"type"` // "append", "submit", "reset"
	Text string `json:"text,omitempty"`
}

// ServerMessage is an event pushed to the editor client.
type ServerMessage struct {
	Type    string `json:"type"` // "state" or "change"
	Phase   string `json:"phase,omitempty"`
	Loading bool   `json:"loading,omitempty"`
	Error   string `json:"error,omitempty"`
	Text    string `json:"text,omitempty"`
}

// NewBridge creates a Bridge that builds sessions against the given provider.
func NewBridge(prov provider.Provider, hist *history.Store, sessOpts session.Options) *Bridge {
	return &Bridge{
		prov:     prov,
		hist:     hist,
		sessOpts: sessOpts,
		clients:  make(map[string]*wsClient),
	}
}

// HandleWS is the HTTP handler for the /ws endpoint.
func (b *Bridge) HandleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // editor UIs are served from their own origin
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}

	ctx := r.Context()

	doc := document.New("")
	prov := b.prov
	if b.hist != nil {
		prov = &recordingProvider{inner: b.prov, hist: b.hist}
	}
	ctrl := session.NewController(doc, prov, b.sessOpts)

	b.mu.Lock()
	b.nextID++
	id := fmt.Sprintf("client-%d", b.nextID)
	client := &wsClient{conn: c, ctx: ctx, ctrl: ctrl}
	b.clients[id] = client
	b.mu.Unlock()

	slog.Info("editor session connected", "id", id, "remote", r.RemoteAddr)

	// Push every transition and every document change to this client.
	ctrl.OnTransition(func(st session.State) {
		client.send(ServerMessage{
			Type:    "state",
			Phase:   st.Phase.String(),
			Loading: st.IsLoading(),
			Error:   st.ErrorMessage(),
		})
	})
	doc.OnChange(func(text string) {
		client.send(ServerMessage{Type: "change", Text: text})
	})

	// Initial state so the client can render immediately.
	client.send(ServerMessage{Type: "state", Phase: ctrl.State().Phase.String()})

	b.readLoop(ctx, id, client)
}

// readLoop processes client commands until the connection closes.
func (b *Bridge) readLoop(ctx context.Context, id string, client *wsClient) {
	defer func() {
		b.mu.Lock()
		delete(b.clients, id)
		b.mu.Unlock()
		client.ctrl.Reset()
		client.conn.Close(websocket.StatusNormalClosure, "")
		slog.Info("editor session disconnected", "id", id)
	}()

	for {
		_, data, err := client.conn.Read(ctx)
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("ignoring malformed client message", "id", id, "error", err)
			continue
		}

		switch msg.Type {
		case "append":
			client.ctrl.Document().Append(msg.Text)
		case "submit":
			client.ctrl.Submit(context.Background())
		case "reset":
			client.ctrl.Reset()
		default:
			slog.Debug("ignoring unknown client message", "id", id, "type", msg.Type)
		}
	}
}

// CloseAll disconnects every client, used at server shutdown.
func (b *Bridge) CloseAll() {
	b.mu.Lock()
	clients := make([]*wsClient, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.Unlock()

	for _, c := range clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (c *wsClient) send(msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	if err := c.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		slog.Debug("websocket write failed", "error", err)
	}
}

// recordingProvider wraps a provider so websocket-session requests land in
// the continuation log the same way /continue requests do.
type recordingProvider struct {
	inner provider.Provider
	hist  *history.Store
}

func (p *recordingProvider) Name() string { return p.inner.Name() }

func (p *recordingProvider) Complete(ctx context.Context, req provider.Request) (string, error) {
	started := time.Now()
	out, err := p.inner.Complete(ctx, req)
	rec := history.Record{
		Provider:    p.inner.Name(),
		PromptChars: len(req.Prompt),
		MaxTokens:   req.MaxTokens,
		Duration:    time.Since(started),
	}
	if err != nil {
		rec.Status = history.StatusFailed
		rec.Reason = err.Error()
	} else {
		rec.Status = history.StatusOK
		rec.OutputChars = len(out)
	}
	if appendErr := p.hist.Append(rec); appendErr != nil {
		slog.Warn("failed to record continuation", "error", appendErr)
	}
	return out, err
}
