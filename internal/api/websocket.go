package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lifelens-island/internal/app/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsClient struct {
	conn     *websocket.Conn
	playerID uuid.UUID
	send     chan []byte
}

// islandWS streams session events (ticks, phase changes, feedback, results)
// and accepts quest commands. Closing the socket tears the screen down.
func (h *Handler) islandWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing token"})
		return
	}
	uid, err := h.auth.ParseToken(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid token"})
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn, playerID: uid, send: make(chan []byte, 32)}
	events, cancel := h.game.Subscribe(uid)
	done := make(chan struct{})
	go func() {
		h.writePump(client, events)
		_ = conn.Close()
		close(done)
	}()
	h.readPump(r.Context(), client)
	cancel()
	h.game.LeaveScreen(uid)
	<-done
}

type wsCommand struct {
	Type    string `json:"type"`
	QuestID string `json:"quest_id"`
	Value   string `json:"value"`
}

func (h *Handler) readPump(ctx context.Context, client *wsClient) {
	client.conn.SetReadLimit(2048)
	_ = client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		_ = client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg wsCommand
		if err := client.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "open":
			if strings.TrimSpace(msg.QuestID) == "" {
				h.sendError(client, "quest_id is required")
				continue
			}
			view, err := h.game.OpenQuest(ctx, client.playerID, msg.QuestID)
			h.reply(client, "open_result", view, err)
		case "answer":
			res, err := h.game.SubmitAnswer(ctx, client.playerID, msg.Value)
			h.reply(client, "answer_result", res, err)
		case "hint":
			hint, err := h.game.RequestHint(ctx, client.playerID)
			h.reply(client, "hint_result", map[string]any{"hint": hint}, err)
		case "close":
			err := h.game.CloseQuest(client.playerID)
			h.reply(client, "close_result", nil, err)
		default:
			h.sendError(client, "unknown message type")
		}
	}
}

func (h *Handler) writePump(client *wsClient, events <-chan game.Event) {
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error().Err(err).Msg("marshal ws event failed")
				continue
			}
			if !h.write(client, b) {
				return
			}
		case msg := <-client.send:
			if !h.write(client, msg) {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) write(client *wsClient, msg []byte) bool {
	_ = client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return client.conn.WriteMessage(websocket.TextMessage, msg) == nil
}

func (h *Handler) reply(client *wsClient, typ string, payload any, err error) {
	if err != nil {
		_, code := classify(err)
		h.enqueue(client, map[string]any{"type": "error", "for": typ, "code": code, "message": err.Error()})
		return
	}
	h.enqueue(client, map[string]any{"type": typ, "data": payload})
}

func (h *Handler) sendError(client *wsClient, msg string) {
	h.enqueue(client, map[string]any{"type": "error", "message": msg})
}

func (h *Handler) enqueue(client *wsClient, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case client.send <- b:
	default:
	}
}
