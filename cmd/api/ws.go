package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pairchat/internal/auth"
	"pairchat/internal/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is token-authenticated; origin checks add nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEvent is one server-to-client frame.
type wsEvent struct {
	Type   string            `json:"type"`
	ChatID string            `json:"chat_id,omitempty"`
	Chats  []chat.RecentChat `json:"chats,omitempty"`
	Items  []chat.FeedItem   `json:"items,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// wsIntent is one client-to-server frame. "open" switches the live message
// view to the conversation with OtherUID and marks it read; "send" sends a
// message into the currently relevant conversation.
type wsIntent struct {
	Type      string `json:"type"`
	OtherUID  string `json:"other_uid"`
	OtherName string `json:"other_name"`
	Text      string `json:"text"`
}

// wsSession is one live connection. The recent-chats subscription runs for
// the whole session; the messages subscription follows the open intents.
type wsSession struct {
	id     string
	sess   auth.Session
	conn   *websocket.Conn
	engine *chat.Engine
	server *Server

	send chan []byte

	mu         sync.Mutex
	openOther  string
	cancelMsgs func()
}

// handleWS upgrades the connection and runs the session until either side
// goes away. Teardown cancels every subscription the session opened.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ws := &wsSession{
		id:     uuid.New().String(),
		sess:   sess,
		conn:   conn,
		engine: s.engine,
		server: s,
		send:   make(chan []byte, 256),
	}

	ctx, cancel := context.WithCancel(context.Background())

	s.logger.Info("websocket connected", "conn_id", ws.id, "user_id", sess.UserID)

	recent, err := s.engine.SubscribeRecentChats(ctx, sess)
	if err != nil {
		s.logger.Error("recent-chats subscription failed", "conn_id", ws.id, "error", err)
		cancel()
		conn.Close()
		return
	}

	go ws.forwardRecent(ctx, recent)
	go ws.writePump(ctx)
	ws.readPump(ctx, cancel)

	cancel()
	ws.closeMessagesSub()
	s.logger.Info("websocket disconnected", "conn_id", ws.id, "user_id", sess.UserID)
}

func (ws *wsSession) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	defer ws.conn.Close()

	for {
		_, raw, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.server.logger.Warn("websocket read failed", "conn_id", ws.id, "error", err)
			}
			return
		}

		var intent wsIntent
		if err := json.Unmarshal(raw, &intent); err != nil {
			ws.pushError("malformed frame")
			continue
		}

		switch intent.Type {
		case "open":
			ws.openConversation(ctx, intent.OtherUID)
		case "send":
			otherUID := intent.OtherUID
			if otherUID == "" {
				// default to the conversation the client has open
				ws.mu.Lock()
				otherUID = ws.openOther
				ws.mu.Unlock()
			}
			if otherUID == "" {
				ws.pushError("no conversation open")
				continue
			}
			if _, err := ws.engine.Send(ctx, ws.sess, otherUID, intent.OtherName, intent.Text); err != nil {
				ws.pushError(err.Error())
			}
		default:
			ws.pushError("unknown intent type")
		}
	}
}

func (ws *wsSession) writePump(ctx context.Context) {
	defer ws.conn.Close()

	for {
		select {
		case frame, ok := <-ws.send:
			if !ok {
				ws.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ctx.Done():
			ws.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// openConversation retargets the live message view. The previous
// conversation's subscription is cancelled first so frames from it can no
// longer arrive, then the new conversation is marked read and subscribed.
func (ws *wsSession) openConversation(ctx context.Context, otherUID string) {
	ws.closeMessagesSub()

	ws.engine.MarkRead(ctx, ws.sess, otherUID)

	sub, err := ws.engine.SubscribeMessages(ctx, ws.sess, otherUID)
	if err != nil {
		ws.server.logger.Error("messages subscription failed", "conn_id", ws.id, "error", err)
		ws.pushError("could not open conversation")
		return
	}

	ws.mu.Lock()
	ws.openOther = otherUID
	ws.cancelMsgs = sub.Cancel
	ws.mu.Unlock()

	chatID := chat.ConversationID(ws.sess.UserID, otherUID)
	go ws.forwardMessages(ctx, chatID, sub)
}

func (ws *wsSession) closeMessagesSub() {
	ws.mu.Lock()
	cancel := ws.cancelMsgs
	ws.cancelMsgs = nil
	ws.openOther = ""
	ws.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (ws *wsSession) forwardRecent(ctx context.Context, sub *chat.RecentChatsSubscription) {
	for snap := range sub.Updates() {
		ws.push(ctx, wsEvent{Type: "recent", Chats: snap})
	}
}

func (ws *wsSession) forwardMessages(ctx context.Context, chatID string, sub *chat.MessagesSubscription) {
	for snap := range sub.Updates() {
		ws.push(ctx, wsEvent{Type: "messages", ChatID: chatID, Items: chat.BuildFeed(snap, time.Now())})
	}
}

func (ws *wsSession) push(ctx context.Context, ev wsEvent) {
	frame, err := json.Marshal(ev)
	if err != nil {
		ws.server.logger.Error("marshaling websocket event", "conn_id", ws.id, "error", err)
		return
	}

	select {
	case ws.send <- frame:
	case <-ctx.Done():
	}
}

func (ws *wsSession) pushError(msg string) {
	frame, err := json.Marshal(wsEvent{Type: "error", Error: msg})
	if err != nil {
		return
	}
	select {
	case ws.send <- frame:
	default:
	}
}
