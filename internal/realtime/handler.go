package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/devhub/backend/internal/middleware"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin upgrades are allowed; the JWT check below is the gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP connections to WebSocket and bridges them to the Hub
type Handler struct {
	hub *Hub
}

// NewHandler creates a new realtime Handler
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRealtimeRoutes registers the WebSocket endpoint
func (h *Handler) RegisterRealtimeRoutes(g *echo.Group) {
	g.GET("/ws", h.Serve)
}

// joinFrame is the client's channel-join message. The declared user ID is
// advisory only: the channel a connection actually joins always derives from
// the verified token, so a client cannot subscribe to another user's events.
type joinFrame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Serve authenticates the request, upgrades it, and joins the connection to
// the authenticated user's channel until disconnect.
func (h *Handler) Serve(c echo.Context) error {
	// Browsers cannot set headers on WebSocket dials, so the token may also
	// arrive as a query parameter.
	tokenString := c.QueryParam("token")
	if tokenString == "" {
		tokenString, _ = middleware.TokenFromHeader(c.Request())
	}
	if tokenString == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := h.hub.Subscribe(claims.UserID)
	log.Printf("realtime: subscription %s opened for user %d", sub.ID, claims.UserID)

	go h.writePump(ws, sub)
	h.readPump(ws, sub)
	return nil
}

// readPump consumes client frames until the connection drops, then releases
// the subscription. Leaving the channel on disconnect is the guaranteed
// cleanup path; there is no other way out of this loop.
func (h *Handler) readPump(ws *websocket.Conn, sub *Subscription) {
	defer func() {
		h.hub.Unsubscribe(sub)
		ws.Close()
		log.Printf("realtime: subscription %s closed for user %d", sub.ID, sub.UserID)
	}()

	ws.SetReadLimit(512)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: subscription %s read error: %v", sub.ID, err)
			}
			return
		}

		var frame joinFrame
		if err := json.Unmarshal(msg, &frame); err != nil || frame.Event != "join" {
			continue
		}
		if frame.Data != strconv.FormatUint(uint64(sub.UserID), 10) {
			log.Printf("realtime: subscription %s declared foreign user %q on join, ignoring", sub.ID, frame.Data)
		}
	}
}

// writePump forwards hub events to the client and keeps the connection alive
func (h *Handler) writePump(ws *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
