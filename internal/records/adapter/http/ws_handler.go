package http

import (
	"context"
	"sync"
	"time"

	"recordstore/internal/records/adapter/realtime"
	"recordstore/internal/records/domain/client"
	"recordstore/internal/records/domain/model"
	"recordstore/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const wsReadTimeout = 60 * time.Second

// WebSocketHandler serves the live change feed. Clients subscribe to
// individual collections over one connection and receive every change event
// the engine publishes for them.
type WebSocketHandler struct {
	dispatcher *realtime.Dispatcher
	authClient client.AuthClient
	log        logger.Logger
}

// NewWebSocketHandler creates the WebSocket endpoint handler.
func NewWebSocketHandler(dispatcher *realtime.Dispatcher, authClient client.AuthClient, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		dispatcher: dispatcher,
		authClient: authClient,
		log:        log.WithComponent("websocket"),
	}
}

// RegisterRoutes mounts the listen endpoint. Browsers cannot set headers on
// WebSocket dials, so the session token may also arrive as ?token=.
func (h *WebSocketHandler) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/api/v1/ws")

	ws.Use("/listen", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return h.authenticateUpgrade(c)
	})
	ws.Get("/listen", websocket.New(h.handleConnection))
}

// authenticateUpgrade validates credentials before the protocol upgrade and
// stashes the identity in locals for the connection handler.
func (h *WebSocketHandler) authenticateUpgrade(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if secret := c.Get("X-API-Token"); secret != "" {
		principal, err := h.authClient.ResolveAPIToken(ctx, secret)
		if err != nil {
			return unauthorized(c, "invalid API token")
		}
		c.Locals(LocalPrincipal, principal)
		return c.Next()
	}

	token := c.Query("token")
	if token == "" {
		header := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if len(header) > len(prefix) && header[:len(prefix)] == prefix {
			token = header[len(prefix):]
		}
	}
	if token == "" {
		return unauthorized(c, "missing credentials")
	}

	userID, err := h.authClient.ValidateSession(ctx, token)
	if err != nil {
		return unauthorized(c, "invalid session token")
	}
	c.Locals(LocalUserID, userID)
	return c.Next()
}

// wsRequest is the client-to-server message envelope.
type wsRequest struct {
	Action     string `json:"action"`
	ProjectID  string `json:"projectId"`
	Collection string `json:"collection"`
}

// wsMessage is the server-to-client message envelope.
type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// wsSubscription tracks one live collection subscription of a connection.
type wsSubscription struct {
	id     string
	cancel context.CancelFunc
}

// handleConnection runs the read loop for one client connection. Event
// forwarding happens in per-subscription goroutines sharing a write mutex;
// the read loop owns subscribe/unsubscribe bookkeeping.
func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userID, _ := conn.Locals(LocalUserID).(string)
	tokenPrincipal, hasTokenPrincipal := conn.Locals(LocalPrincipal).(model.Principal)

	var writeMu sync.Mutex
	subscriptions := make(map[string]wsSubscription)

	defer func() {
		for key, sub := range subscriptions {
			sub.cancel()
			h.dispatcher.Unsubscribe(key, sub.id)
		}
		h.log.Info("WebSocket connection closed", "userID", userID)
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("WebSocket read failed", "userID", userID, "error", err)
			}
			return
		}

		switch req.Action {
		case "subscribe":
			h.subscribe(ctx, conn, &writeMu, subscriptions, req, userID, tokenPrincipal, hasTokenPrincipal)
		case "unsubscribe":
			h.unsubscribe(conn, &writeMu, subscriptions, req)
		case "ping":
			h.send(conn, &writeMu, wsMessage{Type: "pong"})
		default:
			h.sendError(conn, &writeMu, "invalid_action", "unknown action: "+req.Action)
		}
	}
}

func (h *WebSocketHandler) subscribe(
	ctx context.Context,
	conn *websocket.Conn,
	writeMu *sync.Mutex,
	subscriptions map[string]wsSubscription,
	req wsRequest,
	userID string,
	tokenPrincipal model.Principal,
	hasTokenPrincipal bool,
) {
	if req.ProjectID == "" || !model.ValidCollectionName(req.Collection) {
		h.sendError(conn, writeMu, "invalid_target", "projectId and a valid collection are required")
		return
	}

	principal := tokenPrincipal
	if hasTokenPrincipal {
		if principal.ProjectID != req.ProjectID {
			h.sendError(conn, writeMu, "forbidden", "token is not scoped to this project")
			return
		}
	} else {
		resolved, err := h.authClient.ResolveUserPrincipal(ctx, userID, req.ProjectID)
		if err != nil {
			h.sendError(conn, writeMu, "forbidden", "could not resolve project access")
			return
		}
		principal = resolved
	}
	if !principal.Tier.Covers(model.CategoryRead) {
		h.sendError(conn, writeMu, "forbidden", "permission tier does not cover reads")
		return
	}

	key := model.NewCollectionRef(req.ProjectID, req.Collection).ResourceKey()
	if _, exists := subscriptions[key]; exists {
		h.sendError(conn, writeMu, "already_subscribed", "already subscribed to "+key)
		return
	}

	subID, events := h.dispatcher.Subscribe(key)
	subCtx, subCancel := context.WithCancel(ctx)
	subscriptions[key] = wsSubscription{id: subID, cancel: subCancel}

	go h.forward(subCtx, conn, writeMu, key, events)

	h.log.Info("Client subscribed", "resource", key, "userID", userID)
	h.send(conn, writeMu, wsMessage{
		Type: "subscribed",
		Data: fiber.Map{"projectId": req.ProjectID, "collection": req.Collection},
	})
}

func (h *WebSocketHandler) unsubscribe(
	conn *websocket.Conn,
	writeMu *sync.Mutex,
	subscriptions map[string]wsSubscription,
	req wsRequest,
) {
	key := model.NewCollectionRef(req.ProjectID, req.Collection).ResourceKey()
	sub, ok := subscriptions[key]
	if !ok {
		h.sendError(conn, writeMu, "not_subscribed", "no subscription for "+key)
		return
	}

	sub.cancel()
	h.dispatcher.Unsubscribe(key, sub.id)
	delete(subscriptions, key)

	h.send(conn, writeMu, wsMessage{
		Type: "unsubscribed",
		Data: fiber.Map{"projectId": req.ProjectID, "collection": req.Collection},
	})
}

// forward streams one subscription's events until its channel closes or the
// subscription context ends.
func (h *WebSocketHandler) forward(
	ctx context.Context,
	conn *websocket.Conn,
	writeMu *sync.Mutex,
	key string,
	events <-chan model.ChangeEvent,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.send(conn, writeMu, wsMessage{Type: "change", Data: event}); err != nil {
				h.log.Warn("Failed to deliver change event", "resource", key, "error", err)
				return
			}
		}
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, writeMu *sync.Mutex, msg wsMessage) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	return conn.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, writeMu *sync.Mutex, code, message string) {
	h.send(conn, writeMu, wsMessage{
		Type: "error",
		Data: fiber.Map{"error": code, "message": message},
	})
}
