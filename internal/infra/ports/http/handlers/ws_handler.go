package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/ostanin/huddle/internal/application/config"
	"github.com/ostanin/huddle/internal/application/constant"
	"github.com/ostanin/huddle/internal/application/metric"
	"github.com/ostanin/huddle/internal/domain/events"
	"github.com/ostanin/huddle/internal/infra/adapters/memory"
	"github.com/ostanin/huddle/internal/usecase"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	signalingUsecase usecase.SignalingUsecase

	wsConnRepo memory.WebsocketConnectionRepository
}

func NewWebSocketHandler(
	cfg *config.Config,
	signalingUsecase usecase.SignalingUsecase,
	wsConnRepo memory.WebsocketConnectionRepository,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return slices.Contains(cfg.AllowedOrigins, r.Header.Get("Origin"))
			},
		},
		signalingUsecase: signalingUsecase,
		wsConnRepo:       wsConnRepo,
	}
}

// Handle owns the connection for its whole lifetime: accept, session
// creation, read loop, and disconnect cleanup. Cleanup runs through the
// usecase exactly once however the loop exits.
func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	sessionID := uuid.New()

	h.wsConnRepo.Add(sessionID, ws)
	defer h.wsConnRepo.Remove(sessionID)

	if err := h.signalingUsecase.HandleConnect(c.Request().Context(), sessionID); err != nil {
		slog.Error(
			"handle connect",
			slog.Any(constant.Error, err),
			slog.Any(constant.SessionID, sessionID),
		)
		return nil
	}
	defer func() {
		if err := h.signalingUsecase.HandleDisconnect(context.WithoutCancel(c.Request().Context()), sessionID); err != nil {
			slog.Error(
				"handle disconnect",
				slog.Any(constant.Error, err),
				slog.Any(constant.SessionID, sessionID),
			)
		}
	}()

	// Disconnect detection is the transport's job: missing pongs let the
	// read deadline expire, the read loop fails and cleanup runs.
	if err := ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return nil
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	pingCtx, stopPing := context.WithCancel(c.Request().Context())
	defer stopPing()

	go pingLoop(pingCtx, ws)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			h.logReadError(sessionID, err)
			return nil
		}

		msg := new(events.Message)
		if err = json.Unmarshal(raw, msg); err != nil {
			slog.Warn(
				"malformed envelope dropped",
				slog.Any(constant.Error, err),
				slog.Any(constant.SessionID, sessionID),
			)
			continue
		}

		h.dispatch(c.Request().Context(), sessionID, msg)
	}
}

// dispatch routes one inbound event. Malformed payloads and unknown types
// are dropped after logging; no error event ever goes back to the peer.
func (h *WebSocketHandler) dispatch(ctx context.Context, sessionID uuid.UUID, msg *events.Message) {
	metric.IncSignalingEvent(msg.Type)

	var err error

	switch msg.Type {
	case events.TypeJoinMeeting:
		var ev events.JoinEvent
		if err = json.Unmarshal(msg.Data, &ev); err != nil {
			break
		}
		err = h.signalingUsecase.HandleJoin(ctx, sessionID, ev)

	case events.TypeLeaveMeeting:
		err = h.signalingUsecase.HandleLeave(ctx, sessionID)

	case events.TypeOffer, events.TypeAnswer, events.TypeICECandidate:
		var ev events.SignalEvent
		if err = json.Unmarshal(msg.Data, &ev); err != nil {
			break
		}
		err = h.signalingUsecase.HandleSignal(ctx, sessionID, msg.Type, ev)

	case events.TypeAudioToggle:
		var ev events.MediaToggleEvent
		if err = json.Unmarshal(msg.Data, &ev); err != nil {
			break
		}
		err = h.signalingUsecase.HandleAudioToggle(ctx, sessionID, ev)

	case events.TypeVideoToggle:
		var ev events.MediaToggleEvent
		if err = json.Unmarshal(msg.Data, &ev); err != nil {
			break
		}
		err = h.signalingUsecase.HandleVideoToggle(ctx, sessionID, ev)

	case events.TypeScreenShareStarted:
		err = h.signalingUsecase.HandleScreenShare(ctx, sessionID, true)

	case events.TypeScreenShareStopped:
		err = h.signalingUsecase.HandleScreenShare(ctx, sessionID, false)

	case events.TypeChatMessage:
		var ev events.ChatMessageEvent
		if err = json.Unmarshal(msg.Data, &ev); err != nil {
			break
		}
		err = h.signalingUsecase.HandleChatMessage(ctx, sessionID, ev)

	case events.TypeReaction:
		var ev events.ReactionEvent
		if err = json.Unmarshal(msg.Data, &ev); err != nil {
			break
		}
		err = h.signalingUsecase.HandleReaction(ctx, sessionID, ev)

	case events.TypeRaiseHand:
		var ev events.RaiseHandEvent
		if err = json.Unmarshal(msg.Data, &ev); err != nil {
			break
		}
		err = h.signalingUsecase.HandleRaiseHand(ctx, sessionID, ev)

	default:
		slog.Debug(
			"unknown event type dropped",
			slog.String(constant.EventType, msg.Type),
			slog.Any(constant.SessionID, sessionID),
		)
		return
	}

	if err != nil {
		slog.Warn(
			"event dropped",
			slog.Any(constant.Error, err),
			slog.String(constant.EventType, msg.Type),
			slog.Any(constant.SessionID, sessionID),
		)
	}
}

// pingLoop keeps the transport's own liveness check running. WriteControl
// is safe to call concurrently with the fan-out writes.
func pingLoop(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *WebSocketHandler) logReadError(sessionID uuid.UUID, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("session disconnected", slog.Any(constant.SessionID, sessionID))
		default:
			slog.Warn(
				"websocket close error",
				slog.Any(constant.Error, err),
				slog.Any(constant.SessionID, sessionID),
			)
		}
		return
	}

	slog.Warn(
		"websocket read",
		slog.Any(constant.Error, err),
		slog.Any(constant.SessionID, sessionID),
	)
}
