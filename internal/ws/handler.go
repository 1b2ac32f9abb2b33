package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/lk16/reversi/internal/game"
)

const (
	analysisTimeout = 30 * time.Second
)

type Handler struct {
	manager *game.Manager
	ws      *websocket.Conn

	// send writes a message. Subscriptions call it from other goroutines.
	send    func(*Outgoing) error
	writeMu sync.Mutex

	subscriptions map[string]func()
}

// NewHandler creates a new Handler.
func NewHandler(ws *websocket.Conn, manager *game.Manager) *Handler {
	h := &Handler{
		manager:       manager,
		ws:            ws,
		subscriptions: make(map[string]func()),
	}
	h.send = h.writeMessage
	return h
}

func (h *Handler) readMessage() (*Incoming, error) {
	var req Incoming

	msgType, msg, err := h.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("ws read error: %w", err)
	}

	slog.Debug("read ws message", "msgType", msgType, "msg", msg)

	if msgType != websocket.TextMessage {
		return nil, fmt.Errorf("unexpected message type: %d", msgType)
	}

	if err = json.Unmarshal(msg, &req); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return &req, nil
}

func (h *Handler) writeMessage(outgoing *Outgoing) error {
	msg, err := json.Marshal(outgoing)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	slog.Debug("write ws message", "msg", string(msg))

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if err = h.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	return nil
}

// handleMessage returns an error for malformed messages only. Failing game actions are
// reported to the client in Outgoing.Error.
func (h *Handler) handleMessage(req *Incoming) (*Outgoing, error) {
	if req.Event == "" {
		return nil, errors.New("event field is either empty or missing")
	}

	var (
		data any
		err  error
	)

	switch req.Event {
	case "subscribe":
		data, err = h.handleSubscribe(req)
	case "unsubscribe":
		data, err = h.handleUnsubscribe(req)
	case "state":
		data, err = h.handleGameAction(req, nil)
	case "move":
		data, err = h.handleMove(req)
	case "ai_move":
		data, err = h.handleGameAction(req, (*game.Controller).PlayAIMove)
	case "undo":
		data, err = h.handleGameAction(req, (*game.Controller).Undo)
	case "redo":
		data, err = h.handleGameAction(req, (*game.Controller).Redo)
	case "analyze":
		data, err = h.handleAnalyze(req)
	default:
		return nil, fmt.Errorf("unknown event: %s", req.Event)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return nil, fmt.Errorf("ws %s request unmarshal error: %w", req.Event, err)
	}

	outgoing := &Outgoing{ID: req.ID, Event: req.Event, Data: data}
	if err != nil {
		outgoing.Data = nil
		outgoing.Error = err.Error()
	}

	return outgoing, nil
}

// Handle handles the websocket connection.
func (h *Handler) Handle() error {
	defer h.Close()

	for {
		req, err := h.readMessage()
		if err != nil {
			return fmt.Errorf("ws read error: %w", err)
		}

		respData, err := h.handleMessage(req)
		if err != nil {
			return fmt.Errorf("ws handle error: %w", err)
		}

		if err = h.send(respData); err != nil {
			return fmt.Errorf("ws write error: %w", err)
		}
	}
}

// Close removes all subscriptions.
func (h *Handler) Close() {
	for gameID, unsubscribe := range h.subscriptions {
		unsubscribe()
		delete(h.subscriptions, gameID)
	}
}

func (h *Handler) controller(data json.RawMessage) (*game.Controller, error) {
	var reqData GameRequest
	if err := json.Unmarshal(data, &reqData); err != nil {
		return nil, err
	}

	return h.manager.Get(reqData.GameID)
}

func (h *Handler) handleSubscribe(req *Incoming) (any, error) {
	controller, err := h.controller(req.Data)
	if err != nil {
		return nil, err
	}

	gameID := controller.ID().String()
	if _, ok := h.subscriptions[gameID]; !ok {
		h.subscriptions[gameID] = controller.Subscribe(func(state game.State) {
			if err := h.send(&Outgoing{Event: "state", Data: state}); err != nil {
				slog.Debug("failed to push game state", "game", gameID, "error", err)
			}
		})
	}

	return controller.State(), nil
}

func (h *Handler) handleUnsubscribe(req *Incoming) (any, error) {
	var reqData GameRequest
	if err := json.Unmarshal(req.Data, &reqData); err != nil {
		return nil, err
	}

	unsubscribe, ok := h.subscriptions[reqData.GameID]
	if !ok {
		return nil, game.ErrGameNotFound
	}

	unsubscribe()
	delete(h.subscriptions, reqData.GameID)
	return nil, nil
}

func (h *Handler) handleGameAction(req *Incoming, action func(*game.Controller) error) (any, error) {
	controller, err := h.controller(req.Data)
	if err != nil {
		return nil, err
	}

	if action != nil {
		if err = action(controller); err != nil {
			return nil, err
		}
	}

	return controller.State(), nil
}

func (h *Handler) handleMove(req *Incoming) (any, error) {
	var reqData MoveRequest
	if err := json.Unmarshal(req.Data, &reqData); err != nil {
		return nil, err
	}

	controller, err := h.manager.Get(reqData.GameID)
	if err != nil {
		return nil, err
	}

	if err = controller.PlayMove(reqData.Row, reqData.Col); err != nil {
		return nil, err
	}

	return controller.State(), nil
}

func (h *Handler) handleAnalyze(req *Incoming) (any, error) {
	var reqData AnalyzeRequest
	if err := json.Unmarshal(req.Data, &reqData); err != nil {
		return nil, err
	}

	controller, err := h.manager.Get(reqData.GameID)
	if err != nil {
		return nil, err
	}

	level := reqData.Level
	if level == 0 {
		level = controller.Settings().Level
	}

	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	return controller.Analyze(ctx, level)
}
