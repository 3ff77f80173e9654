package surface

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ordo-continuum/dossier/core/controller"
	"github.com/ordo-continuum/dossier/core/document"
)

// =============================================================================
// Frames
// =============================================================================

// Frame is one inbound websocket message. Type selects the event; the
// remaining fields are read per type.
type Frame struct {
	Type       string         `json:"type"`
	DocumentID string         `json:"document_id,omitempty"`
	Section    string         `json:"section,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
	ListPath   string         `json:"list_path,omitempty"`
	Index      int            `json:"index,omitempty"`
	From       int            `json:"from,omitempty"`
	To         int            `json:"to,omitempty"`
	Item       map[string]any `json:"item,omitempty"`
}

// ViewFrame is the rendered view inside a response.
type ViewFrame struct {
	SurfaceID  string         `json:"surface_id"`
	DocumentID string         `json:"document_id"`
	Namespace  string         `json:"namespace"`
	Section    string         `json:"section"`
	DeleteMode bool           `json:"delete_mode"`
	Editing    string         `json:"editing,omitempty"`
	Document   map[string]any `json:"document"`
	Detail     any            `json:"detail,omitempty"`
}

// ResponseFrame is one outbound websocket message.
type ResponseFrame struct {
	OK      bool       `json:"ok"`
	Error   string     `json:"error,omitempty"`
	Warning string     `json:"warning,omitempty"`
	View    *ViewFrame `json:"view,omitempty"`
}

// =============================================================================
// Handler
// =============================================================================

// Handler serves the web surface: one websocket connection is one
// surface with its own session, identified by a minted surface id.
type Handler struct {
	controller *controller.Controller
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewHandler creates the websocket surface handler.
func NewHandler(ctrl *controller.Controller, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		controller: ctrl,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	surfaceID := "web-" + uuid.NewString()
	h.logger.Info("surface connected", "surface_id", surfaceID)

	defer func() {
		h.controller.CloseSurface(surfaceID)
		conn.Close()
		h.logger.Info("surface disconnected", "surface_id", surfaceID)
	}()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("surface read failed", "surface_id", surfaceID, "error", err)
			}
			return
		}

		response := h.dispatch(r.Context(), surfaceID, frame)
		if err := conn.WriteJSON(response); err != nil {
			h.logger.Warn("surface write failed", "surface_id", surfaceID, "error", err)
			return
		}
	}
}

// =============================================================================
// Dispatch
// =============================================================================

func (h *Handler) dispatch(ctx context.Context, surfaceID string, frame Frame) ResponseFrame {
	if frame.Type == "open" {
		if frame.DocumentID == "" {
			return errorFrame("open requires document_id")
		}
		return toResponse(h.controller.Open(ctx, surfaceID, frame.DocumentID))
	}

	ev, err := frameToEvent(frame)
	if err != nil {
		return errorFrame(err.Error())
	}
	return toResponse(h.controller.Handle(ctx, surfaceID, ev))
}

func frameToEvent(frame Frame) (controller.Event, error) {
	switch frame.Type {
	case "switch_section":
		return controller.SwitchSection{Section: frame.Section}, nil

	case "toggle_delete_mode":
		return controller.ToggleDeleteMode{}, nil

	case "open_editor":
		return controller.OpenEditor{Kind: frame.Kind}, nil

	case "submit_edit":
		fields, err := DecodeFields(frame.Fields)
		if err != nil {
			return nil, err
		}
		ev := controller.SubmitEdit{Fields: fields, Index: frame.Index}
		if frame.ListPath != "" {
			ev.ListPath = document.ParsePath(frame.ListPath)
		}
		return ev, nil

	case "add_item":
		item, err := DecodeValue(map[string]any(frame.Item))
		if err != nil {
			return nil, err
		}
		return controller.AddItem{
			ListPath: document.ParsePath(frame.ListPath),
			Item:     item,
		}, nil

	case "remove_item":
		return controller.RemoveItem{
			ListPath: document.ParsePath(frame.ListPath),
			Index:    frame.Index,
		}, nil

	case "reorder_item":
		return controller.ReorderItem{
			ListPath: document.ParsePath(frame.ListPath),
			From:     frame.From,
			To:       frame.To,
		}, nil

	case "inspect":
		return controller.Inspect{
			ListPath: document.ParsePath(frame.ListPath),
			Index:    frame.Index,
		}, nil

	default:
		return nil, fmt.Errorf("unknown frame type %q", frame.Type)
	}
}

func toResponse(outcome controller.Outcome) ResponseFrame {
	response := ResponseFrame{
		OK:      outcome.Err == nil,
		Warning: outcome.Warning,
	}
	if outcome.Err != nil {
		response.Error = outcome.Err.Error()
	}
	if outcome.View.SurfaceID != "" {
		view := ViewFrame{
			SurfaceID:  outcome.View.SurfaceID,
			DocumentID: outcome.View.DocumentID,
			Namespace:  string(outcome.View.Namespace),
			Section:    outcome.View.Section,
			DeleteMode: outcome.View.DeleteMode,
			Editing:    outcome.View.Editing,
			Document:   EncodeDocument(outcome.View.Document),
		}
		if outcome.View.Detail.Kind() != document.KindInvalid {
			view.Detail = EncodeValue(outcome.View.Detail)
		}
		response.View = &view
	}
	return response
}

func errorFrame(msg string) ResponseFrame {
	return ResponseFrame{OK: false, Error: msg}
}
