package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/guineaday/internal/input"
)

// ControlHandler exposes the live session.
type ControlHandler struct {
	ctrl Controller
}

// NewControlHandler creates a ControlHandler.
func NewControlHandler(c Controller) *ControlHandler {
	return &ControlHandler{ctrl: c}
}

// Register adds the control routes to mux.
func (h *ControlHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", h.only(http.MethodGet, h.state))
	mux.HandleFunc("/api/session/restart", h.only(http.MethodPost, h.restart))
	mux.HandleFunc("/api/session/mode", h.only(http.MethodPut, h.mode))
	mux.HandleFunc("/api/session/surface", h.only(http.MethodPut, h.surface))
	mux.HandleFunc("/api/pointer", h.only(http.MethodPost, h.pointer))
}

func (h *ControlHandler) only(method string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

// state handles GET /api/state.
func (h *ControlHandler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Engine().Snapshot())
}

type restartResponse struct {
	Session string `json:"session"`
}

// restart handles POST /api/session/restart.
func (h *ControlHandler) restart(w http.ResponseWriter, r *http.Request) {
	id := h.ctrl.Engine().Restart()
	writeJSON(w, http.StatusOK, restartResponse{Session: id})
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// mode handles PUT /api/session/mode.
func (h *ControlHandler) mode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	m, err := input.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Mode must be pointer or gesture")
		return
	}
	if err := h.ctrl.SetMode(m); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set mode")
		return
	}
	writeJSON(w, http.StatusOK, modeRequest{Mode: string(m)})
}

// SurfaceRequest describes the presentation surface. Omitted fields are
// left unchanged.
type SurfaceRequest struct {
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	OffsetX      *float64 `json:"offset_x,omitempty"`
	OffsetY      *float64 `json:"offset_y,omitempty"`
	ScreenWidth  *float64 `json:"screen_width,omitempty"`
	ScreenHeight *float64 `json:"screen_height,omitempty"`
	Visible      *bool    `json:"visible,omitempty"`
}

// ApplySurface applies the fields present in req.
func (h *ControlHandler) ApplySurface(req SurfaceRequest) error {
	eng := h.ctrl.Engine()
	if (req.Width == nil) != (req.Height == nil) {
		return errors.New("width and height go together")
	}
	if (req.OffsetX == nil) != (req.OffsetY == nil) {
		return errors.New("offset_x and offset_y go together")
	}
	if (req.ScreenWidth == nil) != (req.ScreenHeight == nil) {
		return errors.New("screen_width and screen_height go together")
	}

	if req.Width != nil {
		eng.Resize(*req.Width, *req.Height)
	}
	if req.OffsetX != nil {
		eng.SetOffset(*req.OffsetX, *req.OffsetY)
	}
	if req.ScreenWidth != nil {
		eng.SetScreen(*req.ScreenWidth, *req.ScreenHeight)
	}
	if req.Visible != nil {
		eng.SetActive(*req.Visible)
	}
	return nil
}

// surface handles PUT /api/session/surface.
func (h *ControlHandler) surface(w http.ResponseWriter, r *http.Request) {
	var req SurfaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.ApplySurface(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pointerResponse struct {
	Accepted bool `json:"accepted"`
}

// pointer handles POST /api/pointer. Events are ignored outside pointer mode.
func (h *ControlHandler) pointer(w http.ResponseWriter, r *http.Request) {
	var ev input.PointerEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !validKind(ev.Kind) {
		writeError(w, http.StatusBadRequest, "Unknown pointer event kind")
		return
	}
	writeJSON(w, http.StatusAccepted, pointerResponse{Accepted: h.ctrl.Engine().PushPointer(ev)})
}

func validKind(k input.EventKind) bool {
	switch k {
	case input.EventPress, input.EventMove, input.EventRelease, input.EventCancel:
		return true
	}
	return false
}
