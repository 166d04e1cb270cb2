package categories

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/clerk/pkg/handlers"
	"github.com/JaimeStill/clerk/pkg/routes"
)

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "categories"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/categories",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Active},
			{Method: "GET", Pattern: "/choices", Handler: h.Choices},
			{Method: "GET", Pattern: "/history", Handler: h.History},
			{Method: "PUT", Pattern: "", Handler: h.Replace},
			{Method: "POST", Pattern: "/reset", Handler: h.Reset},
		},
	}
}

func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	cats, err := h.sys.Active(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, cats)
}

func (h *Handler) Choices(w http.ResponseWriter, r *http.Request) {
	choices, err := h.sys.Choices(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, choices)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sets, err := h.sys.History(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, sets)
}

// Replace swaps the active set. The body must set confirm to true.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var cmd ReplaceCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err := Validate(cmd.Categories); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if !cmd.Confirm {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotConfirmed)
		return
	}

	cats, err := h.sys.Replace(r.Context(), cmd.Categories)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, cats)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var cmd ResetCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if !cmd.Confirm {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotConfirmed)
		return
	}

	cats, err := h.sys.ResetDefaults(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, cats)
}
