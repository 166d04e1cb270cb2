package replies

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/pkg/handlers"
	"github.com/JaimeStill/clerk/pkg/routes"
)

var ErrInvalidID = errors.New("invalid id")

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "replies"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/letters/{id}/replies",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Generate},
			{Method: "POST", Pattern: "/reset", Handler: h.Reset},
			{Method: "POST", Pattern: "/{replyId}/select", Handler: h.Select},
			{Method: "GET", Pattern: "/{replyId}/archive", Handler: h.Archive},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	letterID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	items, err := h.sys.List(r.Context(), letterID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, items)
}

// Generate accepts an empty body, which drafts in the analyzed style with
// derived guidance.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	letterID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var cmd GenerateCommand
	if r.ContentLength != 0 {
		if err := handlers.DecodeJSON(r, &cmd); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	reply, err := h.sys.Generate(r.Context(), letterID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, reply)
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	letterID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	replyID, ok := h.pathID(w, r, "replyId")
	if !ok {
		return
	}

	reply, err := h.sys.Select(r.Context(), letterID, replyID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	letterID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sys.Reset(r.Context(), letterID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	letterID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	replyID, ok := h.pathID(w, r, "replyId")
	if !ok {
		return
	}

	rc, err := h.sys.Archive(r.Context(), letterID, replyID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", archiveContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+replyID.String()+`.txt"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("archive stream failed", "reply_id", replyID, "error", err)
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
