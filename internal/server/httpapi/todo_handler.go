package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

const msgTodoNotFound = "Todo not found"

// todoError maps a todo service error to a response.
func (h *Handler) todoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case writeValidation(w, err):
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, msgTodoNotFound)
	default:
		h.internalError(w, r, err)
	}
}

// CreateTodo handles POST /api/todos.
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	todo, err := h.todos.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		h.todoError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, todoResponse{
		Success: true,
		Message: "Todo created successfully",
		Todo:    toTodoDTO(todo),
	})
}

// ListTodos handles GET /api/todos?page=&limit=&search=. Unparseable paging
// values fall back to the defaults.
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.todos.List(r.Context(), userID, services.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
	})
	if err != nil {
		h.todoError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoListResponse(res))
}

// GetTodo handles GET /api/todos/{id}.
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	todo, err := h.todos.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.todoError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, todoResponse{Success: true, Todo: toTodoDTO(todo)})
}

// UpdateTodo handles PUT /api/todos/{id}. Only the fields present in the
// body are changed.
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req updateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	todo, err := h.todos.Update(r.Context(), userID, chi.URLParam(r, "id"), models.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.todoError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, todoResponse{
		Success: true,
		Message: "Todo updated successfully",
		Todo:    toTodoDTO(todo),
	})
}

// DeleteTodo handles DELETE /api/todos/{id}.
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.todos.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.todoError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Todo deleted successfully")
}

// ExportTodos handles GET /api/todos/export.
func (h *Handler) ExportTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if h.export == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Export is not configured")
		return
	}

	res, err := h.export.Export(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorUnavailable) {
			writeMessage(w, http.StatusServiceUnavailable, "Export is not configured")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{
		Success:   true,
		URL:       res.URL,
		Key:       res.Key,
		ExpiresAt: res.ExpiresAt,
	})
}
