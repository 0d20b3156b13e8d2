package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// UserService is the credential store used by the auth routes.
type UserService interface {
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// TodoService is the per-user todo store.
type TodoService interface {
	Create(ctx context.Context, userID, title, description string) (*models.Todo, error)
	Get(ctx context.Context, userID, id string) (*models.Todo, error)
	Update(ctx context.Context, userID, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, q services.ListQuery) (*services.TodoPage, error)
}

type ExportService interface {
	Export(ctx context.Context, userID string) (*services.ExportResult, error)
}

// Handler serves the JSON API.
type Handler struct {
	auth          *auth.Authenticator
	users         UserService
	todos         TodoService
	export        ExportService
	log           logging.Logger
	secureCookies bool
}

// Deps groups what NewHandler needs. Export may be nil, the export route
// then answers 503.
type Deps struct {
	Auth          *auth.Authenticator
	Users         UserService
	Todos         TodoService
	Export        ExportService
	Logger        logging.Logger
	SecureCookies bool
}

func NewHandler(d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{
		auth:          d.Auth,
		users:         d.Users,
		todos:         d.Todos,
		export:        d.Export,
		log:           log.With("module", "http"),
		secureCookies: d.SecureCookies,
	}
}

// internalError logs err and answers with the generic 500 body.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeMessage(w, http.StatusInternalServerError, msgServerError)
}

// userID is only called behind Protect; a missing id is a wiring bug.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		h.internalError(w, r, errors.New("no user id in request context"))
	}
	return id, ok
}

// Welcome answers GET /.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Welcome to the taskkeeper API")
}

// Health answers GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Server is running")
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, msgRouteNotFound)
}
