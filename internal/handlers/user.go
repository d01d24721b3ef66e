package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/user-api/internal/metrics"
	"github.com/crucial707/user-api/internal/models"
	"github.com/crucial707/user-api/internal/repo"
)

// ErrMessageUserNotFound is the 404 body message for unknown user ids.
const ErrMessageUserNotFound = "User not found"

// UserStore is the storage the handler needs; *repo.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int64, username string) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Store UserStore
	Log   *slog.Logger
}

func NewUserHandler(store UserStore, log *slog.Logger) *UserHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UserHandler{Store: store, Log: log}
}

// Routes mounts the user endpoints on r. Non-numeric ids do not match and fall through to 404.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
	r.Get("/{id:[0-9]+}", h.GetUser)
	r.Patch("/{id:[0-9]+}", h.UpdateUser)
	r.Delete("/{id:[0-9]+}", h.DeleteUser)
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.List(r.Context())
	recordOp("list", err)
	if err != nil {
		h.internalError(w, r, "list users", err)
		return
	}

	JSON(w, http.StatusOK, newUserListResponse(users))
}

// ==========================
// Create User
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decodeUsername(w, r)
	if !ok {
		return
	}

	user, err := h.Store.Create(r.Context(), username)
	recordOp("create", err)
	if err != nil {
		h.storeError(w, r, "create user", err)
		return
	}

	h.Log.Debug("user created", "user_id", user.ID)
	JSON(w, http.StatusCreated, newUserResponse(user))
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	user, err := h.Store.GetByID(r.Context(), id)
	recordOp("get", err)
	if err != nil {
		h.storeError(w, r, "get user", err)
		return
	}

	JSON(w, http.StatusOK, newUserResponse(user))
}

// ==========================
// Update User
// ==========================
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	username, ok := h.decodeUsername(w, r)
	if !ok {
		return
	}

	user, err := h.Store.Update(r.Context(), id, username)
	recordOp("update", err)
	if err != nil {
		h.storeError(w, r, "update user", err)
		return
	}

	h.Log.Debug("user updated", "user_id", user.ID)
	JSON(w, http.StatusOK, newUserResponse(user))
}

// ==========================
// Delete User
// ==========================
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	err := h.Store.Delete(r.Context(), id)
	recordOp("delete", err)
	if err != nil {
		h.storeError(w, r, "delete user", err)
		return
	}

	h.Log.Debug("user deleted", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// userID parses the {id} URL parameter. Ids that do not fit an int64 cannot exist, so they are reported as not found.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		JSONError(w, ErrMessageUserNotFound, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// decodeUsername reads a {"username": string} body and writes a 4xx response when it is unusable.
func (h *UserHandler) decodeUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	var input usernameRequest
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&input)
	if err == nil {
		err = endOfBody(dec)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
		case errors.As(err, &typeErr) && typeErr.Field == "username":
			JSONValidationError(w, "validation failed", map[string]string{"username": "must be a string"}, http.StatusBadRequest)
		default:
			JSONError(w, "invalid JSON", http.StatusBadRequest)
		}
		return "", false
	}

	if input.Username == nil || *input.Username == "" {
		JSONValidationError(w, "validation failed", map[string]string{"username": "required"}, http.StatusBadRequest)
		return "", false
	}
	return *input.Username, true
}

var errTrailingData = errors.New("unexpected data after JSON object")

// endOfBody reports an error when anything but whitespace follows the decoded value.
func endOfBody(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

// storeError maps storage errors onto HTTP responses.
func (h *UserHandler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, repo.ErrUserNotFound):
		JSONError(w, ErrMessageUserNotFound, http.StatusNotFound)
	case errors.Is(err, repo.ErrUsernameTaken):
		JSONError(w, repo.ErrUsernameTaken.Error(), http.StatusConflict)
	default:
		h.internalError(w, r, op, err)
	}
}

func recordOp(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrUserNotFound):
		outcome = "not_found"
	case errors.Is(err, repo.ErrUsernameTaken):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	metrics.RecordUserOp(op, outcome)
}

func (h *UserHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.Log.Error("handler error",
		"op", op,
		"request_id", chimw.GetReqID(r.Context()),
		"err", err)
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}
