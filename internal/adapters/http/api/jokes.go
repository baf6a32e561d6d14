package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	service "github.com/okian/jokerank/internal/app"
	"github.com/okian/jokerank/internal/domain/model"
	"github.com/okian/jokerank/pkg/logger"
)

const maxVoteBody = 1 << 10

// JokesHandler serves the board: listing, refreshing and voting.
type JokesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewJokesHandler creates a new jokes handler.
func NewJokesHandler(deps Dependencies, l logger.Logger) *JokesHandler {
	return &JokesHandler{deps: deps, logger: l}
}

// HandleList handles GET /jokes requests.
func (h *JokesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	writeJSON(w, http.StatusOK, boardResponse{Status: h.deps.Status(ctx), Jokes: h.deps.Jokes(ctx)})
}

// HandleRefresh handles POST /jokes/refresh. It blocks until the acquisition
// finishes. On failure the board is empty and no partial list is returned.
func (h *JokesHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	if err := h.deps.Refresh(ctx); err != nil {
		switch {
		case errors.Is(err, service.ErrSuperseded):
			writeError(w, http.StatusConflict, "refresh_superseded", WrapKind(op, ErrSuperseded, err))
		case errors.Is(err, service.ErrNoFetcher):
			h.logger.Error(ctx, "refresh misconfigured", logger.String("request_id", RequestIDFromContext(ctx)), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
		default:
			h.logger.Warn(ctx, "refresh failed", logger.String("request_id", RequestIDFromContext(ctx)), logger.Error(err))
			writeError(w, http.StatusBadGateway, "acquisition_failed", WrapKind(op, ErrAcquisition, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, boardResponse{Status: h.deps.Status(ctx), Jokes: h.deps.Jokes(ctx)})
}

// HandleVote handles POST /jokes/{id}/vote with body {"delta":1|-1} and the
// shorthands POST /jokes/{id}/upvote and POST /jokes/{id}/downvote.
func (h *JokesHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.vote"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	// Extract {id}/{action} after /jokes/
	id, action, ok := strings.Cut(strings.TrimPrefix(r.URL.Path, "/jokes/"), "/")
	if !ok || id == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}

	var delta model.Delta
	switch action {
	case "upvote":
		delta = model.Up
	case "downvote":
		delta = model.Down
	case "vote":
		d, err := decodeDelta(r.Body)
		if err != nil {
			code := "bad_request"
			if errors.Is(err, ErrInvalidDelta) {
				code = "invalid_delta"
			}
			writeError(w, http.StatusBadRequest, code, Wrap(op, err))
			return
		}
		delta = d
	default:
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	jokes, err := h.deps.Vote(ctx, id, delta)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDelta) {
			writeError(w, http.StatusBadRequest, "invalid_delta", WrapKind(op, ErrInvalidDelta, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, boardResponse{Status: h.deps.Status(ctx), Jokes: jokes})
}

func decodeDelta(body io.Reader) (model.Delta, error) {
	var req voteRequest
	if err := json.NewDecoder(io.LimitReader(body, maxVoteBody)).Decode(&req); err != nil {
		return 0, errors.Join(ErrBadRequest, err)
	}
	if req.Delta == nil {
		return 0, errors.Join(ErrBadRequest, errors.New("missing delta"))
	}
	d := model.Delta(*req.Delta)
	if !d.Valid() {
		return 0, ErrInvalidDelta
	}
	return d, nil
}
