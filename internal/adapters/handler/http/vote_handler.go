package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type VoteHandler struct {
	service  ports.VoteService
	resolver ports.IdentityResolver
}

func NewVoteHandler(service ports.VoteService, resolver ports.IdentityResolver) *VoteHandler {
	return &VoteHandler{
		service:  service,
		resolver: resolver,
	}
}

// choice takes a single id or code as well as a list of them.
type voteRequest struct {
	Choice  domain.ChoiceRefs `json:"choice"`
	Data    map[string]any    `json:"data"`
	Comment string            `json:"comment"`
}

// CastVote godoc
// @Summary      Votes on a poll
// @Description  Body is `{"choice": [id|code...], "data": {...}, "comment": "..."}`. Choices may be ids or codes.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        ref  path  string  true  "poll id or reference"
// @Success      201
// @Failure      400
// @Failure      401
// @Failure      403
// @Failure      404
// @Router       /api/polls/{ref}/votes [post]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity, err := h.resolver.Resolve(r.Context(), identityContext(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	votes, err := h.service.Cast(r.Context(), ports.CastVoteInput{
		PollRef:  chi.URLParam(r, "ref"),
		Identity: identity,
		Choices:  req.Choice,
		Data:     req.Data,
		Comment:  req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, votes)
}

// AmendVote godoc
// @Summary      Changes a vote
// @Description  Replaces the caller's choices on the poll the vote belongs to. Only signed-in voters on non-anonymous polls can do this.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "vote id"
// @Success      200
// @Failure      403
// @Failure      404
// @Router       /api/votes/{id} [put]
func (h *VoteHandler) AmendVote(w http.ResponseWriter, r *http.Request) {
	voteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || voteID <= 0 {
		http.Error(w, "invalid vote id", http.StatusBadRequest)
		return
	}

	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity, err := h.resolver.Resolve(r.Context(), identityContext(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	votes, err := h.service.Amend(r.Context(), ports.AmendVoteInput{
		VoteID:   voteID,
		Identity: identity,
		Choices:  req.Choice,
		Data:     req.Data,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, votes)
}
