package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type PollHandler struct {
	service  ports.PollService
	votes    ports.VoteService
	resolver ports.IdentityResolver
}

func NewPollHandler(service ports.PollService, votes ports.VoteService, resolver ports.IdentityResolver) *PollHandler {
	return &PollHandler{
		service:  service,
		votes:    votes,
		resolver: resolver,
	}
}

type choiceRequest struct {
	Choice string `json:"choice"`
	Code   string `json:"code"`
}

type createPollRequest struct {
	Reference       string          `json:"reference"`
	Question        string          `json:"question"`
	Description     string          `json:"description"`
	IsAnonymous     bool            `json:"is_anonymous"`
	IsMultiple      bool            `json:"is_multiple"`
	IsClosed        bool            `json:"is_closed"`
	AllowMultiVotes bool            `json:"allow_multi_votes"`
	StartVotes      *time.Time      `json:"start_votes"`
	EndVotes        *time.Time      `json:"end_votes"`
	Choices         []choiceRequest `json:"choices"`
}

type updatePollRequest struct {
	Question        *string    `json:"question"`
	Description     *string    `json:"description"`
	IsAnonymous     *bool      `json:"is_anonymous"`
	IsMultiple      *bool      `json:"is_multiple"`
	IsClosed        *bool      `json:"is_closed"`
	AllowMultiVotes *bool      `json:"allow_multi_votes"`
	StartVotes      *time.Time `json:"start_votes"`
	EndVotes        *time.Time `json:"end_votes"`
}

type pollResponse struct {
	*domain.Poll
	AlreadyVoted bool `json:"already_voted"`
}

// ListPolls godoc
// @Summary      Lists polls
// @Description  Newest voting window first, ten per page. `q` filters on the question.
// @Tags         polls
// @Produce      json
// @Param        page  query  int     false  "page number, from 1"
// @Param        q     query  string  false  "search text"
// @Success      200
// @Router       /api/polls [get]
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	polls, err := h.service.ListPolls(r.Context(), ports.ListPollsInput{
		Page:  page,
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}

	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreatePollInput{
		Reference:       req.Reference,
		Question:        req.Question,
		Description:     req.Description,
		IsAnonymous:     req.IsAnonymous,
		IsMultiple:      req.IsMultiple,
		IsClosed:        req.IsClosed,
		AllowMultiVotes: req.AllowMultiVotes,
		StartVotes:      req.StartVotes,
		EndVotes:        req.EndVotes,
	}
	for _, c := range req.Choices {
		input.Choices = append(input.Choices, ports.ChoiceInput{Text: c.Choice, Code: c.Code})
	}

	poll, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, poll)
}

func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	var req updatePollRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	poll, err := h.service.Update(r.Context(), chi.URLParam(r, "ref"), ports.UpdatePollInput{
		Question:        req.Question,
		Description:     req.Description,
		IsAnonymous:     req.IsAnonymous,
		IsMultiple:      req.IsMultiple,
		IsClosed:        req.IsClosed,
		AllowMultiVotes: req.AllowMultiVotes,
		StartVotes:      req.StartVotes,
		EndVotes:        req.EndVotes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	choice, err := h.service.AddChoice(r.Context(), chi.URLParam(r, "ref"), ports.ChoiceInput{
		Text: req.Choice,
		Code: req.Code,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, choice)
}

// GetPoll godoc
// @Summary      Gets a poll
// @Description  `ref` is the numeric id or the reference token. The response tells whether the caller already voted.
// @Tags         polls
// @Produce      json
// @Param        ref  path  string  true  "poll id or reference"
// @Success      200
// @Failure      404
// @Router       /api/polls/{ref} [get]
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := pollResponse{Poll: poll}
	identity, err := h.resolver.Resolve(r.Context(), identityContext(r))
	if err == nil {
		voted, err := h.votes.HasVoted(r.Context(), poll.ID, identity)
		if err != nil {
			slog.Warn("failed to check whether caller voted", "poll_id", poll.ID, "error", err)
		}
		resp.AlreadyVoted = voted
	}

	writeJSON(w, http.StatusOK, resp)
}
