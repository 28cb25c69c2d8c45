package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type ResultHandler struct {
	polls ports.PollService
	stats ports.StatsAggregator
}

func NewResultHandler(polls ports.PollService, stats ports.StatsAggregator) *ResultHandler {
	return &ResultHandler{
		polls: polls,
		stats: stats,
	}
}

type resultResponse struct {
	ID       int64        `json:"id"`
	Question string       `json:"question"`
	Stats    domain.Stats `json:"stats"`
}

func (h *ResultHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	poll, err := h.polls.GetPoll(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.stats.Aggregate(r.Context(), poll.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{
		ID:       poll.ID,
		Question: poll.Question,
		Stats:    stats,
	})
}
