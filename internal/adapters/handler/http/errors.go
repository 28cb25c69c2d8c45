package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrPollClosed, http.StatusForbidden},
	{domain.ErrPollNotOpen, http.StatusForbidden},
	{domain.ErrPollNotMultiple, http.StatusForbidden},
	{domain.ErrAlreadyVoted, http.StatusForbidden},
	{domain.ErrPollNotAnonymous, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrInvalidChoice, http.StatusBadRequest},
	{domain.ErrCommentTooLong, http.StatusBadRequest},
	{domain.ErrUnidentifiedVoter, http.StatusBadRequest},
	{domain.ErrInvalidPollID, http.StatusBadRequest},
	{domain.ErrInvalidPoll, http.StatusBadRequest},
	{domain.ErrInvalidWindow, http.StatusBadRequest},
	{domain.ErrPollNotFound, http.StatusNotFound},
	{domain.ErrVoteNotFound, http.StatusNotFound},
	{domain.ErrDuplicateReference, http.StatusConflict},
	{domain.ErrDuplicateChoiceCode, http.StatusConflict},
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the error's status. Unknown errors are logged and
// hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, domain.ErrInternal.Error(), status)
		return
	}
	http.Error(w, err.Error(), status)
}
