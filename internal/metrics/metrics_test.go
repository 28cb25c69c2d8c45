package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

func TestAdmissionMetrics(t *testing.T) {
	m := NewAdmissionMetrics("test")

	m.Accepted(1, false)
	m.Accepted(1, false)
	m.Accepted(1, true)
	m.Rejected(1, fmt.Errorf("%w: %q", domain.ErrInvalidChoice, "x"))
	m.Rejected(2, domain.ErrAlreadyVoted)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.accepted.WithLabelValues("1", "cast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accepted.WithLabelValues("1", "amend")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("1", "invalid_choice")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("2", "already_voted")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_votes_accepted_total{kind="cast",poll_id="1"} 2`)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "closed", Reason(domain.ErrPollClosed))
	assert.Equal(t, "not_open", Reason(domain.ErrPollNotOpen))
	assert.Equal(t, "error", Reason(fmt.Errorf("boom")))
}
