package prismic

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cb := newCircuitBreaker(logger, 3, time.Minute)
	now := time.Date(2021, 3, 25, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	host := "repo.cdn.prismic.io"
	boom := errors.New("503")

	assert.NoError(t, cb.canAttempt(host))

	cb.recordFailure(host, boom)
	cb.recordFailure(host, boom)
	assert.NoError(t, cb.canAttempt(host), "still closed below threshold")

	cb.recordFailure(host, boom)
	assert.Error(t, cb.canAttempt(host))
	assert.NoError(t, cb.canAttempt("other.cdn.prismic.io"), "hosts are tracked separately")

	now = now.Add(2 * time.Minute)
	assert.NoError(t, cb.canAttempt(host), "half-open after the open period")
	assert.Equal(t, stateHalfOpen, cb.getState(host))

	cb.recordFailure(host, boom)
	assert.Error(t, cb.canAttempt(host), "failed trial reopens")

	now = now.Add(2 * time.Minute)
	assert.NoError(t, cb.canAttempt(host))
	cb.recordSuccess(host)
	assert.Equal(t, stateClosed, cb.getState(host))
	assert.Equal(t, 0, cb.failures[host])
}
