package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berckan/domaintracker/internal/models"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFirstAvailableVerdictNotifies(t *testing.T) {
	entry := models.NewDomainEntry()

	updated, notify := Apply(entry, models.VerdictAvailable, t0)

	assert.True(t, notify)
	assert.Equal(t, models.StatusAvailable, updated.Status)
	assert.True(t, updated.NotificationSent)
	require.NotNil(t, updated.FirstAvailable)
	assert.Equal(t, t0, *updated.FirstAvailable)
	require.NotNil(t, updated.LastChecked)
	assert.Equal(t, t0, *updated.LastChecked)
	require.NotNil(t, updated.LastStatusChange)
	assert.Equal(t, t0, *updated.LastStatusChange)
}

func TestRepeatedAvailableDoesNotRenotify(t *testing.T) {
	entry := models.NewDomainEntry()
	entry, _ = Apply(entry, models.VerdictAvailable, t0)

	t1 := t0.Add(time.Minute)
	updated, notify := Apply(entry, models.VerdictAvailable, t1)

	assert.False(t, notify)
	assert.True(t, updated.NotificationSent)
	assert.Equal(t, t1, *updated.LastChecked)
	// Only the check timestamp moves on a re-check.
	assert.Equal(t, t0, *updated.LastStatusChange)
	assert.Equal(t, t0, *updated.FirstAvailable)
}

func TestLosingAvailabilityClearsGateSilently(t *testing.T) {
	entry := models.NewDomainEntry()
	entry, _ = Apply(entry, models.VerdictAvailable, t0)

	t1 := t0.Add(time.Minute)
	updated, notify := Apply(entry, models.VerdictUnavailable, t1)

	assert.False(t, notify)
	assert.Equal(t, models.StatusUnavailable, updated.Status)
	assert.False(t, updated.NotificationSent)
	assert.Equal(t, t1, *updated.LastStatusChange)
}

func TestNewStreakNotifiesAgain(t *testing.T) {
	entry := models.NewDomainEntry()
	entry, _ = Apply(entry, models.VerdictAvailable, t0)
	entry, _ = Apply(entry, models.VerdictUnavailable, t0.Add(time.Minute))

	t2 := t0.Add(2 * time.Minute)
	updated, notify := Apply(entry, models.VerdictAvailable, t2)

	assert.True(t, notify)
	require.NotNil(t, updated.FirstAvailable)
	assert.Equal(t, t2, *updated.FirstAvailable, "new streak restarts first-available")
}

func TestUnknownToUnavailableNeverNotifies(t *testing.T) {
	entry := models.NewDomainEntry()

	updated, notify := Apply(entry, models.VerdictUnavailable, t0)

	assert.False(t, notify)
	assert.Equal(t, models.StatusUnavailable, updated.Status)
	assert.Nil(t, updated.FirstAvailable)
	assert.False(t, updated.NotificationSent)
}

func TestRetryAfterFailedDelivery(t *testing.T) {
	entry := models.NewDomainEntry()
	entry, notify := Apply(entry, models.VerdictAvailable, t0)
	require.True(t, notify)

	// The caller failed to deliver and cleared the gate; the next check
	// of an already-available domain must offer the notification again.
	entry.NotificationSent = false

	_, notify = Apply(entry, models.VerdictAvailable, t0.Add(time.Minute))
	assert.True(t, notify)
}

// TestNotifiesOncePerStreak feeds random verdict sequences through Apply and
// checks that the number of notifications equals the number of maximal
// contiguous runs of available verdicts, each firing at the run's first element.
func TestNotifiesOncePerStreak(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for seq := 0; seq < 200; seq++ {
		entry := models.NewDomainEntry()
		now := t0
		notified := 0
		streaks := 0
		prevAvailable := false

		for i := 0; i < 50; i++ {
			verdict := models.VerdictUnavailable
			if rng.Intn(2) == 0 {
				verdict = models.VerdictAvailable
			}

			var notify bool
			entry, notify = Apply(entry, verdict, now)

			available := verdict == models.VerdictAvailable
			if available && !prevAvailable {
				streaks++
				assert.True(t, notify, "sequence %d step %d: streak start must notify", seq, i)
			} else {
				assert.False(t, notify, "sequence %d step %d: non-start must not notify", seq, i)
			}
			if notify {
				notified++
			}

			// A set gate always implies the domain is believed available.
			if entry.NotificationSent {
				assert.Equal(t, models.StatusAvailable, entry.Status)
			}

			prevAvailable = available
			now = now.Add(time.Minute)
		}

		assert.Equal(t, streaks, notified, "sequence %d: one notification per streak", seq)
	}
}

func TestSameVerdictTwiceIsIdempotent(t *testing.T) {
	for _, verdict := range []models.Verdict{models.VerdictAvailable, models.VerdictUnavailable} {
		entry := models.NewDomainEntry()
		entry, _ = Apply(entry, verdict, t0)
		firstChange := entry.LastStatusChange

		var notify bool
		entry, notify = Apply(entry, verdict, t0.Add(time.Minute))

		assert.False(t, notify, "verdict %s repeated must not notify", verdict)
		assert.Equal(t, firstChange, entry.LastStatusChange, "verdict %s repeated must not move last change", verdict)
	}
}
