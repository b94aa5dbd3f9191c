package refreshtoken

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndRedeem(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())
	subject := uuid.New()

	t.Run("RedeemRotatesToken", func(t *testing.T) {
		first, err := svc.Issue(ctx, subject)
		require.NoError(t, err)
		assert.Equal(t, subject, first.Subject)
		assert.NotEmpty(t, first.Raw)

		second, err := svc.Redeem(ctx, first.Raw)
		require.NoError(t, err)
		assert.Equal(t, subject, second.Subject)
		assert.NotEqual(t, first.ID, second.ID)
		assert.NotEqual(t, first.Raw, second.Raw)
	})

	t.Run("MalformedToken", func(t *testing.T) {
		_, err := svc.Redeem(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrTokenNotFound)

		_, err = svc.Redeem(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		_, err := svc.Redeem(ctx, uuid.New().String()+".some-secret")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		tok, err := svc.Issue(ctx, subject)
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, tok.ID.String()+".forged-secret")
		assert.ErrorIs(t, err, ErrInvalidSecret)

		// The failed attempt must not consume the token.
		_, err = svc.Redeem(ctx, tok.Raw)
		assert.NoError(t, err)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		shortSvc := NewService(NewInMemoryRepository(), WithExpiry(time.Millisecond))
		tok, err := shortSvc.Issue(ctx, subject)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		_, err = shortSvc.Redeem(ctx, tok.Raw)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestReuseDetection(t *testing.T) {
	ctx := context.Background()
	subject := uuid.New()

	t.Run("ReplayRevokesWholeChain", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository())

		a, err := svc.Issue(ctx, subject)
		require.NoError(t, err)
		b, err := svc.Redeem(ctx, a.Raw)
		require.NoError(t, err)

		// Replaying the consumed token trips the alarm.
		stolen, err := svc.Redeem(ctx, a.Raw)
		assert.ErrorIs(t, err, ErrReuseDetected)
		assert.Equal(t, subject, stolen.Subject)

		// The active leaf went down with the chain.
		_, err = svc.Redeem(ctx, b.Raw)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("ReplayDeepInChain", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository())

		a, err := svc.Issue(ctx, subject)
		require.NoError(t, err)
		b, err := svc.Redeem(ctx, a.Raw)
		require.NoError(t, err)
		c, err := svc.Redeem(ctx, b.Raw)
		require.NoError(t, err)
		d, err := svc.Redeem(ctx, c.Raw)
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, b.Raw)
		assert.ErrorIs(t, err, ErrReuseDetected)

		_, err = svc.Redeem(ctx, d.Raw)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("OtherChainsSurvive", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository())

		a, err := svc.Issue(ctx, subject)
		require.NoError(t, err)
		other, err := svc.Issue(ctx, subject)
		require.NoError(t, err)

		b, err := svc.Redeem(ctx, a.Raw)
		require.NoError(t, err)
		_, err = svc.Redeem(ctx, a.Raw)
		require.ErrorIs(t, err, ErrReuseDetected)
		_, err = svc.Redeem(ctx, b.Raw)
		require.ErrorIs(t, err, ErrTokenNotFound)

		// An independent session of the same subject is untouched.
		_, err = svc.Redeem(ctx, other.Raw)
		assert.NoError(t, err)
	})
}

func TestConcurrentRedeem(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())
	subject := uuid.New()

	tok, err := svc.Issue(ctx, subject)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Redeem(ctx, tok.Raw)
		}(i)
	}
	wg.Wait()

	var wins, reuses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			// Losers see either the reuse signal or a chain already gone.
			reuses++
			assert.True(t, err == ErrReuseDetected || err == ErrTokenNotFound,
				"unexpected error: %v", err)
		}
	}
	assert.LessOrEqual(t, wins, 1, "at most one redemption may succeed")
	assert.Equal(t, workers-wins, reuses)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	subject := uuid.New()

	t.Run("RevokeChain", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository())
		a, err := svc.Issue(ctx, subject)
		require.NoError(t, err)
		b, err := svc.Redeem(ctx, a.Raw)
		require.NoError(t, err)

		require.NoError(t, svc.RevokeChain(ctx, b.Raw))

		_, err = svc.Redeem(ctx, b.Raw)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("RevokeChainWrongSecret", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository())
		tok, err := svc.Issue(ctx, subject)
		require.NoError(t, err)

		err = svc.RevokeChain(ctx, tok.ID.String()+".forged-secret")
		assert.ErrorIs(t, err, ErrInvalidSecret)

		_, err = svc.Redeem(ctx, tok.Raw)
		assert.NoError(t, err)
	})

	t.Run("RevokeSubject", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository())
		first, err := svc.Issue(ctx, subject)
		require.NoError(t, err)
		second, err := svc.Issue(ctx, subject)
		require.NoError(t, err)
		foreign, err := svc.Issue(ctx, uuid.New())
		require.NoError(t, err)

		require.NoError(t, svc.RevokeSubject(ctx, subject))

		_, err = svc.Redeem(ctx, first.Raw)
		assert.ErrorIs(t, err, ErrTokenNotFound)
		_, err = svc.Redeem(ctx, second.Raw)
		assert.ErrorIs(t, err, ErrTokenNotFound)

		_, err = svc.Redeem(ctx, foreign.Raw)
		assert.NoError(t, err)
	})
}
