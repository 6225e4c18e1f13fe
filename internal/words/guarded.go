package words

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// GuardedOracle bounds every query to a timeout and coalesces identical
// queries that are in flight at the same time, so that many rooms asking
// about the same word cost one call to the wrapped Oracle.
type GuardedOracle struct {
	inner   Oracle
	timeout time.Duration
	group   singleflight.Group
	logger  zerolog.Logger
}

var _ Oracle = (*GuardedOracle)(nil)

// NewGuardedOracle wraps inner. A zero timeout only applies the caller's
// context deadline.
func NewGuardedOracle(inner Oracle, timeout time.Duration, logger zerolog.Logger) *GuardedOracle {
	return &GuardedOracle{
		inner:   inner,
		timeout: timeout,
		logger:  logger.With().Str("component", "oracle").Logger(),
	}
}

func (g *GuardedOracle) IsWord(ctx context.Context, word string) (bool, error) {
	return g.query(ctx, "word:"+word, func(ctx context.Context) (bool, error) {
		return g.inner.IsWord(ctx, word)
	})
}

func (g *GuardedOracle) DeservesBonus(ctx context.Context, word string) (bool, error) {
	return g.query(ctx, "bonus:"+word, func(ctx context.Context) (bool, error) {
		return g.inner.DeservesBonus(ctx, word)
	})
}

func (g *GuardedOracle) IsRhyme(ctx context.Context, a, b string) (bool, error) {
	return g.query(ctx, "rhyme:"+a+"|"+b, func(ctx context.Context) (bool, error) {
		return g.inner.IsRhyme(ctx, a, b)
	})
}

func (g *GuardedOracle) IsPartOfSpeech(ctx context.Context, word string, pos PartOfSpeech) (bool, error) {
	return g.query(ctx, "pos:"+pos.String()+":"+word, func(ctx context.Context) (bool, error) {
		return g.inner.IsPartOfSpeech(ctx, word, pos)
	})
}

func (g *GuardedOracle) query(ctx context.Context, key string, fn func(context.Context) (bool, error)) (bool, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	// The shared call must not die with whichever caller started it.
	ch := g.group.DoChan(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, g.timeout)
			defer cancel()
		}
		return fn(callCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return false, fmt.Errorf("oracle query %s: %w", key, res.Err)
		}
		if res.Shared {
			g.logger.Debug().Str("query", key).Msg("Shared in-flight oracle query")
		}
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, fmt.Errorf("oracle query %s: %w", key, ctx.Err())
	}
}
