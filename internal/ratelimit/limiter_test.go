package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/mocks"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/ratelimit"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testLimiterMocks contains all the mocks needed for testing the limiter
type testLimiterMocks struct {
	ctrl             *gomock.Controller
	redisRateLimiter *mocks.MockRedisRateLimiter
	clock            *mocks.MockClock
}

func setupTestLimiter(t *testing.T) *testLimiterMocks {
	ctrl := gomock.NewController(t)

	return &testLimiterMocks{
		ctrl:             ctrl,
		redisRateLimiter: mocks.NewMockRedisRateLimiter(ctrl),
		clock:            mocks.NewMockClock(ctrl),
	}
}

func TestNewLimiter_InvalidRate(t *testing.T) {
	tm := setupTestLimiter(t)
	defer tm.ctrl.Finish()

	_, err := ratelimit.NewLimiter(ratelimit.Config{PerMinute: 0}, tm.redisRateLimiter, tm.clock)
	assert.Error(t, err)
}

func TestAllow_Distributed(t *testing.T) {
	tests := []struct {
		name   string
		result *redis_rate.Result
		want   ratelimit.Decision
	}{
		{
			name:   "allowed",
			result: &redis_rate.Result{Allowed: 1, Remaining: 4, RetryAfter: -1},
			want:   ratelimit.Decision{Allowed: true, Remaining: 4},
		},
		{
			name:   "limited",
			result: &redis_rate.Result{Allowed: 0, Remaining: 0, RetryAfter: 12 * time.Second},
			want:   ratelimit.Decision{Allowed: false, RetryAfter: 12 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestLimiter(t)
			defer tm.ctrl.Finish()

			l, err := ratelimit.NewLimiter(ratelimit.Config{PerMinute: 5}, tm.redisRateLimiter, tm.clock)
			require.NoError(t, err)

			tm.redisRateLimiter.EXPECT().
				Allow(gomock.Any(), "sct:ratelimit:10.0.0.1", redis_rate.PerMinute(5)).
				Return(tt.result, nil)

			got, err := l.Allow(context.Background(), "10.0.0.1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllow_FallsBackToLocalOnRedisError(t *testing.T) {
	tm := setupTestLimiter(t)
	defer tm.ctrl.Finish()

	now := time.Unix(1_700_000_000, 0)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(3)

	l, err := ratelimit.NewLimiter(ratelimit.Config{PerMinute: 2, KeyPrefix: "test:"}, tm.redisRateLimiter, tm.clock)
	require.NoError(t, err)

	first, err := l.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second, err := l.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.True(t, second.Allowed)

	third, err := l.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.InDelta(t, float64(30*time.Second), float64(third.RetryAfter), float64(time.Millisecond))
}

func TestAllow_LocalOnly(t *testing.T) {
	tm := setupTestLimiter(t)
	defer tm.ctrl.Finish()

	now := time.Unix(1_700_000_000, 0)
	gomock.InOrder(
		tm.clock.EXPECT().Now().Return(now),
		tm.clock.EXPECT().Now().Return(now),
		tm.clock.EXPECT().Now().Return(now.Add(time.Minute)),
		tm.clock.EXPECT().Now().Return(now.Add(time.Minute)),
	)

	l, err := ratelimit.NewLimiter(ratelimit.Config{PerMinute: 1}, nil, tm.clock)
	require.NoError(t, err)

	d, err := l.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	// the bucket refills after a minute
	d, err = l.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// keys are independent
	d, err = l.Allow(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAllow_ContextCanceled(t *testing.T) {
	tm := setupTestLimiter(t)
	defer tm.ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tm.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, context.Canceled)

	l, err := ratelimit.NewLimiter(ratelimit.Config{PerMinute: 1}, tm.redisRateLimiter, tm.clock)
	require.NoError(t, err)

	_, err = l.Allow(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}
