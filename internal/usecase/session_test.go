package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
	documentmock "github.com/riskibarqy/matchday-ingest/internal/mocks/domain/document"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionHandle_RecreateReplacesSessionUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	factory := documentmock.NewSessionFactory(t)
	first := documentmock.NewFetcher(t)
	second := documentmock.NewFetcher(t)
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	factory.On("NewSession", mock.Anything).Return(first, nil).Once()
	factory.On("NewSession", mock.Anything).Return(second, nil).Once()
	first.On("FetchEventList", mock.Anything, date).Return(document.Transport(errors.New("timeout"))).Once()
	first.On("Close").Return(nil).Once()
	second.On("FetchEventList", mock.Anything, date).Return(document.OK(document.New([]byte(`{"events":[]}`)))).Once()
	second.On("Close").Return(nil).Once()

	handle, err := OpenSession(ctx, factory, 3*time.Second, logging.NewNop())
	require.NoError(t, err)

	var slept []time.Duration
	handle.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	require.False(t, handle.FetchEventList(ctx, date).Succeeded())
	require.NoError(t, handle.Recreate(ctx))
	require.True(t, handle.FetchEventList(ctx, date).Succeeded())
	require.NoError(t, handle.Close())

	require.Equal(t, 1, handle.Recreations())
	require.Equal(t, []time.Duration{3 * time.Second}, slept)
}

func TestSessionHandle_FailedRecreateLeavesNoSessionUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	factory := documentmock.NewSessionFactory(t)
	first := documentmock.NewFetcher(t)

	factory.On("NewSession", mock.Anything).Return(first, nil).Once()
	factory.On("NewSession", mock.Anything).Return(nil, errors.New("dial tcp: connection refused")).Once()
	first.On("Close").Return(nil).Once()

	handle, err := OpenSession(ctx, factory, 0, logging.NewNop())
	require.NoError(t, err)

	require.Error(t, handle.Recreate(ctx))
	result := handle.FetchMatchDocument(ctx, 1, document.KindGraphics)
	require.Equal(t, document.OutcomeTransport, result.Outcome)
	require.True(t, crerr.Is(result.Err, document.ErrTransport))
	require.NoError(t, handle.Close())
}

func TestOpenSessionWithoutFactory(t *testing.T) {
	t.Parallel()

	_, err := OpenSession(context.Background(), nil, 0, nil)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
