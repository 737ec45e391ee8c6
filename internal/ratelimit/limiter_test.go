package ratelimit_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/mocks"
	"github.com/feral-file/ff-minter/internal/ratelimit"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestNewHTTPClient_Disabled(t *testing.T) {
	inner := mocks.NewMockHTTPClient(gomock.NewController(t))

	client := ratelimit.NewHTTPClient("payment", ratelimit.Config{}, inner)
	assert.Same(t, inner, client)
}

func TestHTTPClient_Do_WaitsForToken(t *testing.T) {
	inner := mocks.NewMockHTTPClient(gomock.NewController(t))
	req := adapter.Request{Method: "GET", URL: "https://processor.example/events"}

	client := ratelimit.NewHTTPClient("payment", ratelimit.Config{
		RequestsPerSecond: 1,
		Burst:             1,
		MaxQueueTime:      50 * time.Millisecond,
	}, inner)

	inner.EXPECT().Do(gomock.Any(), req).Return([]byte(`{"events":[]}`), nil).Times(1)

	body, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[]}`, string(body))

	// the bucket is empty and refills after a second, longer than the queue bound
	_, err = client.Do(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit of payment")
}

func TestHTTPClient_Do_Refills(t *testing.T) {
	inner := mocks.NewMockHTTPClient(gomock.NewController(t))
	req := adapter.Request{Method: "DELETE", URL: "https://processor.example/events/e-1"}

	client := ratelimit.NewHTTPClient("payment", ratelimit.Config{
		RequestsPerSecond: 50,
		Burst:             1,
		MaxQueueTime:      time.Second,
	}, inner)

	inner.EXPECT().Do(gomock.Any(), req).Return(nil, nil).Times(3)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
