package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthChecker_AllHealthy(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("self", time.Second, func(ctx context.Context) error { return nil })

	status := checker.CheckAll(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["self"].Status)
	assert.True(t, checker.IsReady(context.Background()))
}

func TestHealthChecker_SingleFailureDegradesAggregate(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("ok", time.Second, func(ctx context.Context) error { return nil })
	checker.AddCheck("broken", time.Second, func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	status := checker.CheckAll(context.Background())

	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["ok"].Status)
	assert.Equal(t, "connection refused", status.Checks["broken"].Error)
	assert.False(t, checker.IsReady(context.Background()))
}

func TestHealthChecker_ProbeTimeout(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("slow", 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := checker.CheckAll(context.Background())

	assert.Equal(t, "unhealthy", status.Status)
}
