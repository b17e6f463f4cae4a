package monitoring

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"collabcore/internal/core/domain"
	"collabcore/internal/infrastructure/events"
)

var collectorOnce sync.Once
var sharedCollector *PrometheusCollector

// promauto registers into the default registry, so the collector is
// created once per test binary.
func testCollector() *PrometheusCollector {
	collectorOnce.Do(func() {
		sharedCollector = NewPrometheusCollector()
	})
	return sharedCollector
}

func TestMetricsObserver_CountsBusEvents(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	bus := events.NewBus(logger)
	defer bus.Close()

	collector := testCollector()
	votesBefore := testutil.ToFloat64(collector.votesTotal)
	opsBefore := testutil.ToFloat64(collector.boardOpsTotal)

	observer := StartMetricsObserver(bus, collector, SampleSources{}, time.Hour)

	bus.Publish(context.Background(), &domain.Event{Type: domain.EventVoteCast})
	bus.Publish(context.Background(), &domain.Event{Type: domain.EventBoardOperation})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(collector.votesTotal) == votesBefore+1 &&
			testutil.ToFloat64(collector.boardOpsTotal) == opsBefore+1
	}, time.Second, 10*time.Millisecond)

	observer.Stop()
}

func TestMetricsObserver_SamplesFeedObservers(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	bus := events.NewBus(logger)
	defer bus.Close()

	collector := testCollector()
	observer := StartMetricsObserver(bus, collector, SampleSources{
		ObserverCount: func() int { return 3 },
	}, 10*time.Millisecond)
	defer observer.Stop()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(collector.feedObservers) == 3
	}, time.Second, 10*time.Millisecond)
}

func TestMetricsObserver_StopIsIdempotent(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	bus := events.NewBus(logger)
	defer bus.Close()

	observer := StartMetricsObserver(bus, testCollector(), SampleSources{}, time.Hour)
	observer.Stop()
	observer.Stop()
}
