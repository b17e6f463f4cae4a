package monitoring

import (
	"context"
	"sync"
	"time"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	"collabcore/internal/infrastructure/events"
)

// SampleSources are the registries the observer polls for gauge values.
// Any nil source is skipped.
type SampleSources struct {
	Signaling     ports.SignalingRegistry
	Shares        ports.ScreenShareRegistry
	ObserverCount func() int
}

// MetricsObserver keeps the Prometheus collector in step with the system:
// counters follow the event bus, gauges are sampled on a fixed interval.
type MetricsObserver struct {
	collector   *PrometheusCollector
	sources     SampleSources
	interval    time.Duration
	unsubscribe func()
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// StartMetricsObserver subscribes to the bus and launches the sampling
// loop. Call Stop to release the subscription.
func StartMetricsObserver(bus *events.Bus, collector *PrometheusCollector, sources SampleSources, interval time.Duration) *MetricsObserver {
	o := &MetricsObserver{
		collector: collector,
		sources:   sources,
		interval:  interval,
		stop:      make(chan struct{}),
	}

	ch, unsubscribe := bus.Subscribe(256)
	o.unsubscribe = unsubscribe

	o.wg.Add(2)
	go o.consume(ch)
	go o.sample()

	return o
}

func (o *MetricsObserver) consume(ch <-chan *domain.Event) {
	defer o.wg.Done()
	for event := range ch {
		o.collector.RecordEvent(event.Type)
		switch event.Type {
		case domain.EventVoteCast:
			o.collector.RecordVote()
		case domain.EventBoardOperation:
			o.collector.RecordBoardOperation()
		}
	}
}

func (o *MetricsObserver) sample() {
	defer o.wg.Done()

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stop:
			return
		case <-ticker.C:
			o.sampleOnce()
		}
	}
}

func (o *MetricsObserver) sampleOnce() {
	ctx := context.Background()

	if o.sources.Signaling != nil {
		if sessions, err := o.sources.Signaling.ListSessions(ctx); err == nil {
			peers := 0
			for _, s := range sessions {
				peers += s.PeerCount
			}
			o.collector.SetActiveSessions(len(sessions))
			o.collector.SetConnectedPeers(peers)
		}
	}
	if o.sources.Shares != nil {
		if shares, err := o.sources.Shares.ListShares(ctx); err == nil {
			o.collector.SetActiveShares(len(shares))
		}
	}
	if o.sources.ObserverCount != nil {
		o.collector.SetFeedObservers(o.sources.ObserverCount())
	}
}

// Stop halts sampling and drops the bus subscription.
func (o *MetricsObserver) Stop() {
	o.stopOnce.Do(func() {
		close(o.stop)
		o.unsubscribe()
	})
	o.wg.Wait()
}
