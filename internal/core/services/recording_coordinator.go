package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
	"collabcore/pkg/utils"
)

type recordingEntry struct {
	mu      sync.Mutex
	deleted bool
	job     domain.RecordingJob
}

type recordingCoordinator struct {
	mu   sync.RWMutex
	jobs map[domain.RecordingID]*recordingEntry

	events ports.EventPublisher
	logger *zap.SugaredLogger
}

// NewRecordingCoordinator creates an empty in-memory recording coordinator.
func NewRecordingCoordinator(events ports.EventPublisher, logger *zap.SugaredLogger) ports.RecordingCoordinator {
	return &recordingCoordinator{
		jobs:   make(map[domain.RecordingID]*recordingEntry),
		events: events,
		logger: logger,
	}
}

func (c *recordingCoordinator) StartRecording(ctx context.Context, sessionID domain.SessionID) (*domain.RecordingJob, error) {
	return c.create(ctx, sessionID, domain.RecordingActive)
}

func (c *recordingCoordinator) ScheduleRecording(ctx context.Context, sessionID domain.SessionID) (*domain.RecordingJob, error) {
	return c.create(ctx, sessionID, domain.RecordingQueued)
}

func (c *recordingCoordinator) create(ctx context.Context, sessionID domain.SessionID, status domain.RecordingStatus) (*domain.RecordingJob, error) {
	if sessionID == "" {
		return nil, apperrors.NewInvalidInputError("sessionId is required")
	}

	job := domain.RecordingJob{
		ID:        domain.RecordingID(utils.GenerateID()),
		SessionID: sessionID,
		Status:    status,
		CreatedAt: utils.Now(),
	}

	c.mu.Lock()
	c.jobs[job.ID] = &recordingEntry{job: job}
	c.mu.Unlock()

	c.logger.Debugw("recording job created",
		"recording_id", job.ID,
		"session_id", sessionID,
		"status", status,
	)
	c.publishStatus(ctx, &job)

	snapshot := cloneJob(&job)
	return &snapshot, nil
}

func (c *recordingCoordinator) ActivateRecording(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error) {
	return c.transition(ctx, recordingID, []domain.RecordingStatus{domain.RecordingQueued}, domain.RecordingActive, nil)
}

func (c *recordingCoordinator) GetRecording(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error) {
	entry, err := c.entry(recordingID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("recording job")
	}
	snapshot := cloneJob(&entry.job)
	return &snapshot, nil
}

func (c *recordingCoordinator) ListRecordingsBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.RecordingJob, error) {
	c.mu.RLock()
	entries := make([]*recordingEntry, 0, len(c.jobs))
	for _, entry := range c.jobs {
		entries = append(entries, entry)
	}
	c.mu.RUnlock()

	jobs := make([]*domain.RecordingJob, 0)
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted && entry.job.SessionID == sessionID {
			snapshot := cloneJob(&entry.job)
			jobs = append(jobs, &snapshot)
		}
		entry.mu.Unlock()
	}
	return jobs, nil
}

func (c *recordingCoordinator) AppendSegment(ctx context.Context, recordingID domain.RecordingID, params ports.SegmentParams) (*domain.RecordingSegment, error) {
	entry, err := c.entry(recordingID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("recording job")
	}
	if entry.job.Status.Terminal() {
		return nil, apperrors.NewInvalidStateError("recording job is " + string(entry.job.Status))
	}

	now := utils.Now()
	startedAt := now
	if params.StartedAt != nil {
		startedAt = *params.StartedAt
	}
	endedAt := now
	if params.EndedAt != nil {
		endedAt = *params.EndedAt
	}

	segment := domain.RecordingSegment{
		ID:              domain.SegmentID(utils.GenerateID()),
		StartedAt:       startedAt,
		EndedAt:         endedAt,
		DurationSeconds: endedAt.Sub(startedAt).Seconds(),
		URL:             params.URL,
	}
	entry.job.Segments = append(entry.job.Segments, segment)

	clone := segment
	return &clone, nil
}

// StopRecording finalizes the job directly: with no transcode worker
// attached there is nothing to process, so the job goes straight to
// complete with EndedAt set.
func (c *recordingCoordinator) StopRecording(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error) {
	now := utils.Now()
	return c.transition(ctx, recordingID,
		[]domain.RecordingStatus{domain.RecordingActive, domain.RecordingProcessing},
		domain.RecordingComplete,
		func(job *domain.RecordingJob) { job.EndedAt = &now })
}

func (c *recordingCoordinator) BeginProcessing(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error) {
	now := utils.Now()
	return c.transition(ctx, recordingID,
		[]domain.RecordingStatus{domain.RecordingActive},
		domain.RecordingProcessing,
		func(job *domain.RecordingJob) { job.EndedAt = &now })
}

func (c *recordingCoordinator) CompleteRecording(ctx context.Context, recordingID domain.RecordingID, outputLocation string) (*domain.RecordingJob, error) {
	now := utils.Now()
	return c.transition(ctx, recordingID,
		[]domain.RecordingStatus{domain.RecordingProcessing},
		domain.RecordingComplete,
		func(job *domain.RecordingJob) {
			job.OutputLocation = outputLocation
			if job.EndedAt == nil {
				job.EndedAt = &now
			}
		})
}

func (c *recordingCoordinator) FailRecording(ctx context.Context, recordingID domain.RecordingID, reason string) (*domain.RecordingJob, error) {
	now := utils.Now()
	return c.transition(ctx, recordingID,
		[]domain.RecordingStatus{domain.RecordingQueued, domain.RecordingActive, domain.RecordingProcessing},
		domain.RecordingFailed,
		func(job *domain.RecordingJob) {
			job.FailureReason = reason
			job.EndedAt = &now
		})
}

func (c *recordingCoordinator) CancelRecording(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error) {
	now := utils.Now()
	return c.transition(ctx, recordingID,
		[]domain.RecordingStatus{domain.RecordingQueued, domain.RecordingActive, domain.RecordingProcessing},
		domain.RecordingCancelled,
		func(job *domain.RecordingJob) { job.EndedAt = &now })
}

func (c *recordingCoordinator) transition(ctx context.Context, recordingID domain.RecordingID, from []domain.RecordingStatus, to domain.RecordingStatus, mutate func(*domain.RecordingJob)) (*domain.RecordingJob, error) {
	entry, err := c.entry(recordingID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("recording job")
	}

	allowed := false
	for _, status := range from {
		if entry.job.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.NewInvalidStateError("recording job is " + string(entry.job.Status))
	}

	entry.job.Status = to
	if mutate != nil {
		mutate(&entry.job)
	}
	c.publishStatus(ctx, &entry.job)

	snapshot := cloneJob(&entry.job)
	return &snapshot, nil
}

// CleanupOlderThan deletes terminal jobs whose EndedAt is older than the
// given number of days. Jobs without EndedAt are never swept.
func (c *recordingCoordinator) CleanupOlderThan(ctx context.Context, days int) int {
	threshold := utils.Now().AddDate(0, 0, -days)

	c.mu.RLock()
	ids := make([]domain.RecordingID, 0, len(c.jobs))
	for id := range c.jobs {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	removed := 0
	for _, id := range ids {
		c.mu.RLock()
		entry, exists := c.jobs[id]
		c.mu.RUnlock()
		if !exists {
			continue
		}

		entry.mu.Lock()
		sweep := !entry.deleted &&
			entry.job.Status.Terminal() &&
			entry.job.EndedAt != nil &&
			entry.job.EndedAt.Before(threshold)
		if sweep {
			entry.deleted = true
		}
		entry.mu.Unlock()

		if sweep {
			c.mu.Lock()
			delete(c.jobs, id)
			c.mu.Unlock()
			removed++
		}
	}

	if removed > 0 {
		c.logger.Infow("old recording jobs swept", "count", removed, "retention_days", days)
	}
	return removed
}

func (c *recordingCoordinator) entry(recordingID domain.RecordingID) (*recordingEntry, error) {
	if recordingID == "" {
		return nil, apperrors.NewInvalidInputError("recordingId is required")
	}
	c.mu.RLock()
	entry, exists := c.jobs[recordingID]
	c.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("recording job")
	}
	return entry, nil
}

func (c *recordingCoordinator) publishStatus(ctx context.Context, job *domain.RecordingJob) {
	c.events.Publish(ctx, &domain.Event{
		Type:      domain.EventRecordingStatus,
		Timestamp: utils.Now(),
		SessionID: job.SessionID,
		EntityID:  string(job.ID),
	})
}

func cloneJob(j *domain.RecordingJob) domain.RecordingJob {
	clone := *j
	clone.Segments = append([]domain.RecordingSegment(nil), j.Segments...)
	if j.EndedAt != nil {
		endedAt := *j.EndedAt
		clone.EndedAt = &endedAt
	}
	return clone
}
