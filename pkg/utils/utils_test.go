package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateOperationID_Sortable(t *testing.T) {
	prev := GenerateOperationID()
	for i := 0; i < 100; i++ {
		next := GenerateOperationID()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestIsExpired(t *testing.T) {
	defer func() { Now = time.Now }()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	Now = func() time.Time { return base }

	assert.False(t, IsExpired(base.Add(-30*time.Second), time.Minute))
	assert.True(t, IsExpired(base.Add(-2*time.Minute), time.Minute))
}

func TestTimeUntilExpiry(t *testing.T) {
	defer func() { Now = time.Now }()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	Now = func() time.Time { return base }

	assert.Equal(t, 30*time.Second, TimeUntilExpiry(base.Add(-30*time.Second), time.Minute))
	assert.Equal(t, time.Duration(0), TimeUntilExpiry(base.Add(-2*time.Minute), time.Minute))
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	parsed, err := ParseTimestamp(FormatTimestamp(ts))
	assert.NoError(t, err)
	assert.True(t, ts.Equal(parsed))
}
