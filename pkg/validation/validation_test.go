package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("room-1", "room ID"))
	assert.NoError(t, ValidateID("peer_A9", "peer ID"))

	assert.Error(t, ValidateID("", "room ID"))
	assert.Error(t, ValidateID("has spaces", "room ID"))
	assert.Error(t, ValidateID(strings.Repeat("x", 101), "room ID"))
}

func TestValidateQuestion(t *testing.T) {
	assert.NoError(t, ValidateQuestion("What should we build next?"))

	assert.Error(t, ValidateQuestion("   "))
	assert.Error(t, ValidateQuestion(strings.Repeat("q", 501)))
}

func TestValidateOptions(t *testing.T) {
	assert.NoError(t, ValidateOptions([]string{"Yes", "No"}))

	assert.Error(t, ValidateOptions([]string{"Only one"}))
	assert.Error(t, ValidateOptions([]string{"Yes", "  "}))

	many := make([]string, 21)
	for i := range many {
		many[i] = "option"
	}
	assert.Error(t, ValidateOptions(many))
}

func TestValidateTags(t *testing.T) {
	assert.NoError(t, ValidateTags(nil))
	assert.NoError(t, ValidateTags([]string{"standup", "weekly"}))

	assert.Error(t, ValidateTags([]string{""}))
	assert.Error(t, ValidateTags([]string{strings.Repeat("t", 65)}))
}

func TestValidateMetadata(t *testing.T) {
	assert.NoError(t, ValidateMetadata(nil))
	assert.NoError(t, ValidateMetadata(map[string]string{"resolution": "1920x1080"}))

	assert.Error(t, ValidateMetadata(map[string]string{" ": "x"}))
	assert.Error(t, ValidateMetadata(map[string]string{"blob": strings.Repeat("v", 1025)}))
}

func TestValidateIngestURL(t *testing.T) {
	assert.NoError(t, ValidateIngestURL("rtmp://ingest.example.com/live"))
	assert.NoError(t, ValidateIngestURL("srt://ingest.example.com:9000"))
	assert.NoError(t, ValidateIngestURL("https://ingest.example.com/whip"))

	assert.Error(t, ValidateIngestURL(""))
	assert.Error(t, ValidateIngestURL("ftp://ingest.example.com"))
	assert.Error(t, ValidateIngestURL("rtmp://"))
}

func TestValidatePlaybackURL(t *testing.T) {
	assert.NoError(t, ValidatePlaybackURL("https://cdn.example.com/live.m3u8"))
	assert.NoError(t, ValidatePlaybackURL("wss://cdn.example.com/feed"))

	assert.Error(t, ValidatePlaybackURL("rtmp://cdn.example.com/live"))
}
