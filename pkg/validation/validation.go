package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// IDRegex constrains externally supplied identifiers (rooms, peers,
// participants) to a URL-safe alphabet.
var IDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	maxIDLength       = 100
	maxQuestionLength = 500
	maxOptionLength   = 200
	maxOptionCount    = 20
	maxTagCount       = 16
	maxTagLength      = 64
	maxMetadataKeys   = 32
	maxMetadataValue  = 1024
)

// ValidateID checks an externally supplied identifier.
func ValidateID(id, fieldName string) error {
	if id == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, maxIDLength)
	}
	if !IDRegex.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only letters, numbers, _, - allowed)", fieldName)
	}
	return nil
}

// ValidateQuestion checks a poll, quiz or survey question.
func ValidateQuestion(question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question is required")
	}
	if utf8.RuneCountInString(question) > maxQuestionLength {
		return fmt.Errorf("question is too long (max %d characters)", maxQuestionLength)
	}
	if !utf8.ValidString(question) {
		return fmt.Errorf("question contains invalid characters")
	}
	return nil
}

// ValidateOptions checks the answer options of an interactive tool.
func ValidateOptions(options []string) error {
	if len(options) < 2 {
		return fmt.Errorf("at least two options are required")
	}
	if len(options) > maxOptionCount {
		return fmt.Errorf("too many options (max %d)", maxOptionCount)
	}
	for i, option := range options {
		if strings.TrimSpace(option) == "" {
			return fmt.Errorf("option %d must not be empty", i+1)
		}
		if utf8.RuneCountInString(option) > maxOptionLength {
			return fmt.Errorf("option %d is too long (max %d characters)", i+1, maxOptionLength)
		}
	}
	return nil
}

// ValidateTags checks session metadata tags.
func ValidateTags(tags []string) error {
	if len(tags) > maxTagCount {
		return fmt.Errorf("too many tags (max %d)", maxTagCount)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags must not be empty")
		}
		if len(tag) > maxTagLength {
			return fmt.Errorf("tag %q is too long (max %d characters)", tag, maxTagLength)
		}
	}
	return nil
}

// ValidateMetadata checks a client-supplied string map.
func ValidateMetadata(metadata map[string]string) error {
	if len(metadata) > maxMetadataKeys {
		return fmt.Errorf("too many metadata keys (max %d)", maxMetadataKeys)
	}
	for key, value := range metadata {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("metadata keys must not be empty")
		}
		if len(value) > maxMetadataValue {
			return fmt.Errorf("metadata value for %q is too long (max %d bytes)", key, maxMetadataValue)
		}
	}
	return nil
}

// ValidateIngestURL checks a live stream ingest endpoint.
func ValidateIngestURL(urlStr string) error {
	return validateStreamURL(urlStr, "ingest URL", map[string]bool{
		"rtmp": true, "rtmps": true, "srt": true, "http": true, "https": true,
	})
}

// ValidatePlaybackURL checks a live stream playback endpoint.
func ValidatePlaybackURL(urlStr string) error {
	return validateStreamURL(urlStr, "playback URL", map[string]bool{
		"http": true, "https": true, "ws": true, "wss": true,
	})
}

func validateStreamURL(urlStr, fieldName string, schemes map[string]bool) error {
	if urlStr == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if !schemes[u.Scheme] {
		return fmt.Errorf("invalid %s scheme %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}
	return nil
}
