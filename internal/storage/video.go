package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// MaxVideoSize is the largest accepted upload (100MB)
const MaxVideoSize int64 = 100 * 1024 * 1024

var (
	ErrUnsupportedType = errors.New("unsupported video type")
	ErrTooLarge        = errors.New("video exceeds 100MB")
	ErrEmptyFile       = errors.New("video file is empty")
)

var allowedVideoTypes = map[string]string{
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/ogg":       "ogg",
	"video/quicktime": "mov",
}

// ValidateVideo checks an upload's declared content type and size
func ValidateVideo(contentType string, size int64) error {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if _, ok := allowedVideoTypes[mediaType]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxVideoSize {
		return ErrTooLarge
	}
	return nil
}

// VideoObjectKey lays out question videos as
// surveys/{surveyId}/questions/{questionId}/video_{unixmillis}.{ext}.
// The extension comes from the filename, else from the content type.
func VideoObjectKey(surveyID, questionID, filename, contentType string, now time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = allowedVideoTypes[strings.ToLower(contentType)]
	}
	if ext == "" {
		ext = "mp4"
	}
	return fmt.Sprintf("surveys/%s/questions/%s/video_%d.%s", surveyID, questionID, now.UnixMilli(), ext)
}
