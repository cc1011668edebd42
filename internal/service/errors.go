package service

import "errors"

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("admin role required")
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrResponseNotFound   = errors.New("response not found")
	ErrUnknownQuestion    = errors.New("question not found in survey")
	ErrNotAnswerable      = errors.New("question does not take answers")
	ErrInvalidAnswer      = errors.New("answer shape does not match question type")
	ErrPageOutOfRange     = errors.New("page out of range")
	ErrInvalidVideo       = errors.New("invalid video upload")
	ErrStorageUnavailable = errors.New("video storage is not configured")
)
