package domain

import "errors"

var (
	ErrUnsupported     = errors.New("unsupported document type")
	ErrNotFound        = errors.New("not a regular file")
	ErrToolUnavailable = errors.New("tool not available")
	ErrToolFailed      = errors.New("tool failed")
	ErrPageCount       = errors.New("page count unavailable")
	ErrConversion      = errors.New("conversion failed")
)
