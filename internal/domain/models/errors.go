package models

import "errors"

// Error kinds surfaced by the inventory operations. Failures wrap exactly one
// of them so callers can branch with errors.Is.
var (
	ErrConfig     = errors.New("configuration error")
	ErrStorage    = errors.New("storage error")
	ErrFileAccess = errors.New("file access error")
	ErrFormat     = errors.New("format error")
)
