package card

import "errors"

// Error kinds. Callers wrap them with context; test with errors.Is.
var (
	ErrFileAccess = errors.New("file access error")
	ErrParse      = errors.New("parse error")
	ErrLookup     = errors.New("lookup error")
	ErrSchema     = errors.New("schema error")
)
