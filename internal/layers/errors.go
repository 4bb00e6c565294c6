package layers

import "errors"

// Validation failures returned by Manager operations. They are plain typed
// values for callers to branch on; a failed operation never partially
// applies.
var (
	ErrNoDocument    = errors.New("no document loaded")
	ErrEmptyName     = errors.New("layer name is empty")
	ErrNameTooLong   = errors.New("layer name exceeds maximum length")
	ErrDuplicateName = errors.New("layer name already in use")
	ErrUnknownLayer  = errors.New("unknown layer id")
	ErrOrderMismatch = errors.New("reorder list does not match current layers")
)
