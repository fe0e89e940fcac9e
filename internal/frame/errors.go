package frame

import "errors"

// ErrLoopRunning is returned by Run when the loop is already running.
var ErrLoopRunning = errors.New("frame loop already running")
