package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrInvalidPayload   = fmt.Errorf("invalid event payload")
	ErrFrameTooLarge    = fmt.Errorf("frame exceeds 65535 encoded bytes")
	ErrUnknownFrameKind = fmt.Errorf("unknown frame kind")
	ErrUnknownMode      = fmt.Errorf("unknown routing mode")
	ErrShortFrame       = fmt.Errorf("frame has too few fields")
	ErrUsernameTaken    = fmt.Errorf("username already taken")
	ErrGroupNotFound    = fmt.Errorf("group not found")
	ErrGroupFull        = fmt.Errorf("group is full")
	ErrChannelClosed    = fmt.Errorf("channel is closed")
)
