package responder

import "errors"

var (
	// ErrRemoteService wraps any failure raised by the generation service while a
	// request is being submitted or its stream consumed.
	ErrRemoteService = errors.New("remote generation service failed")
	// ErrInit indicates the generation client could not be initialized.
	ErrInit = errors.New("generation client initialization failed")
)
