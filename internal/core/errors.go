package core

import "errors"

var (
	ErrQueryInFlight    = errors.New("a query is already awaiting a response")
	ErrSessionReset     = errors.New("session was reset before the response arrived")
	ErrNoSuchSuggestion = errors.New("no such suggestion")
	ErrUploadInProgress = errors.New("an upload is in progress")
	ErrNothingToUpload  = errors.New("no files selected for upload")
	ErrInvalidState     = errors.New("operation not valid in the current state")
)
