package shared

import "errors"

var (
	ErrNoLogger              = errors.New("no logger provided")
	ErrNoAPIKey              = errors.New("no API key provided")
	ErrNoConfig              = errors.New("no config provided")
	ErrNoPrinter             = errors.New("no printer provided")
	ErrClientNotInitialized  = errors.New("client not initialized")
	ErrSessionAlreadyRunning = errors.New("session already running")
	ErrSessionNotRunning     = errors.New("session not running")
	ErrHandlerAlreadySet     = errors.New("handler already set")
	ErrRecorderRunning       = errors.New("recorder already running")
	ErrStreamerRunning       = errors.New("streamer already running")
	ErrKeyNotFound           = errors.New("API key not found in environment or keyring")
)
