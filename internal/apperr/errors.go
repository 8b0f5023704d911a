package apperr

import "errors"

// Scheduler-level errors. Both abort a tick as a whole; everything else
// is isolated to a single item.
var (
	// ErrBudgetExhausted is returned by a tick that runs after the daily
	// provider call budget is spent. No provider call is made.
	ErrBudgetExhausted = errors.New("daily provider call budget exhausted")

	// ErrSchedulerRunning / ErrSchedulerStopped guard the start/stop transitions.
	ErrSchedulerRunning = errors.New("scheduler already running")
	ErrSchedulerStopped = errors.New("scheduler not running")
)

// Client-level errors.
var (
	// ErrConnectionLost is returned by operations that need a live hub
	// connection while the client is connecting or backing off.
	ErrConnectionLost = errors.New("connection to hub lost")

	// ErrReconnectExhausted is surfaced after the reconnect attempt cap;
	// terminal until a manual Reconnect.
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
)

// ProviderError wraps a failed provider fetch. The spent budget call
// still counts; the scheduler retries on the next tick.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "provider unavailable: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProvider(err error) *ProviderError {
	return &ProviderError{Err: err}
}

// InvalidItemError marks a single malformed provider record. The item is
// skipped and counted; the batch continues.
type InvalidItemError struct {
	Reason string
}

func (e *InvalidItemError) Error() string {
	return "invalid item: " + e.Reason
}

func NewInvalidItem(reason string) *InvalidItemError {
	return &InvalidItemError{Reason: reason}
}

// PersistenceError marks a failed store write for one article. The
// article is not broadcast; the rest of the batch proceeds.
type PersistenceError struct {
	Title string
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return "persist " + e.Title + ": " + e.Err.Error()
	}
	return "persist " + e.Title
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistence(title string, err error) *PersistenceError {
	return &PersistenceError{Title: title, Err: err}
}

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}
