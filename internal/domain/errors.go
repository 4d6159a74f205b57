package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidN          = errors.New("n must be between 1 and 10")
	ErrNExceedsDeck      = errors.New("n exceeds number of cards in deck")
	ErrDeckNotFound      = errors.New("deck not found")
	ErrCardNotFound      = errors.New("card not found")
	ErrUnknownSpread     = errors.New("unknown spread")
	ErrInvalidCut        = errors.New("cut position must be left, middle or right")
	ErrMissingCards      = errors.New("cards must be a non-empty list")
	ErrMissingQuestion   = errors.New("question is required")
	ErrMissingCredential = errors.New("no API key configured")
	ErrUpstreamLLM       = errors.New("upstream LLM failure")
	ErrUpstreamMalformed = errors.New("upstream returned a malformed completion")
	ErrUpstreamTimeout   = errors.New("upstream LLM timed out")
	ErrInvalidTransition = errors.New("invalid reading transition")
	ErrEndpointNeedsKey  = errors.New("a custom API endpoint requires the caller's own API key")
	ErrTooManyCards      = errors.New("a reading holds at most 10 cards")
	ErrDuplicateCard     = errors.New("card appears more than once in the reading")
)

// RateLimitError reports that a caller on operator-default credentials
// exhausted one of its windows.
type RateLimitError struct {
	Window     QuotaWindow
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s limit of %d requests exceeded, retry after %s", e.Window, e.Limit, e.RetryAfter)
}

// UpstreamError is a non-success response from the chat-completion API.
// DefaultKey marks calls made with operator credentials.
type UpstreamError struct {
	Status     int
	Message    string
	Details    json.RawMessage
	DefaultKey bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstreamLLM }

// QuotaExhausted reports whether the upstream refused the call for billing
// or rate reasons.
func (e *UpstreamError) QuotaExhausted() bool {
	return e.Status == 429 || e.Status == 402
}

// MalformedResponseError carries the raw upstream payload that lacked a
// completion.
type MalformedResponseError struct {
	Details json.RawMessage
}

func (e *MalformedResponseError) Error() string { return ErrUpstreamMalformed.Error() }

func (e *MalformedResponseError) Unwrap() error { return ErrUpstreamMalformed }
