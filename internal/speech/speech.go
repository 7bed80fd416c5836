// Package speech defines speech-to-text recognition as the client sees it.
// Recognition itself happens in the browser; RelayRecognizer waits for the
// browser to report back.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/relay"
)

var (
	ErrPermissionDenied = fmt.Errorf("%w: microphone access was denied", app_errors.ErrPermission)
	ErrNoSpeech         = errors.New("speech: no speech detected")
	ErrUnsupported      = errors.New("speech: recognition is not supported")
	ErrAborted          = errors.New("speech: recognition was aborted")
	ErrFailed           = errors.New("speech: recognition failed")
)

// Recognizer turns one utterance into text. locale is a BCP 47 tag such as
// "hi-IN".
type Recognizer interface {
	Recognize(ctx context.Context, locale string) (string, error)
}

// ErrorFromCode maps a Web Speech API error code to an error.
func ErrorFromCode(code string) error {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "not-allowed", "service-not-allowed":
		return ErrPermissionDenied
	case "no-speech":
		return ErrNoSpeech
	case "unsupported", "language-not-supported":
		return ErrUnsupported
	case "aborted":
		return ErrAborted
	default:
		return fmt.Errorf("%w: %s", ErrFailed, code)
	}
}

// StartFunc tells the view to begin recognition in locale.
type StartFunc func(locale string)

// RelayRecognizer is a Recognizer whose results are posted by the view.
type RelayRecognizer struct {
	relay *relay.Relay[string]
	start StartFunc
}

func NewRelayRecognizer(start StartFunc) *RelayRecognizer {
	return &RelayRecognizer{relay: relay.New[string](), start: start}
}

func (r *RelayRecognizer) Recognize(ctx context.Context, locale string) (string, error) {
	var start func()
	if r.start != nil {
		start = func() { r.start(locale) }
	}
	return r.relay.Await(ctx, start)
}

// Deliver completes the pending recognition. A non-empty errCode reports a
// failure; an empty transcript without one counts as no speech.
func (r *RelayRecognizer) Deliver(transcript, errCode string) error {
	if errCode != "" {
		return r.relay.Fail(ErrorFromCode(errCode))
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return r.relay.Fail(ErrNoSpeech)
	}
	return r.relay.Deliver(transcript)
}

// Pending reports whether a recognition is waiting for the view.
func (r *RelayRecognizer) Pending() bool {
	return r.relay.Pending()
}
