package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/lang"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/speech"
)

var ErrAlreadyListening = fmt.Errorf("%w: voice input is already active", app_errors.ErrConflict)

// VoiceService runs one speech recognition at a time and submits the
// transcript exactly as if it had been typed.
type VoiceService struct {
	recognizer speech.Recognizer
	session    *ChatSession
	users      *UserContextResolver
	notifier   Notifier
	timeout    time.Duration

	listening atomic.Bool
}

func NewVoiceService(recognizer speech.Recognizer, session *ChatSession, users *UserContextResolver, notifier Notifier, timeout time.Duration) *VoiceService {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &VoiceService{
		recognizer: recognizer,
		session:    session,
		users:      users,
		notifier:   notifier,
		timeout:    timeout,
	}
}

// Listening reports whether a recognition is in progress.
func (s *VoiceService) Listening() bool {
	return s.listening.Load()
}

// Listen records one utterance and submits it. It blocks until the
// transcript has been submitted or recognition failed.
func (s *VoiceService) Listen(ctx context.Context) error {
	if !s.listening.CompareAndSwap(false, true) {
		s.notify(model.LevelInfo, "Already listening…")
		return ErrAlreadyListening
	}
	defer s.listening.Store(false)
	return s.listen(ctx)
}

// Start begins a recognition in the background and returns at once. The
// outcome reaches the user through the session and notices.
func (s *VoiceService) Start() error {
	if !s.listening.CompareAndSwap(false, true) {
		s.notify(model.LevelInfo, "Already listening…")
		return ErrAlreadyListening
	}
	go func() {
		defer s.listening.Store(false)
		if err := s.listen(context.Background()); err != nil {
			slog.Debug("Voice input ended with error", "error", err)
		}
	}()
	return nil
}

func (s *VoiceService) listen(ctx context.Context) error {
	uc, err := s.users.Resolve(ctx)
	if err != nil {
		s.notify(model.LevelError, "Voice input is unavailable right now.")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	locale := lang.SpeechLocale(uc.Language)
	slog.Debug("Listening for voice input", "locale", locale)
	transcript, err := s.recognizer.Recognize(ctx, locale)
	if err != nil {
		level, text := describeSpeechError(err)
		s.notify(level, text)
		return err
	}

	s.session.SetInput(transcript)
	if err := s.session.Submit(transcript, uc); err != nil {
		if errors.Is(err, ErrBusy) {
			s.notify(model.LevelWarn, "Still waiting for the last answer. Your words are kept in the input box.")
		} else {
			s.notify(model.LevelWarn, "Start or select a chat before using voice input.")
		}
		return err
	}
	return nil
}

func (s *VoiceService) notify(level model.NoticeLevel, text string) {
	s.notifier.Notify(model.Notice{Kind: model.NoticeVoice, Level: level, Text: text})
}

func describeSpeechError(err error) (model.NoticeLevel, string) {
	switch {
	case errors.Is(err, speech.ErrPermissionDenied):
		return model.LevelError, "Microphone access was denied. Allow it in your browser to use voice input."
	case errors.Is(err, speech.ErrNoSpeech):
		return model.LevelWarn, "No speech was detected. Please try again."
	case errors.Is(err, speech.ErrUnsupported):
		return model.LevelError, "Voice input is not supported in this browser or language."
	case errors.Is(err, speech.ErrAborted):
		return model.LevelInfo, "Voice input was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return model.LevelWarn, "Voice input timed out. Please try again."
	default:
		return model.LevelError, "Voice input failed. Please try again."
	}
}
