package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/geo"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/validation"
)

var ErrAlreadyLocating = fmt.Errorf("%w: location detection is already running", app_errors.ErrConflict)

// LocationService maintains the last known location attached to queries.
type LocationService struct {
	locator  geo.Locator
	geocoder geo.Geocoder
	settings *SettingsService
	notifier Notifier
	timeout  time.Duration
	validate *validator.Validate

	locating atomic.Bool
}

func NewLocationService(locator geo.Locator, geocoder geo.Geocoder, settings *SettingsService, notifier Notifier, timeout time.Duration) *LocationService {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &LocationService{
		locator:  locator,
		geocoder: geocoder,
		settings: settings,
		notifier: notifier,
		timeout:  timeout,
		validate: validation.New(),
	}
}

// Current returns the stored location; unset coordinates mean unknown.
func (s *LocationService) Current(ctx context.Context) (model.Location, error) {
	return s.settings.Location(ctx)
}

// Detect asks the device for its position. A denial leaves the stored
// location untouched and is reported as an informational notice.
func (s *LocationService) Detect(ctx context.Context) (model.Location, error) {
	if !s.locating.CompareAndSwap(false, true) {
		return model.Location{}, ErrAlreadyLocating
	}
	defer s.locating.Store(false)
	return s.detect(ctx)
}

// StartDetect runs Detect in the background.
func (s *LocationService) StartDetect() error {
	if !s.locating.CompareAndSwap(false, true) {
		return ErrAlreadyLocating
	}
	go func() {
		defer s.locating.Store(false)
		if _, err := s.detect(context.Background()); err != nil {
			slog.Debug("Location detection ended with error", "error", err)
		}
	}()
	return nil
}

func (s *LocationService) detect(ctx context.Context) (model.Location, error) {
	locateCtx, cancel := context.WithTimeout(ctx, s.timeout)
	coords, err := s.locator.Locate(locateCtx)
	cancel()
	if err != nil {
		s.notify(model.LevelInfo, describeLocationError(err))
		slog.Info("Location not available", "error", err)
		return model.Location{}, err
	}
	return s.Pick(ctx, coords)
}

// Pick sets the location to coords, e.g. from a map click. The place name
// comes from reverse geocoding; if that fails the formatted coordinates are
// used instead.
func (s *LocationService) Pick(ctx context.Context, coords model.Coordinates) (model.Location, error) {
	coords.Set = true
	if err := s.validate.Struct(coords); err != nil {
		return model.Location{}, fmt.Errorf("%w: coordinates out of range", app_errors.ErrValidation)
	}

	language, err := s.settings.Language(ctx)
	if err != nil {
		return model.Location{}, err
	}

	loc := model.Location{Coordinates: coords}
	loc.Name, err = s.geocoder.Reverse(ctx, coords, language)
	if err != nil {
		slog.Warn("Reverse geocoding failed", "coordinates", coords.String(), "error", err)
		loc.Name = coords.String()
	}
	return loc, s.save(ctx, loc)
}

// Search finds a place by name and makes its best match the location.
func (s *LocationService) Search(ctx context.Context, query string) (model.Location, error) {
	language, err := s.settings.Language(ctx)
	if err != nil {
		return model.Location{}, err
	}
	found, err := s.geocoder.Search(ctx, query, language)
	if err != nil {
		if errors.Is(err, geo.ErrNoResult) {
			s.notify(model.LevelWarn, fmt.Sprintf("No place found for %q.", query))
		}
		return model.Location{}, err
	}
	return *found, s.save(ctx, *found)
}

func (s *LocationService) save(ctx context.Context, loc model.Location) error {
	if err := s.settings.SetLocation(ctx, loc); err != nil {
		return fmt.Errorf("could not store location: %w", err)
	}
	slog.Info("Location updated", "name", loc.Name)
	s.notify(model.LevelInfo, "Location set to "+loc.Name+".")
	return nil
}

func (s *LocationService) notify(level model.NoticeLevel, text string) {
	s.notifier.Notify(model.Notice{Kind: model.NoticeLocation, Level: level, Text: text})
}

func describeLocationError(err error) string {
	switch {
	case errors.Is(err, geo.ErrPermissionDenied):
		return "Location permission denied. Pick your location on the map for local advice."
	case errors.Is(err, geo.ErrUnsupported):
		return "Location is not supported in this browser. Pick your location on the map instead."
	case errors.Is(err, geo.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Finding your location took too long. Pick it on the map instead."
	default:
		return "Your location could not be determined. Pick it on the map instead."
	}
}
