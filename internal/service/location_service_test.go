package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/geo"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/service"
)

type fakeLocator struct {
	coords model.Coordinates
	err    error
}

func (l *fakeLocator) Locate(context.Context) (model.Coordinates, error) {
	return l.coords, l.err
}

type fakeGeocoder struct {
	name       string
	reverseErr error
	found      *model.Location
	searchErr  error
	language   string
}

func (g *fakeGeocoder) Reverse(_ context.Context, _ model.Coordinates, language string) (string, error) {
	g.language = language
	return g.name, g.reverseErr
}

func (g *fakeGeocoder) Search(_ context.Context, _ string, language string) (*model.Location, error) {
	g.language = language
	return g.found, g.searchErr
}

func setupLocation(t *testing.T, locator geo.Locator, geocoder geo.Geocoder) (*service.LocationService, *service.SettingsService, *recordingNotifier) {
	settings := newStoredSettings(t)
	notifier := &recordingNotifier{}
	return service.NewLocationService(locator, geocoder, settings, notifier, time.Second), settings, notifier
}

func TestLocationService_Detect(t *testing.T) {
	ctx := context.Background()

	t.Run("Position is named and stored", func(t *testing.T) {
		geocoder := &fakeGeocoder{name: "Indore, Madhya Pradesh"}
		locations, settings, notifier := setupLocation(t, &fakeLocator{coords: model.NewCoordinates(22.72, 75.86)}, geocoder)
		_, err := settings.SetLanguage(ctx, "hi")
		require.NoError(t, err)

		loc, err := locations.Detect(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Indore, Madhya Pradesh", loc.Name)
		assert.Equal(t, "hi", geocoder.language)

		stored, err := locations.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, loc, stored)
		require.Len(t, notifier.All(), 1)
		assert.Equal(t, model.LevelInfo, notifier.All()[0].Level)
	})

	t.Run("Denial keeps the location unset", func(t *testing.T) {
		locations, _, notifier := setupLocation(t, &fakeLocator{err: geo.ErrPermissionDenied}, &fakeGeocoder{})

		_, err := locations.Detect(ctx)
		assert.ErrorIs(t, err, app_errors.ErrPermission)

		stored, err := locations.Current(ctx)
		require.NoError(t, err)
		assert.False(t, stored.Coordinates.Set)

		notices := notifier.All()
		require.Len(t, notices, 1)
		assert.Equal(t, model.NoticeLocation, notices[0].Kind)
		assert.Equal(t, model.LevelInfo, notices[0].Level)
		assert.Contains(t, notices[0].Text, "permission denied")
	})
}

func TestLocationService_Pick(t *testing.T) {
	ctx := context.Background()

	t.Run("Geocoding failure falls back to coordinates", func(t *testing.T) {
		locations, _, _ := setupLocation(t, &fakeLocator{}, &fakeGeocoder{reverseErr: errors.New("rate limited")})

		loc, err := locations.Pick(ctx, model.Coordinates{Latitude: 10.0159, Longitude: 76.3419})
		require.NoError(t, err)
		assert.True(t, loc.Coordinates.Set)
		assert.Equal(t, "10.0159, 76.3419", loc.Name)
	})

	t.Run("Out of range", func(t *testing.T) {
		locations, _, _ := setupLocation(t, &fakeLocator{}, &fakeGeocoder{})

		_, err := locations.Pick(ctx, model.Coordinates{Latitude: 95, Longitude: 10})
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})
}

func TestLocationService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("Best match is stored", func(t *testing.T) {
		found := &model.Location{Coordinates: model.NewCoordinates(30.9, 75.85), Name: "Ludhiana, Punjab"}
		locations, _, _ := setupLocation(t, &fakeLocator{}, &fakeGeocoder{found: found})

		loc, err := locations.Search(ctx, "Ludhiana")
		require.NoError(t, err)
		assert.Equal(t, *found, loc)

		stored, err := locations.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, *found, stored)
	})

	t.Run("No result", func(t *testing.T) {
		locations, _, notifier := setupLocation(t, &fakeLocator{}, &fakeGeocoder{searchErr: geo.ErrNoResult})

		_, err := locations.Search(ctx, "Atlantis")
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
		require.Len(t, notifier.All(), 1)
		assert.Equal(t, model.LevelWarn, notifier.All()[0].Level)
	})
}

func TestLocationService_StartDetectIsExclusive(t *testing.T) {
	locator := &blockingLocator{release: make(chan struct{})}
	locations, _, _ := setupLocation(t, locator, &fakeGeocoder{name: "x"})

	require.NoError(t, locations.StartDetect())
	assert.ErrorIs(t, locations.StartDetect(), service.ErrAlreadyLocating)

	close(locator.release)
	assert.Eventually(t, func() bool {
		_, err := locations.Detect(context.Background())
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

type blockingLocator struct {
	release chan struct{}
}

func (l *blockingLocator) Locate(ctx context.Context) (model.Coordinates, error) {
	select {
	case <-l.release:
		return model.NewCoordinates(1, 1), nil
	case <-ctx.Done():
		return model.Coordinates{}, ctx.Err()
	}
}
