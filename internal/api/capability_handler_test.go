package api_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kishanmitra/client/internal/api"
	"kishanmitra/client/internal/geo"
	"kishanmitra/client/internal/interfaces/mocks"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/relay"
	"kishanmitra/client/internal/service"
)

type capabilityFixture struct {
	handler       *api.CapabilityHandler
	location      *mocks.MockLocationService
	locationRelay *mocks.MockLocationRelay
	voice         *mocks.MockVoiceService
	speechRelay   *mocks.MockSpeechRelay
}

func setupCapabilityHandler(t *testing.T) capabilityFixture {
	f := capabilityFixture{
		location:      mocks.NewMockLocationService(t),
		locationRelay: mocks.NewMockLocationRelay(t),
		voice:         mocks.NewMockVoiceService(t),
		speechRelay:   mocks.NewMockSpeechRelay(t),
	}
	f.handler = api.NewCapabilityHandler(f.location, f.locationRelay, f.voice, f.speechRelay)
	return f
}

func TestCapabilityHandler_PickLocation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupCapabilityHandler(t)
		coords := model.NewCoordinates(22.72, 75.86)
		f.location.On("Pick", mock.Anything, coords).
			Return(model.Location{Coordinates: coords, Name: "Indore, Madhya Pradesh"}, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/v1/location", strings.NewReader(`{"lat":22.72,"lon":75.86}`))
		rr := httptest.NewRecorder()
		f.handler.PickLocation(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Indore, Madhya Pradesh")
	})

	t.Run("Failure - Out of range", func(t *testing.T) {
		f := setupCapabilityHandler(t)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/location", strings.NewReader(`{"lat":123,"lon":75.86}`))
		rr := httptest.NewRecorder()
		f.handler.PickLocation(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCapabilityHandler_SearchLocation(t *testing.T) {
	t.Run("No match", func(t *testing.T) {
		f := setupCapabilityHandler(t)
		f.location.On("Search", mock.Anything, "Atlantis").Return(model.Location{}, geo.ErrNoResult).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/location/search", strings.NewReader(`{"query":"Atlantis"}`))
		rr := httptest.NewRecorder()
		f.handler.SearchLocation(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Empty query", func(t *testing.T) {
		f := setupCapabilityHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/location/search", strings.NewReader(`{"query":""}`))
		rr := httptest.NewRecorder()
		f.handler.SearchLocation(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCapabilityHandler_DetectLocation(t *testing.T) {
	t.Run("Started", func(t *testing.T) {
		f := setupCapabilityHandler(t)
		f.location.On("StartDetect").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/location/detect", nil)
		rr := httptest.NewRecorder()
		f.handler.DetectLocation(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
	})

	t.Run("Already running", func(t *testing.T) {
		f := setupCapabilityHandler(t)
		f.location.On("StartDetect").Return(service.ErrAlreadyLocating).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/location/detect", nil)
		rr := httptest.NewRecorder()
		f.handler.DetectLocation(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestCapabilityHandler_LocationResult(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		setup    func(f capabilityFixture)
		wantCode int
	}{
		{
			name: "Position delivered",
			body: `{"lat":10.0159,"lon":76.3419}`,
			setup: func(f capabilityFixture) {
				f.locationRelay.On("Deliver", model.NewCoordinates(10.0159, 76.3419)).Return(nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "Permission denied",
			body: `{"error_code":1}`,
			setup: func(f capabilityFixture) {
				f.locationRelay.On("Fail", 1).Return(nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "Unsupported browser",
			body: `{"error_code":0}`,
			setup: func(f capabilityFixture) {
				f.locationRelay.On("Fail", 0).Return(nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "Nobody waiting",
			body: `{"lat":1,"lon":1}`,
			setup: func(f capabilityFixture) {
				f.locationRelay.On("Deliver", mock.Anything).Return(relay.ErrNoPending).Once()
			},
			wantCode: http.StatusConflict,
		},
		{
			name:     "Unknown error code",
			body:     `{"error_code":9}`,
			setup:    func(capabilityFixture) {},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupCapabilityHandler(t)
			tc.setup(f)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/location/result", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			f.handler.LocationResult(rr, req)

			assert.Equal(t, tc.wantCode, rr.Code)
		})
	}
}

func TestCapabilityHandler_Voice(t *testing.T) {
	t.Run("Start", func(t *testing.T) {
		f := setupCapabilityHandler(t)
		f.voice.On("Start").Return(nil).Once()
		f.voice.On("Listening").Return(true).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/start", nil)
		rr := httptest.NewRecorder()
		f.handler.StartVoice(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		assert.JSONEq(t, `{"listening":true}`, rr.Body.String())
	})

	t.Run("Start while listening", func(t *testing.T) {
		f := setupCapabilityHandler(t)
		f.voice.On("Start").Return(service.ErrAlreadyListening).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/start", nil)
		rr := httptest.NewRecorder()
		f.handler.StartVoice(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Result", func(t *testing.T) {
		f := setupCapabilityHandler(t)
		f.speechRelay.On("Deliver", "धान में कीट", "").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/result", strings.NewReader(`{"transcript":"धान में कीट"}`))
		rr := httptest.NewRecorder()
		f.handler.VoiceResult(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Late result", func(t *testing.T) {
		f := setupCapabilityHandler(t)
		f.speechRelay.On("Deliver", "", "no-speech").Return(fmt.Errorf("deliver: %w", relay.ErrNoPending)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/result", strings.NewReader(`{"error":"no-speech"}`))
		rr := httptest.NewRecorder()
		f.handler.VoiceResult(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
