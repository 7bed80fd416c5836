package api

import (
	"errors"
	"fmt"
	"net/http"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/interfaces"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/relay"
)

// PickLocationRequest is the body of PUT /location.
type PickLocationRequest struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" validate:"longitude"`
}

// SearchLocationRequest is the body of POST /location/search.
type SearchLocationRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

// LocationResultRequest is posted by the view once the browser answered a
// location request. ErrorCode is the GeolocationPositionError code, or 0
// when geolocation is not supported; it is absent on success.
type LocationResultRequest struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" validate:"longitude"`
	ErrorCode *int    `json:"error_code" validate:"omitempty,min=0,max=3"`
}

// VoiceResultRequest is posted by the view when recognition ends. Error is
// the SpeechRecognitionErrorEvent code, if any.
type VoiceResultRequest struct {
	Transcript string `json:"transcript" validate:"max=4000"`
	Error      string `json:"error" validate:"max=64"`
}

// VoiceStatusResponse reports whether recognition is running.
type VoiceStatusResponse struct {
	Listening bool `json:"listening"`
}

// CapabilityHandler serves location and voice input, the two features that
// need the browser's help.
type CapabilityHandler struct {
	location      interfaces.LocationService
	locationRelay interfaces.LocationRelay
	voice         interfaces.VoiceService
	speechRelay   interfaces.SpeechRelay
}

func NewCapabilityHandler(location interfaces.LocationService, locationRelay interfaces.LocationRelay,
	voice interfaces.VoiceService, speechRelay interfaces.SpeechRelay) *CapabilityHandler {
	return &CapabilityHandler{
		location:      location,
		locationRelay: locationRelay,
		voice:         voice,
		speechRelay:   speechRelay,
	}
}

func (h *CapabilityHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.location.Current(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, loc)
}

// PickLocation sets the location to a point chosen on the map.
func (h *CapabilityHandler) PickLocation(w http.ResponseWriter, r *http.Request) {
	var req PickLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	loc, err := h.location.Pick(r.Context(), model.NewCoordinates(req.Latitude, req.Longitude))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, loc)
}

func (h *CapabilityHandler) SearchLocation(w http.ResponseWriter, r *http.Request) {
	var req SearchLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	loc, err := h.location.Search(r.Context(), req.Query)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, loc)
}

// DetectLocation starts a detection in the background. The view receives a
// location_request event and answers on /location/result.
func (h *CapabilityHandler) DetectLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.location.StartDetect(); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, statusOK)
}

func (h *CapabilityHandler) LocationResult(w http.ResponseWriter, r *http.Request) {
	var req LocationResultRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	var err error
	if req.ErrorCode != nil {
		err = h.locationRelay.Fail(*req.ErrorCode)
	} else {
		err = h.locationRelay.Deliver(model.NewCoordinates(req.Latitude, req.Longitude))
	}
	if err != nil {
		respondWithError(w, relayError(err))
		return
	}
	respondWithJSON(w, http.StatusOK, statusOK)
}

// StartVoice starts speech recognition in the background. The view receives
// a voice_start event and answers on /voice/result.
func (h *CapabilityHandler) StartVoice(w http.ResponseWriter, r *http.Request) {
	if err := h.voice.Start(); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, VoiceStatusResponse{Listening: h.voice.Listening()})
}

func (h *CapabilityHandler) VoiceResult(w http.ResponseWriter, r *http.Request) {
	var req VoiceResultRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.speechRelay.Deliver(req.Transcript, req.Error); err != nil {
		respondWithError(w, relayError(err))
		return
	}
	respondWithJSON(w, http.StatusOK, statusOK)
}

// relayError turns a result nobody was waiting for into a conflict.
func relayError(err error) error {
	if errors.Is(err, relay.ErrNoPending) {
		return fmt.Errorf("%w: %w", app_errors.ErrConflict, err)
	}
	return err
}
