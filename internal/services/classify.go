package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/bobby-s-dev/weather-widget/pkg/client"
)

// classify maps a client failure onto the lookup taxonomy. notFoundMsg is used
// for 4xx answers that carry no message of their own.
func classify(err error, notFoundMsg string) *LookupError {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr
	}

	if errors.Is(err, client.ErrNoResults) {
		return NotFound(MsgCityNotFound, err)
	}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= 500 {
			return Unavailable(err)
		}
		if msg, ok := providerMessage(statusErr.Body); ok {
			return NotFound(msg, err)
		}
		return NotFound(notFoundMsg, err)
	}

	return Unavailable(err)
}

// errorPayload covers both provider error bodies: OpenWeatherMap uses
// "message", Open-Meteo uses "reason".
type errorPayload struct {
	Message *string `json:"message"`
	Reason  *string `json:"reason"`
}

func providerMessage(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}

	for _, candidate := range []*string{payload.Message, payload.Reason} {
		if candidate == nil {
			continue
		}
		if msg := strings.TrimSpace(*candidate); msg != "" {
			return msg, true
		}
	}
	return "", false
}
