package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/circle-dev/circle/shared/errors"
	"github.com/circle-dev/circle/shared/logger"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.ErrorWithStatusCode); ok {
		http.Error(w, err.Error(), e.StatusCode)
		return
	}
	// default error is 500
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode json response", "error", err)
	}
}

// Decode reads a feed API response body. Malformed upstream data is a 502.
func Decode(r io.Reader, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Warn("invalid json from feed api", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Response is invalid json", StatusCode: http.StatusBadGateway}
	}
	return nil
}

func DecodeValidate(r io.Reader, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return Validate(body)
}

// Validate runs struct tags of body.
func Validate(body any) error {
	if err := validate.Struct(body); err != nil {
		logger.Log.Warn("feed api response failed validation", "error", err)
		return &errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Response failed validation: %v", err),
			StatusCode: http.StatusBadGateway,
		}
	}
	return nil
}
