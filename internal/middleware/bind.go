package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/validator"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a single JSON object into target and runs struct validation.
// All failures wrap e.ErrValidation.
func DecodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	const op = "middleware.DecodeJSON"

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return e.Validation(op, fmt.Errorf("request body is empty"))
		}
		return e.Validation(op, fmt.Errorf("invalid JSON: %w", err))
	}
	if dec.More() {
		return e.Validation(op, fmt.Errorf("request body must contain a single JSON object"))
	}

	if err := validator.ValidateStruct(target); err != nil {
		return e.Validation(op, err)
	}
	return nil
}
