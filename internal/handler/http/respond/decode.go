package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"newsdesk/internal/domain/entity"
)

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
// Body size errors are returned as is so that Status maps them to 413;
// every other failure becomes a ValidationError on "body".
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &entity.ValidationError{Field: "body", Message: "is required"}
		}
		return &entity.ValidationError{Field: "body", Message: "malformed JSON: " + err.Error()}
	}
	return nil
}
