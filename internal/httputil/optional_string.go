package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tells an absent JSON field apart from an explicit null,
// which *string alone cannot:
//   - Present=false: field absent (leave unchanged)
//   - Present=true, Value=nil: field is null
//   - Present=true, Value!=nil: field has a value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the field appears in the document
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
