package derive

import "fmt"

// MissingFieldError reports a required raw stat that was absent from a
// record. It fails the single record, never the whole batch.
type MissingFieldError struct {
	Field    string
	RecordID string
}

func (e *MissingFieldError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("record %s: missing required field %q", e.RecordID, e.Field)
}
