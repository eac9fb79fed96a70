package validator

import (
	"errors"
	"strings"
)

// Validator checks the path labels the gateway forwards to the engine.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

const maxLabelLen = 255

// forbidden in index, type and id names on Elasticsearch-compatible engines.
const forbiddenChars = `/\*?"<>|, #`

// ValidateType validates a document type label
func (v *Validator) ValidateType(docType string) error {
	var errs []string
	switch {
	case strings.TrimSpace(docType) == "":
		return errors.New("validation: type is required")
	case strings.HasPrefix(docType, "_"):
		errs = append(errs, "type must not start with '_'")
	case docType == "." || docType == "..":
		errs = append(errs, "type must not be '.' or '..'")
	}
	if strings.ContainsAny(docType, forbiddenChars) {
		errs = append(errs, `type must not contain any of / \ * ? " < > | , # or space`)
	}
	if len(docType) > maxLabelLen {
		errs = append(errs, "type must not exceed 255 bytes")
	}
	if len(errs) > 0 {
		return errors.New("validation: " + strings.Join(errs, "; "))
	}
	return nil
}

// ValidateID validates a document id. Ids are opaque to the engine, so only
// empty and oversized values are rejected.
func (v *Validator) ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("validation: id is required")
	}
	if len(id) > 512 {
		return errors.New("validation: id must not exceed 512 bytes")
	}
	return nil
}
