package processing

import (
	"errors"
	"fmt"

	"github.com/onboardflow/platform/pkg/common/models"
)

var errMissingDocument = errors.New("missing required document")

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ValidateRequest rejects a submission missing any of the three required
// documents before it reaches the orchestrator.
func ValidateRequest(req models.ProcessRequest) error {
	entries := []struct {
		key  string
		data string
	}{
		{"front", req.Front.Data},
		{"back", req.Back.Data},
		{"proof", req.ResidenceProof.Data},
	}

	for _, entry := range entries {
		if entry.data == "" {
			return ValidationError{reason: fmt.Errorf("%w: %s", errMissingDocument, entry.key)}
		}
	}

	return nil
}
