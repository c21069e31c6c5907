package staging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/onboardflow/platform/pkg/common/logger"
	"github.com/onboardflow/platform/pkg/common/models"
)

// Document roles inside one staging workspace. Role doubles as the file name
// suffix for the staged image.
const (
	RoleFront          = "id_front"
	RoleBack           = "id_back"
	RoleResidenceProof = "residence_proof"
)

type DecodeError struct {
	Role   string
	reason error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decoding %s payload: %v", e.Role, e.reason)
}

func (e DecodeError) Unwrap() error {
	return e.reason
}

func IsDecodeError(err error) bool {
	var de DecodeError
	return errors.As(err, &de)
}

type StorageError struct {
	reason error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("staging area: %v", e.reason)
}

func (e StorageError) Unwrap() error {
	return e.reason
}

func IsStorageError(err error) bool {
	var se StorageError
	return errors.As(err, &se)
}

// Workspace is a private temp directory holding the decoded images of one
// processing attempt. It is exclusively owned by that attempt and must be
// released with Cleanup on every exit path.
type Workspace struct {
	Dir   string
	Paths map[string]string // role -> staged file path
}

// Stage decodes each payload into a freshly created workspace. Files are
// named <processID>_<role>.jpg. A partially staged workspace is torn down
// before the error is returned.
func Stage(processID string, payloads map[string]models.DocumentPayload) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "onboarding-")
	if err != nil {
		return nil, StorageError{reason: err}
	}

	ws := &Workspace{Dir: dir, Paths: make(map[string]string, len(payloads))}

	for role, payload := range payloads {
		decoded, err := base64.StdEncoding.DecodeString(payload.Data)
		if err != nil {
			ws.Cleanup()
			return nil, DecodeError{Role: role, reason: err}
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_%s.jpg", processID, role))
		if err := os.WriteFile(path, decoded, 0o600); err != nil {
			ws.Cleanup()
			return nil, StorageError{reason: err}
		}
		ws.Paths[role] = path
	}

	logger.Log.WithFields(map[string]interface{}{
		"process_id": processID,
		"dir":        dir,
		"files":      len(ws.Paths),
	}).Debug("staged document payloads")

	return ws, nil
}

// Cleanup removes the staged files and the workspace directory. Missing
// files and repeated calls are fine; failures are logged, never raised.
func (w *Workspace) Cleanup() {
	if w == nil || w.Dir == "" {
		return
	}

	for role, path := range w.Paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Log.WithError(err).WithField("role", role).Warn("failed to remove staged file")
		}
	}

	if err := os.RemoveAll(w.Dir); err != nil {
		logger.Log.WithError(err).WithField("dir", w.Dir).Warn("failed to remove staging directory")
	}
}
