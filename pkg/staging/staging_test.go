package staging

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/onboardflow/platform/pkg/common/logger"
	"github.com/onboardflow/platform/pkg/common/models"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func encode(data string) string {
	return base64.StdEncoding.EncodeToString([]byte(data))
}

func TestStageWritesDecodedPayloads(t *testing.T) {
	payloads := map[string]models.DocumentPayload{
		RoleFront:          {Data: encode("front-bytes")},
		RoleBack:           {Data: encode("back-bytes")},
		RoleResidenceProof: {Data: encode("proof-bytes")},
	}

	ws, err := Stage("proc-1", payloads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ws.Cleanup()

	if len(ws.Paths) != 3 {
		t.Fatalf("expected 3 staged files, got %d", len(ws.Paths))
	}

	content, err := os.ReadFile(ws.Paths[RoleFront])
	if err != nil {
		t.Fatalf("failed to read staged file: %v", err)
	}
	if string(content) != "front-bytes" {
		t.Fatalf("unexpected staged content: %q", content)
	}

	if got := filepath.Base(ws.Paths[RoleFront]); got != "proc-1_id_front.jpg" {
		t.Fatalf("unexpected staged file name: %q", got)
	}
}

func TestStageRejectsInvalidBase64(t *testing.T) {
	payloads := map[string]models.DocumentPayload{
		RoleFront: {Data: "%%%not-base64%%%"},
	}

	_, err := Stage("proc-2", payloads)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !IsDecodeError(err) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	payloads := map[string]models.DocumentPayload{
		RoleFront: {Data: encode("front")},
		RoleBack:  {Data: encode("back")},
	}

	ws, err := Stage("proc-3", payloads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Part of the set already gone must not trip cleanup.
	if err := os.Remove(ws.Paths[RoleFront]); err != nil {
		t.Fatalf("failed to remove staged file: %v", err)
	}

	ws.Cleanup()
	ws.Cleanup()

	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Fatalf("expected staging directory to be removed, stat err: %v", err)
	}
}
