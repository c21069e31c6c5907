package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/onboardflow/platform/pkg/common/config"
	"github.com/onboardflow/platform/pkg/common/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(&config.Config{
		VisionAPIKey:  "test-key",
		VisionBaseURL: baseURL,
		VisionModel:   "gpt-4o-mini",
		VisionTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func stageImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake-image-bytes"), 0o600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func completionResponse(content string) string {
	payload := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestAnalyzeParsesFencedResponse(t *testing.T) {
	var gotParts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 1 {
			t.Fatalf("expected one message, got %d", len(req.Messages))
		}
		gotParts = len(req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse("```json\n{\"full_name\": \"Jane Doe\", \"tax_id\": null}\n```"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	front := stageImage(t, "front.jpg")
	back := stageImage(t, "back.jpg")

	outcome := client.Analyze(context.Background(), Images{Front: front, Back: back})
	if !outcome.Success {
		t.Fatalf("expected success, got error: %v", outcome.Err)
	}
	if gotParts != 3 { // two images plus the instruction
		t.Fatalf("expected 3 content parts, got %d", gotParts)
	}
	if outcome.Fields["full_name"] != "Jane Doe" {
		t.Fatalf("unexpected full_name: %v", outcome.Fields["full_name"])
	}
	if value, ok := outcome.Fields["tax_id"]; !ok || value != nil {
		t.Fatalf("expected explicit null tax_id, got %v (present: %v)", value, ok)
	}
	if outcome.ImagesAnalyzed != 2 {
		t.Fatalf("expected 2 images analyzed, got %d", outcome.ImagesAnalyzed)
	}
	if outcome.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %q", outcome.Model)
	}
	if outcome.RawResponse == "" {
		t.Fatal("expected raw response to be kept")
	}
}

func TestAnalyzeRejectsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse("Sure! Here is the data you asked for."))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	front := stageImage(t, "front.jpg")

	outcome := client.Analyze(context.Background(), Images{Front: front})
	if outcome.Success {
		t.Fatal("expected failure for non-JSON response")
	}
	if outcome.Err == nil {
		t.Fatal("expected error description")
	}
	if outcome.Fields != nil {
		t.Fatalf("expected no fields, got %v", outcome.Fields)
	}
}

func TestAnalyzeRequiresAtLeastOneImage(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")

	outcome := client.Analyze(context.Background(), Images{Front: "/nonexistent/front.jpg"})
	if outcome.Success {
		t.Fatal("expected failure with no readable images")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.Config{})
	if err != ErrMissingAPIKey {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
