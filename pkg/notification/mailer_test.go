package notification

import (
	"os"
	"strings"
	"testing"

	"github.com/onboardflow/platform/pkg/common/config"
	"github.com/onboardflow/platform/pkg/common/logger"
	"github.com/onboardflow/platform/pkg/common/models"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testDocs() []models.DocumentDescriptor {
	return []models.DocumentDescriptor{
		{Type: "ID Card - Front", Name: "front.jpg"},
		{Type: "ID Card - Back", Name: "back.jpg"},
		{Type: "Proof of Residence", Name: "bill.pdf"},
	}
}

func TestNotifySkippedWhenUnconfigured(t *testing.T) {
	mailer := NewMailer(&config.Config{
		SMTPServer: "smtp.example.com",
		SMTPPort:   "587",
		EmailTo:    "reviewer@example.com",
	})

	if mailer.NotifySuccess(map[string]interface{}{"full_name": "Jane"}, testDocs(), "proc-1") {
		t.Fatal("expected success notification to be skipped")
	}
	if mailer.NotifyFailure("something broke", testDocs()) {
		t.Fatal("expected failure notification to be skipped")
	}
}

func TestBuildMessageIsMultipartAlternative(t *testing.T) {
	msg, err := buildMessage("from@example.com", "to@example.com", "Subject line", "plain body", "<p>html body</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(msg)
	for _, want := range []string{
		"From: from@example.com",
		"To: to@example.com",
		"Subject: Subject line",
		"multipart/alternative",
		"text/plain; charset=UTF-8",
		"text/html; charset=UTF-8",
		"plain body",
		"<p>html body</p>",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected message to contain %q", want)
		}
	}
}

func TestSuccessTemplatesIncludeExtractedData(t *testing.T) {
	fields := map[string]interface{}{
		"full_name": "Jane Doe",
		"tax_id":    nil,
	}

	text := successText(fields, testDocs())
	if !strings.Contains(text, "Full Name: Jane Doe") {
		t.Fatalf("expected humanized field in text body:\n%s", text)
	}
	if !strings.Contains(text, "front.jpg") {
		t.Fatal("expected document name in text body")
	}
	if !strings.Contains(text, "Tax Id: -") {
		t.Fatal("expected placeholder for null field")
	}

	html := successHTML(fields, testDocs())
	if !strings.Contains(html, "Jane Doe") || !strings.Contains(html, "bill.pdf") {
		t.Fatal("expected extracted data and document names in html body")
	}
}

func TestFailureTemplatesIncludeError(t *testing.T) {
	text := failureText("model unavailable", testDocs())
	if !strings.Contains(text, "model unavailable") {
		t.Fatal("expected error message in text body")
	}

	html := failureHTML("model unavailable", testDocs())
	if !strings.Contains(html, "model unavailable") {
		t.Fatal("expected error message in html body")
	}
}
