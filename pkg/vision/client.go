package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/onboardflow/platform/pkg/common/config"
	"github.com/onboardflow/platform/pkg/common/logger"
)

var ErrMissingAPIKey = errors.New("vision API key not configured")

// Images are the staged file paths of one processing attempt. Any may be
// empty or point at a missing file; at least one must exist.
type Images struct {
	Front string
	Back  string
	Proof string
}

// Outcome is the result of one vision-model call: either the parsed field
// mapping plus the raw text kept for audit, or a failure description.
type Outcome struct {
	Success        bool
	Fields         map[string]interface{}
	RawResponse    string
	Model          string
	ImagesAnalyzed int
	Err            error
}

type Client struct {
	apiKey  string
	baseURL string
	model   string
	catalog Catalog
	client  *http.Client
}

// NewClient fails fast when the model API key is absent; there is no safe
// disabled mode for extraction.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.VisionAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	catalog, err := LoadCatalog(cfg.VisionFieldCatalog)
	if err != nil {
		return nil, fmt.Errorf("loading field catalog: %w", err)
	}

	timeout := cfg.VisionTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:  cfg.VisionAPIKey,
		baseURL: strings.TrimSuffix(cfg.VisionBaseURL, "/"),
		model:   cfg.VisionModel,
		catalog: catalog,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Analyze issues exactly one synchronous model call covering every present
// image plus the fixed extraction instruction. There is no retry; every
// failure, including unusable inputs and malformed model output, comes back
// as a failed Outcome rather than an error return.
func (c *Client) Analyze(ctx context.Context, images Images) Outcome {
	paths := presentPaths(images)
	if len(paths) == 0 {
		return Outcome{Err: errors.New("no readable document images provided")}
	}

	parts := make([]contentPart, 0, len(paths)+1)
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Outcome{Err: fmt.Errorf("reading staged image %s: %w", path, err)}
		}
		encoded := base64.StdEncoding.EncodeToString(raw)
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/jpeg;base64," + encoded},
		})
	}
	parts = append(parts, contentPart{Type: "text", Text: c.buildPrompt()})

	payload := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: parts}},
		MaxTokens:   1500,
		Temperature: 0.1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Err: fmt.Errorf("encoding model request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return Outcome{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{Err: fmt.Errorf("calling vision model: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Err: fmt.Errorf("reading model response: %w", err)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Outcome{Err: fmt.Errorf("decoding model response: %w", err)}
	}
	if parsed.Error != nil {
		return Outcome{Err: fmt.Errorf("vision model error: %s", parsed.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK {
		return Outcome{Err: fmt.Errorf("vision model returned status %d", resp.StatusCode)}
	}
	if len(parsed.Choices) == 0 {
		return Outcome{Err: errors.New("no response from vision model")}
	}

	raw := parsed.Choices[0].Message.Content

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(CleanResponse(raw)), &fields); err != nil {
		logger.Log.WithError(err).Warn("vision model response is not valid JSON")
		return Outcome{Err: fmt.Errorf("model response is not valid JSON: %w", err)}
	}

	return Outcome{
		Success:        true,
		Fields:         fields,
		RawResponse:    raw,
		Model:          c.model,
		ImagesAnalyzed: len(paths),
	}
}

func (c *Client) buildPrompt() string {
	var b strings.Builder
	b.WriteString("Analyze the attached images (front and back of the ID card and the proof of residence) ")
	b.WriteString("and extract ALL relevant data into a single structured JSON object, following this example:\n\n{\n")
	for i, field := range c.catalog.Fields {
		fmt.Fprintf(&b, "    %q: %q", field.Name, field.Description)
		if i < len(c.catalog.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\nIMPORTANT:\n")
	b.WriteString("- Return ONLY the valid JSON, with no explanations or extra text.\n")
	b.WriteString("- If a piece of information is not visible, use null.\n")
	b.WriteString("- Keep the exact JSON formatting.\n")
	return b.String()
}

func presentPaths(images Images) []string {
	var paths []string
	for _, path := range []string{images.Front, images.Back, images.Proof} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}
	return paths
}
