package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mediavault/backend/internal/config"
	"github.com/mediavault/backend/internal/models"
)

// Describer rewrites user-supplied descriptions. Implementations are
// best-effort collaborators: callers fall back to the original text on any
// error.
type Describer interface {
	ImproveDescription(ctx context.Context, text string, kind models.MediaKind) (string, error)
}

// DescriberService talks to an OpenAI-compatible chat completions endpoint
// (LM Studio or similar). The endpoint is read from the settings store on
// every call so it can be changed at runtime.
type DescriberService struct {
	settings *SettingsService
	model    string
	client   *http.Client
}

func NewDescriberService(cfg *config.Config, settings *SettingsService) *DescriberService {
	return &DescriberService{
		settings: settings,
		model:    cfg.DescriberModel,
		client:   &http.Client{Timeout: cfg.DescriberTimeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ImproveDescription asks the endpoint to rewrite the text. Returns an error
// when the endpoint is disabled, unreachable or responds unexpectedly; the
// caller keeps the original text in that case.
func (s *DescriberService) ImproveDescription(ctx context.Context, text string, kind models.MediaKind) (string, error) {
	endpoint, err := s.settings.DescriberEndpoint()
	if err != nil {
		return "", fmt.Errorf("failed to read describer endpoint: %w", err)
	}
	if endpoint == "" {
		return "", fmt.Errorf("describer endpoint not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf("Improve this %s description: %s", kind, text)},
		},
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("describer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("describer returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode describer response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("describer returned no choices")
	}

	improved := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if improved == "" {
		return "", fmt.Errorf("describer returned empty content")
	}
	return improved, nil
}
