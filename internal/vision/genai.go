package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const scoringPrompt = "Compare the two attached photos. The first is a scene photo of a meetup " +
	"location; the second is a participant selfie claimed to be taken at the same place and time. " +
	"Judge how consistent the selfie is with the scene (location, lighting, background). " +
	"Respond with JSON only: {\"similarity\": <number between 0.0 and 1.0>}."

type GenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GenAIScorer scores image pairs with a remote multimodal model through
// the generateContent REST endpoint.
type GenAIScorer struct {
	cfg        GenAIConfig
	httpClient *http.Client
	log        *zap.Logger
}

func NewGenAI(cfg GenAIConfig, log *zap.Logger) *GenAIScorer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &GenAIScorer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.Named("vision.genai"),
	}
}

type genaiPart struct {
	Text       string           `json:"text,omitempty"`
	InlineData *genaiInlineData `json:"inline_data,omitempty"`
}

type genaiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type genaiContent struct {
	Parts []genaiPart `json:"parts"`
}

type genaiRequest struct {
	Contents         []genaiContent        `json:"contents"`
	GenerationConfig genaiGenerationConfig `json:"generationConfig"`
}

type genaiGenerationConfig struct {
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema"`
}

var similaritySchema = json.RawMessage(`{"type":"object","properties":{"similarity":{"type":"number"}},"required":["similarity"]}`)

type genaiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (s *GenAIScorer) Score(ctx context.Context, reference, candidate []byte) (float64, error) {
	if s.cfg.APIKey == "" {
		return 0, fmt.Errorf("%w: missing api key", ErrScoringUnavailable)
	}

	payload := genaiRequest{
		Contents: []genaiContent{{
			Parts: []genaiPart{
				{Text: scoringPrompt},
				{InlineData: &genaiInlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(reference),
				}},
				{InlineData: &genaiInlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(candidate),
				}},
			},
		}},
		GenerationConfig: genaiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   similaritySchema,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: encode request: %v", ErrScoringUnavailable, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.cfg.BaseURL, s.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %v", ErrScoringUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("%w: read response: %v", ErrScoringUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		s.log.Warn("vision provider returned non-200",
			zap.Int("status_code", resp.StatusCode),
		)
		return 0, fmt.Errorf("%w: status %d", ErrScoringUnavailable, resp.StatusCode)
	}

	var parsed genaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrScoringUnavailable, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return 0, fmt.Errorf("%w: empty response", ErrScoringUnavailable)
	}

	var result struct {
		Similarity *float64 `json:"similarity"`
	}
	if err := json.Unmarshal([]byte(parsed.Candidates[0].Content.Parts[0].Text), &result); err != nil {
		return 0, fmt.Errorf("%w: malformed similarity payload: %v", ErrScoringUnavailable, err)
	}
	if result.Similarity == nil {
		return 0, fmt.Errorf("%w: similarity field missing", ErrScoringUnavailable)
	}

	return clamp(*result.Similarity), nil
}
