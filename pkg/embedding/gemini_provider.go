package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type GeminiProvider struct {
	ApiKey string
	Client *http.Client
}

func NewGeminiProvider(apiKey string) Provider {
	return &GeminiProvider{
		ApiKey: apiKey,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*Response, error) {
	modelName := "text-embedding-004"

	geminiReq := Request{
		Model: modelName,
		Content: RequestContent{
			Parts: []RequestContentPart{
				{
					Text: text,
				},
			},
		},
		TaskType: taskType,
	}
	geminiReqJson, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, &Error{Provider: "gemini", Err: err}
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:embedContent",
		modelName,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(geminiReqJson))
	if err != nil {
		return nil, &Error{Provider: "gemini", Err: err}
	}

	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, &Error{Provider: "gemini", Err: err}
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Provider: "gemini", Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &Error{Provider: "gemini", Err: fmt.Errorf("status %d: %s", res.StatusCode, string(resByte))}
	}

	var resEmbedding Response
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, &Error{Provider: "gemini", Err: err}
	}

	return &resEmbedding, nil
}
