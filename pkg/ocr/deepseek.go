package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrEmptyImage = errors.New("ocr: empty image")

type DeepseekOCR struct {
	apiKey   string
	url      string
	language string
	client   *http.Client
}

type ocrRequest struct {
	Image  string    `json:"image"`
	Tasks  []string  `json:"tasks"`
	Config ocrConfig `json:"config"`
}

type ocrConfig struct {
	Language string `json:"language"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

func NewDeepseekOCR(apiKey, url string, timeout time.Duration) *DeepseekOCR {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &DeepseekOCR{
		apiKey:   apiKey,
		url:      url,
		language: "por+eng",
		client:   &http.Client{Timeout: timeout},
	}
}

// ExtractText sends the image base64 encoded and returns the recognized text.
func (o *DeepseekOCR) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}

	body, err := json.Marshal(ocrRequest{
		Image:  base64.StdEncoding.EncodeToString(image),
		Tasks:  []string{"ocr"},
		Config: ocrConfig{Language: o.language},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ocr provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}
	return out.Text, nil
}
