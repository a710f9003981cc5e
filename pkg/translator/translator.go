package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultSystemPrompt = "You are a professional restaurant menu translator. " +
	"Translate the menu from {from} to {to}. Keep dish names that are proper nouns, " +
	"preserve prices, line breaks and section headings, and return only the translated menu."

var ErrEmptyResponse = errors.New("translator: empty response")

var languageNames = map[string]string{
	"auto": "the detected source language",
	"pt":   "Portuguese",
	"en":   "English",
	"es":   "Spanish",
	"fr":   "French",
	"de":   "German",
	"it":   "Italian",
	"ja":   "Japanese",
	"zh":   "Chinese",
	"ru":   "Russian",
	"ar":   "Arabic",
}

// LanguageName maps a language code to the name sent to the model.
// Unknown codes are passed through unchanged.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	SystemPrompt string
}

// OpenAITranslator talks to any OpenAI compatible chat completion API (DeepSeek by default).
type OpenAITranslator struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

func NewOpenAITranslator(cfg Config) *OpenAITranslator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}

	return &OpenAITranslator{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: prompt,
	}
}

// buildPrompt fills the {from} and {to} placeholders. A prompt that names
// neither gets the language pair appended so the target always reaches the model.
func buildPrompt(prompt, from, to string) string {
	fromName, toName := LanguageName(from), LanguageName(to)
	if !strings.Contains(prompt, "{from}") && !strings.Contains(prompt, "{to}") {
		return strings.TrimSpace(prompt) + "\n\nSource language: " + fromName + ". Target language: " + toName + "."
	}
	return strings.NewReplacer("{from}", fromName, "{to}", toName).Replace(prompt)
}

func (t *OpenAITranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	prompt := buildPrompt(t.systemPrompt, from, to)

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("translator: %s -> %s: %w", from, to, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
