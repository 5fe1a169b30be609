package stt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/shekohex/voicetype/internal/types"
)

const defaultModel = "whisper-1"

// OpenAI implements Client using the OpenAI audio transcription API.
type OpenAI struct {
	mu      sync.RWMutex
	apiKey  string
	baseURL string
}

// NewOpenAI creates a client. baseURL is optional and defaults to the OpenAI
// endpoint; set it for compatible providers.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	return &OpenAI{apiKey: apiKey, baseURL: baseURL}
}

// UpdateCredentials swaps the API key and base URL, e.g. after the user
// edits settings.
func (c *OpenAI) UpdateCredentials(apiKey, baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = apiKey
	c.baseURL = baseURL
}

func (c *OpenAI) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimSpace(c.apiKey) != ""
}

// Transcribe uploads the audio file and returns the transcription text.
func (c *OpenAI) Transcribe(ctx context.Context, audio types.AudioFile, opts Options) (*Result, error) {
	c.mu.RLock()
	apiKey, baseURL := c.apiKey, c.baseURL
	c.mu.RUnlock()

	if strings.TrimSpace(apiKey) == "" {
		return nil, types.NewTranscriptionError(types.ErrAPIKeyMissing, nil)
	}

	f, err := os.Open(audio.Path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(reqOpts...)

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(model),
	}
	// The API rejects "auto"; an absent language means auto-detect.
	if opts.Language != "" && opts.Language != "auto" {
		params.Language = openai.String(opts.Language)
	}
	if opts.Prompt != "" {
		params.Prompt = openai.String(opts.Prompt)
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, classifyRequestError(err)
	}

	return &Result{
		Text:       strings.TrimSpace(resp.Text),
		Confidence: 1.0, // the API does not report confidence
	}, nil
}

// classifyRequestError maps an API failure onto the error taxonomy.
func classifyRequestError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return types.NewTranscriptionError(kindForStatus(apiErr.StatusCode), err)
	}
	// Transport-level failure: DNS, connect, timeout.
	return types.NewTranscriptionError(types.ErrNetwork, err)
}

func kindForStatus(status int) types.ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.ErrAuthentication
	case http.StatusTooManyRequests:
		return types.ErrRateLimited
	default:
		return types.ErrNetwork
	}
}
