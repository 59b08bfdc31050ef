package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"
)

// WhisperClient talks to an OpenAI-compatible audio/transcriptions endpoint
// (api.openai.com or a self-hosted faster-whisper server).
type WhisperClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWhisperClient creates the Whisper STT backend. Per-request deadlines
// come from the caller's context.
func NewWhisperClient(endpoint, apiKey, model string, logger *zap.Logger) *WhisperClient {
	return &WhisperClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logger,
	}
}

type whisperResponse struct {
	Text string `json:"text"`
}

// Transcribe posts the container as a multipart upload. The hint goes into
// the prompt field, which primes the model's vocabulary.
func (w *WhisperClient) Transcribe(ctx context.Context, container []byte, hint string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fileWriter, err := writer.CreateFormFile("file", "segment.webm")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fileWriter.Write(container); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}

	fields := map[string]string{
		"model":           w.model,
		"response_format": "json",
	}
	if hint != "" {
		fields["prompt"] = hint
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	if w.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	response, err := w.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("transcription HTTP error %d: %s", response.StatusCode, string(responseBody))
	}

	var parsed whisperResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}

	w.logger.Debug("Whisper transcription completed",
		zap.Int("containerBytes", len(container)),
		zap.Int("textLength", len(parsed.Text)))

	return parsed.Text, nil
}
