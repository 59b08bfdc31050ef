package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestWhisperTranscribe(t *testing.T) {
	var gotModel, gotPrompt, gotAuth string
	var gotFileBytes int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotPrompt = r.FormValue("prompt")
		gotAuth = r.Header.Get("Authorization")

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Missing file part: %v", err)
		}
		defer file.Close()
		buf := make([]byte, 64*1024)
		for {
			n, readErr := file.Read(buf)
			gotFileBytes += n
			if readErr != nil {
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "Let's review the Q3 budget."}`))
	}))
	defer server.Close()

	client := NewWhisperClient(server.URL, "test-key", "whisper-1", zap.NewNop())

	container := make([]byte, 25_000)
	text, err := client.Transcribe(context.Background(), container, "This is a business call.")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "Let's review the Q3 budget." {
		t.Errorf("Unexpected transcript %q", text)
	}
	if gotModel != "whisper-1" {
		t.Errorf("Expected model whisper-1, got %q", gotModel)
	}
	if gotPrompt != "This is a business call." {
		t.Errorf("Expected the hint as prompt, got %q", gotPrompt)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotFileBytes != len(container) {
		t.Errorf("Expected %d uploaded bytes, got %d", len(container), gotFileBytes)
	}
}

func TestWhisperTranscribeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewWhisperClient(server.URL, "test-key", "whisper-1", zap.NewNop())

	if _, err := client.Transcribe(context.Background(), []byte{0x01}, ""); err == nil {
		t.Error("Expected an error on HTTP 503")
	}
}

func TestWhisperTranscribeMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewWhisperClient(server.URL, "", "whisper-1", zap.NewNop())

	if _, err := client.Transcribe(context.Background(), []byte{0x01}, ""); err == nil {
		t.Error("Expected an error on a malformed response body")
	}
}
