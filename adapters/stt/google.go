package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
)

// GoogleSpeechToText transcribes complete WebM/Opus containers through the
// Google Cloud Speech batch Recognize API.
type GoogleSpeechToText struct {
	logger     *zap.Logger
	sampleRate int
	language   string
}

// NewGoogleSpeechToText creates the Google Cloud STT backend. Credentials are
// resolved through the standard GOOGLE_APPLICATION_CREDENTIALS mechanism.
func NewGoogleSpeechToText(logger *zap.Logger) *GoogleSpeechToText {
	return &GoogleSpeechToText{
		logger:     logger,
		sampleRate: 48000, // MediaRecorder default for Opus
		language:   "en-US",
	}
}

// Transcribe submits the container and returns the concatenated transcript.
// The hint is passed as a speech adaptation phrase.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, container []byte, hint string) (string, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	request := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz: int32(g.sampleRate),
			LanguageCode:    g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: container},
		},
	}
	if hint != "" {
		request.Config.SpeechContexts = []*speechpb.SpeechContext{
			{Phrases: []string{hint}},
		}
	}

	response, err := client.Recognize(ctx, request)
	if err != nil {
		return "", fmt.Errorf("recognize failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range response.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if transcript.Len() > 0 {
			transcript.WriteByte(' ')
		}
		transcript.WriteString(result.Alternatives[0].Transcript)
	}

	g.logger.Debug("Google recognize completed",
		zap.Int("containerBytes", len(container)),
		zap.Int("results", len(response.Results)))

	return transcript.String(), nil
}
