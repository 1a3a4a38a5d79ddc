// Package ocr extracts text from photos using Google's Gemini vision API.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/spamwatch/internal/config"
)

// transcriptionInstruction asks the model for a verbatim transcript only.
// Any commentary would pollute substring matching downstream.
const transcriptionInstruction = `Transcribe all visible text in the image exactly as written, preserving line breaks. Output only the transcribed text. If the image contains no text, output nothing.`

// Recognizer transcribes the text visible in an image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

type geminiRecognizer struct {
	client     *genai.Client
	log        *slog.Logger
	config     *genai.GenerateContentConfig
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// NewRecognizer creates a Gemini-backed Recognizer.
func NewRecognizer(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Recognizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	contentConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: transcriptionInstruction}},
		},
		// Spam screenshots routinely trip the default filters; transcription
		// must still go through.
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "ocr")
	logger.Info("OCR recognizer initialized", "model", cfg.ModelName)
	return &geminiRecognizer{
		client:     client,
		log:        logger,
		config:     contentConfig,
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// Recognize sends the image to the vision model and returns the transcript.
// An image with no visible text yields an empty string and no error.
func (r *geminiRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image data is required")
	}

	mimeType := http.DetectContentType(image)
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromBytes(image, mimeType)}, genai.RoleUser),
	}

	resp, err := r.generateWithRetries(ctx, contents)
	if err != nil {
		return "", err
	}

	return r.extractText(ctx, resp)
}

func (r *geminiRecognizer) generateWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= r.maxRetries; i++ {
		resp, err = r.client.Models.GenerateContent(ctx, r.modelName, contents, r.config)
		if err == nil {
			return resp, nil
		}

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < r.maxRetries {
				r.log.WarnContext(ctx, "Retrying transcription after retriable API error",
					"attempt", i+1, "code", apiErr.Code, "delay", r.retryDelay)
				time.Sleep(r.retryDelay)
				continue
			}
			return nil, fmt.Errorf("transcription failed after %d retries (code %d): %w", r.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	return nil, err
}

func (r *geminiRecognizer) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		r.log.ErrorContext(ctx, "Transcription request blocked", "reason", reason)
		return "", fmt.Errorf("transcription blocked by safety filter: %s", reason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonStop {
			// Model legitimately produced no text: image has nothing to read.
			return "", nil
		}
		return "", fmt.Errorf("transcription returned no content")
	}

	return resp.Text(), nil
}
