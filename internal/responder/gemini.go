package responder

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

var harmCategories = map[HarmCategory]genai.HarmCategory{
	HarmDangerousContent: genai.HarmCategoryDangerousContent,
	HarmHarassment:       genai.HarmCategoryHarassment,
	HarmHateSpeech:       genai.HarmCategoryHateSpeech,
	HarmSexuallyExplicit: genai.HarmCategorySexuallyExplicit,
}

var blockThresholds = map[BlockThreshold]genai.HarmBlockThreshold{
	BlockNone:           genai.HarmBlockThresholdBlockNone,
	BlockOnlyHigh:       genai.HarmBlockThresholdBlockOnlyHigh,
	BlockMediumAndAbove: genai.HarmBlockThresholdBlockMediumAndAbove,
	BlockLowAndAbove:    genai.HarmBlockThresholdBlockLowAndAbove,
	BlockOff:            genai.HarmBlockThresholdOff,
}

// Gemini is a Generator backed by Gemini models on Vertex AI.
type Gemini struct {
	client *genai.Client
	logger *slog.Logger
}

// NewGemini loads service-account credentials and creates a Vertex AI client.
// Failures are wrapped in ErrInit and are not retried.
func NewGemini(ctx context.Context, cfg *Config, logger *slog.Logger) (*Gemini, error) {
	creds, err := LoadCredentials(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: load credentials: %w", ErrInit, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:     cfg.ProjectID,
		Location:    cfg.Location,
		Backend:     genai.BackendVertexAI,
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %w", ErrInit, err)
	}

	logger = logger.With("system", "gemini")
	logger.Info(
		"gemini client initialized",
		"project", cfg.ProjectID,
		"location", cfg.Location,
		"model", cfg.Model,
	)

	return &Gemini{
		client: client,
		logger: logger,
	}, nil
}

// LoadCredentials resolves credentials from inline JSON when set, otherwise
// from the credentials file.
func LoadCredentials(cfg *Config) (*auth.Credentials, error) {
	opts := &credentials.DetectOptions{
		Scopes: []string{cloudPlatformScope},
	}

	switch {
	case cfg.CredentialsJSON != "":
		opts.CredentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		opts.CredentialsFile = cfg.CredentialsFile
	default:
		return nil, fmt.Errorf("no credential source configured")
	}

	return credentials.DetectDefault(opts)
}

func (g *Gemini) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := g.client.Models.GenerateContentStream(
			ctx,
			req.Model,
			genai.Text(req.Prompt),
			GenerateConfig(req.Params, req.Safety),
		)

		chunks := 0
		for resp, err := range stream {
			if err != nil {
				yield("", err)
				return
			}
			chunks++
			if !yield(resp.Text(), nil) {
				return
			}
		}

		g.logger.DebugContext(ctx, "stream drained", "model", req.Model, "chunks", chunks)
	}
}

// GenerateConfig translates generation parameters and a safety policy into the
// Vertex AI request configuration. Safety settings are ordered by category.
func GenerateConfig(params GenerationParams, safety SafetyPolicy) *genai.GenerateContentConfig {
	settings := make([]*genai.SafetySetting, 0, len(safety))
	for _, c := range safety.Categories() {
		category, ok := harmCategories[c]
		if !ok {
			continue
		}
		threshold, ok := blockThresholds[safety[c]]
		if !ok {
			continue
		}
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: threshold,
		})
	}

	return &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(params.Temperature),
		TopP:           genai.Ptr(params.TopP),
		TopK:           genai.Ptr(params.TopK),
		SafetySettings: settings,
	}
}
