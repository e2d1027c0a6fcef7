package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"shotcraft/internal/domain"
	"shotcraft/internal/infra"
	"shotcraft/pkg/datauri"
)

// DefaultModel is the image-capable Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash-image-preview"

const roleUser = "user"

// ContentGenerator is the part of the genai SDK the generator needs.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOptions controls how the Gemini generator is configured.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// GeminiGenerator sends images plus a prompt to Gemini and extracts the first
// inline image of the reply.
type GeminiGenerator struct {
	models ContentGenerator
	model  string
	logger zerolog.Logger
}

// NewGeminiGenerator builds a generator backed by the Gemini API. The API key
// is mandatory.
func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, fmt.Errorf("gemini: %w", domain.ErrMissingCredential)
	}

	cfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return newGeminiGenerator(client.Models, opts.Model, opts.Logger), nil
}

func newGeminiGenerator(models ContentGenerator, model string, logger *infra.Logger) *GeminiGenerator {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &GeminiGenerator{
		models: models,
		model:  model,
		logger: logger.With().Str("component", "gemini").Str("model", model).Logger(),
	}
}

// Model reports the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate performs exactly one GenerateContent call. Images are sent first,
// in order, followed by the prompt text.
func (g *GeminiGenerator) Generate(ctx context.Context, images []InputImage, prompt string) (*Result, error) {
	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	contents := []*genai.Content{{Role: roleUser, Parts: parts}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
	}

	g.logger.Debug().
		Int("image_parts", len(images)).
		Int("prompt_length", len(prompt)).
		Msg("calling generate content")

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	duration := time.Since(start)
	if err != nil {
		g.logger.Error().Err(err).Dur("duration", duration).Msg("generate content failed")
		return nil, &GenerationError{Detail: failureDetail(err), Cause: err}
	}

	result := firstInlineImage(resp)
	if result == nil {
		g.logger.Warn().Dur("duration", duration).Msg("response carried no inline image")
		return nil, nil
	}

	g.logger.Info().
		Str("mime", result.MIMEType).
		Int("bytes", len(result.Data)).
		Dur("duration", duration).
		Msg("image generated")
	return result, nil
}

// firstInlineImage inspects only the first candidate and returns its first
// part carrying inline data.
func firstInlineImage(resp *genai.GenerateContentResponse) *Result {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil
	}
	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil {
			continue
		}
		blob := part.InlineData
		if len(blob.Data) == 0 || blob.MIMEType == "" {
			continue
		}
		return &Result{
			DataURI:  datauri.Format(blob.MIMEType, blob.Data),
			MIMEType: blob.MIMEType,
			Data:     blob.Data,
		}
	}
	return nil
}

func failureDetail(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Message != "" {
		return apiErrPtr.Message
	}
	return err.Error()
}

var _ Generator = (*GeminiGenerator)(nil)
