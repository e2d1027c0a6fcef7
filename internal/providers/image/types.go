package image

import (
	"context"
	"encoding/base64"
	"errors"

	"shotcraft/internal/domain"
	"shotcraft/pkg/datauri"
)

// InputImage is one conditioning image sent with a generation request.
type InputImage struct {
	Data     []byte
	MIMEType string
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i InputImage) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// InputFromDataURI decodes a base64 data URI into an InputImage.
func InputFromDataURI(uri string) (InputImage, error) {
	mimeType, data, err := datauri.Parse(uri)
	if err != nil {
		return InputImage{}, err
	}
	return InputImage{Data: data, MIMEType: mimeType}, nil
}

// Result is the first usable image found in a model response.
type Result struct {
	DataURI  string
	MIMEType string
	Data     []byte
}

// Generator issues a single generation attempt. A nil Result with a nil error
// means the model answered without any usable image.
type Generator interface {
	Generate(ctx context.Context, images []InputImage, prompt string) (*Result, error)
}

// GenerationError reports a failed call to the model provider.
type GenerationError struct {
	// Detail is the provider's own description of the failure, possibly empty.
	Detail string
	Cause  error
}

func (e *GenerationError) Error() string {
	if e.Detail == "" {
		return "An unknown error occurred during image generation."
	}
	return "Failed to generate image: " + e.Detail
}

func (e *GenerationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{domain.ErrProviderFailure}
	}
	return []error{domain.ErrProviderFailure, e.Cause}
}

// AsGenerationError is errors.As for *GenerationError.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
