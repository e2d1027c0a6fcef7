package image

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"shotcraft/internal/domain"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func responseWith(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

func inline(mime string, data string) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: []byte(data)}}
}

func twoImages() []InputImage {
	return []InputImage{
		{Data: []byte("first"), MIMEType: "image/png"},
		{Data: []byte("second"), MIMEType: "image/jpeg"},
	}
}

func TestNewGeminiGeneratorRequiresAPIKey(t *testing.T) {
	g, err := NewGeminiGenerator(context.Background(), GeminiOptions{APIKey: "  "})
	require.Error(t, err)
	assert.Nil(t, g)
	assert.True(t, errors.Is(err, domain.ErrMissingCredential))
}

func TestGenerateBuildsSingleRequest(t *testing.T) {
	fake := &fakeModels{resp: responseWith(inline("image/png", "out"))}
	g := newGeminiGenerator(fake, "", nil)

	_, err := g.Generate(context.Background(), twoImages(), "compose these")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, DefaultModel, fake.model)
	require.Len(t, fake.contents, 1)
	parts := fake.contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("first"), parts[0].InlineData.Data)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("second"), parts[1].InlineData.Data)
	assert.Equal(t, "compose these", parts[2].Text)
	assert.Equal(t, []string{"IMAGE", "TEXT"}, fake.config.ResponseModalities)
}

func TestGenerateParsesResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		wantURI string
	}{
		{name: "nil response", resp: nil},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "candidate without content", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{name: "text only", resp: responseWith(&genai.Part{Text: "sorry"})},
		{name: "inline without data", resp: responseWith(inline("image/png", ""))},
		{
			name:    "first inline image wins",
			resp:    responseWith(&genai.Part{Text: "here you go"}, inline("image/png", "one"), inline("image/jpeg", "two")),
			wantURI: "data:image/png;base64,b25l",
		},
		{
			name: "only the first candidate is inspected",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "none"}}}},
				{Content: &genai.Content{Parts: []*genai.Part{inline("image/png", "later")}}},
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGeminiGenerator(&fakeModels{resp: tc.resp}, "test-model", nil)
			got, err := g.Generate(context.Background(), twoImages(), "p")
			require.NoError(t, err)
			if tc.wantURI == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.wantURI, got.DataURI)
			assert.Equal(t, "image/png", got.MIMEType)
			assert.Equal(t, []byte("one"), got.Data)
		})
	}
}

func TestGenerateWrapsProviderFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	g := newGeminiGenerator(&fakeModels{err: cause}, "", nil)

	got, err := g.Generate(context.Background(), twoImages(), "p")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, "Failed to generate image: quota exceeded", err.Error())
	assert.True(t, errors.Is(err, domain.ErrProviderFailure))
	assert.True(t, errors.Is(err, cause))

	ge, ok := AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, "quota exceeded", ge.Detail)
}

func TestGenerateUsesAPIErrorMessage(t *testing.T) {
	g := newGeminiGenerator(&fakeModels{err: genai.APIError{Code: 429, Message: "Resource has been exhausted"}}, "", nil)

	_, err := g.Generate(context.Background(), twoImages(), "p")
	require.Error(t, err)
	assert.Equal(t, "Failed to generate image: Resource has been exhausted", err.Error())
}

func TestGenerateWithoutImagesSkipsProvider(t *testing.T) {
	fake := &fakeModels{}
	g := newGeminiGenerator(fake, "", nil)

	_, err := g.Generate(context.Background(), nil, "p")
	assert.True(t, errors.Is(err, domain.ErrNoImages))
	assert.Zero(t, fake.calls)
}

func TestGenerationErrorWithoutDetail(t *testing.T) {
	err := &GenerationError{}
	assert.Equal(t, "An unknown error occurred during image generation.", err.Error())
	assert.True(t, errors.Is(err, domain.ErrProviderFailure))
}

func TestInputFromDataURI(t *testing.T) {
	in, err := InputFromDataURI("data:image/webp;base64,AQI=")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", in.MIMEType)
	assert.Equal(t, []byte{0x01, 0x02}, in.Data)
	assert.Equal(t, "AQI=", in.Base64())

	_, err = InputFromDataURI("not a uri")
	assert.Error(t, err)
}
