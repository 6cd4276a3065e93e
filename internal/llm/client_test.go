package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeGenerator feeds scripted responses to the client and records every call.
type fakeGenerator struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	lastCfg   *genai.GenerateContentConfig
}

func (f *fakeGenerator) generateContent(_ context.Context, _ string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.lastCfg = cfg
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

type fakeSearcher struct {
	enabled bool
	queries []string
	result  string
	err     error
}

func (f *fakeSearcher) Enabled() bool { return f.enabled }

func (f *fakeSearcher) Search(_ context.Context, query, _ string) (string, error) {
	f.queries = append(f.queries, query)
	return f.result, f.err
}

func newTestClient(gen contentGenerator, searcher Searcher) *sdkClient {
	c := &sdkClient{
		searcher:      searcher,
		log:           testLogger,
		contentConfig: &genai.GenerateContentConfig{},
		modelName:     "test-model",
		imageModel:    "test-image-model",
		timeout:       time.Second,
		visionTimeout: time.Second,
		maxToolIters:  3,
	}
	c.generator = gen
	return c
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func functionCallResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{Name: name, Args: args}},
			}}},
		},
	}
}

func TestGenerate(t *testing.T) {
	gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse("answer")}}
	c := newTestClient(gen, nil)

	out, err := c.Generate(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, 1, gen.calls)
	require.NotNil(t, gen.lastCfg.SystemInstruction)
	assert.Equal(t, "system", gen.lastCfg.SystemInstruction.Parts[0].Text)
}

func TestGenerateEmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"empty text", textResponse("")},
		{"blocked prompt", &genai.GenerateContentResponse{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&fakeGenerator{responses: []*genai.GenerateContentResponse{tt.resp}}, nil)
			_, err := c.Generate(context.Background(), "", "prompt")
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestGenerateTimeout(t *testing.T) {
	gen := &fakeGenerator{errs: []error{context.DeadlineExceeded}, responses: []*genai.GenerateContentResponse{nil}}
	c := newTestClient(gen, nil)

	_, err := c.Generate(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGenerateOtherError(t *testing.T) {
	boom := errors.New("provider exploded")
	gen := &fakeGenerator{errs: []error{boom}, responses: []*genai.GenerateContentResponse{nil}}
	c := newTestClient(gen, nil)

	_, err := c.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateVisionValidatesInput(t *testing.T) {
	c := newTestClient(&fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse("x")}}, nil)

	_, err := c.GenerateVision(context.Background(), "", "prompt", "image/png", nil)
	assert.Error(t, err)

	_, err = c.GenerateVision(context.Background(), "", "prompt", "", []byte{1})
	assert.Error(t, err)
}

func TestGenerateVision(t *testing.T) {
	gen := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse("seen")}}
	c := newTestClient(gen, nil)

	out, err := c.GenerateVision(context.Background(), "sys", "what is this", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "seen", out)
}
