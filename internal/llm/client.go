// Package llm wraps the Gemini API behind the gateway interface the
// handlers use: fail-fast calls with a hard timeout, a bounded search tool
// loop, and a response-validation step that turns "HTTP success, no usable
// content" into a distinct error.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/tszkin/gabbot/internal/config"
)

// Error taxonomy for failed generations. Callers render different user-facing
// text per kind but never leak raw provider errors into chat.
var (
	// ErrEmptyResponse marks an API call that succeeded but carried no
	// usable content.
	ErrEmptyResponse = errors.New("model returned no usable content")
	// ErrTimeout marks a call that exceeded the request deadline.
	ErrTimeout = errors.New("model request timed out")
	// ErrToolLimit marks a tool loop that hit the iteration cap without a
	// final answer.
	ErrToolLimit = errors.New("tool loop reached iteration limit")
)

// Searcher is the slice of the search collaborator the tool loop needs.
type Searcher interface {
	Enabled() bool
	Search(ctx context.Context, query, timeRange string) (string, error)
}

// Client defines the gateway interface for AI operations.
type Client interface {
	// Generate produces a plain text completion.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// GenerateWithTools produces a completion with the web-search tool
	// available, looping over tool invocations up to a fixed cap.
	GenerateWithTools(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// GenerateVision produces a completion over a prompt plus image bytes.
	GenerateVision(ctx context.Context, systemPrompt, userPrompt, mimeType string, imageData []byte) (string, error)

	// GenerateImage produces image bytes for the prompt.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// contentGenerator abstracts the raw model call so the tool loop and error
// classification can be tested without the SDK.
type contentGenerator interface {
	generateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	generator     contentGenerator
	searcher      Searcher
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	imageModel    string
	timeout       time.Duration
	visionTimeout time.Duration
	maxToolIters  int
}

// NewClient creates the Gemini-backed gateway.
func NewClient(ctx context.Context, cfg config.AIConfig, searcher Searcher, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "llm_client")
	c := &sdkClient{
		genaiClient:   gi,
		searcher:      searcher,
		log:           logger,
		contentConfig: baseCfg,
		modelName:     cfg.Model,
		imageModel:    cfg.ImageModel,
		timeout:       cfg.Timeout,
		visionTimeout: cfg.VisionTimeout,
		maxToolIters:  cfg.MaxToolIterations,
	}
	c.generator = c

	logger.Info("LLM client initialized", "model", cfg.Model, "image_model", cfg.ImageModel,
		"search_tool", searcher != nil && searcher.Enabled())
	return c, nil
}

func (c *sdkClient) generateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.genaiClient.Models.GenerateContent(ctx, model, contents, cfg)
}

// withSystem returns a copy of the base config carrying the system prompt.
func (c *sdkClient) withSystem(systemPrompt string) *genai.GenerateContentConfig {
	copyCfg := *c.contentConfig
	if systemPrompt != "" {
		copyCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}
	return &copyCfg
}

// Generate produces a plain text completion.
func (c *sdkClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}

	resp, err := c.generator.generateContent(callCtx, c.modelName, contents, c.withSystem(systemPrompt))
	if err != nil {
		return "", c.classifyError(ctx, "generate", err)
	}

	return c.extractText(ctx, "generate", resp)
}

// GenerateVision produces a completion over a prompt plus image bytes.
func (c *sdkClient) GenerateVision(ctx context.Context, systemPrompt, userPrompt, mimeType string, imageData []byte) (string, error) {
	if len(imageData) == 0 || mimeType == "" {
		return "", fmt.Errorf("image data and MIME type are required for vision analysis")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.visionTimeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(userPrompt),
			genai.NewPartFromBytes(imageData, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.generator.generateContent(callCtx, c.modelName, contents, c.withSystem(systemPrompt))
	if err != nil {
		return "", c.classifyError(ctx, "vision", err)
	}

	return c.extractText(ctx, "vision", resp)
}

// GenerateImage produces image bytes for the prompt.
func (c *sdkClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.genaiClient.Models.GenerateImages(callCtx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, c.classifyError(ctx, "image", err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		c.log.WarnContext(ctx, "Image generation returned no image data")
		return nil, fmt.Errorf("image generation: %w", ErrEmptyResponse)
	}

	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// classifyError maps transport failures into the gateway taxonomy.
func (c *sdkClient) classifyError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		c.log.WarnContext(ctx, "Model call timed out", "operation", op, "timeout", c.timeout)
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	c.log.ErrorContext(ctx, "Model call failed", "operation", op, "error", err)
	return fmt.Errorf("%s call failed: %w", op, err)
}

// extractText validates the response and returns its text. A success status
// without usable content is ErrEmptyResponse, distinct from transport errors.
func (c *sdkClient) extractText(ctx context.Context, op string, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Model request blocked", "operation", op, "reason", reasonMsg)
		return "", fmt.Errorf("%s blocked by safety filter: %w", op, ErrEmptyResponse)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Model response missing candidates or content", "operation", op, "finish_reason", finishReason)
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	text := resp.Text()
	if text == "" {
		c.log.WarnContext(ctx, "Model response text is empty", "operation", op)
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	return text, nil
}
