package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const searchToolName = "web_search"

// searchToolDeclaration describes the web-search function offered to the model.
func searchToolDeclaration() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        searchToolName,
				Description: "搜尋網上最新資料。需要即時或近期資訊先至用。",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "搜尋關鍵字",
						},
						"time_range": {
							Type:        genai.TypeString,
							Description: "限制結果時間範圍: h=過去一小時, d=過去一日, w=過去一星期, m=過去一個月, y=過去一年",
							Enum:        []string{"h", "d", "w", "m", "y"},
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
}

// GenerateWithTools produces a completion with the web-search tool available.
// Each round trip that comes back with tool calls executes them and feeds the
// results back in; the loop is bounded so a model stuck calling tools cannot
// spin forever. Hitting the cap without a final answer is ErrToolLimit.
func (c *sdkClient) GenerateWithTools(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.searcher == nil || !c.searcher.Enabled() {
		return c.Generate(ctx, systemPrompt, userPrompt)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := c.withSystem(systemPrompt)
	cfg.Tools = []*genai.Tool{searchToolDeclaration()}

	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}

	for iter := 0; iter < c.maxToolIters; iter++ {
		resp, err := c.generator.generateContent(callCtx, c.modelName, contents, cfg)
		if err != nil {
			return "", c.classifyError(ctx, "tool_loop", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			return c.extractText(ctx, "tool_loop", resp)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", fmt.Errorf("tool_loop: %w", ErrEmptyResponse)
		}
		contents = append(contents, resp.Candidates[0].Content)

		responseParts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			result := c.executeToolCall(callCtx, call)
			responseParts = append(responseParts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{
				"result": result,
			}))
		}
		contents = append(contents, genai.NewContentFromParts(responseParts, genai.RoleUser))
	}

	c.log.WarnContext(ctx, "Tool loop hit iteration limit without a final answer", "max_iterations", c.maxToolIters)
	return "", fmt.Errorf("after %d iterations: %w", c.maxToolIters, ErrToolLimit)
}

// executeToolCall runs one tool invocation. Failures are reported back to the
// model as text so it can answer from its own knowledge instead of aborting
// the whole request.
func (c *sdkClient) executeToolCall(ctx context.Context, call *genai.FunctionCall) string {
	if call.Name != searchToolName {
		c.log.WarnContext(ctx, "Model requested unknown tool", "tool", call.Name)
		return fmt.Sprintf("未知工具: %s", call.Name)
	}

	query, _ := call.Args["query"].(string)
	timeRange, _ := call.Args["time_range"].(string)

	c.log.InfoContext(ctx, "Executing search tool call", "query", query, "time_range", timeRange)

	result, err := c.searcher.Search(ctx, query, timeRange)
	if err != nil {
		c.log.WarnContext(ctx, "Search tool call failed", "query", query, "error", err)
		return "搜尋失敗，請根據你已知嘅資料回答"
	}
	return result
}
