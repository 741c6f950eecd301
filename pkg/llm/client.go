// Package llm provides a client for interacting with Large Language Models.
package llm

import (
	"context"
	"errors"
	"fmt"

	"ai-resume-analyst/internal/config"
	"ai-resume-analyst/pkg/log"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ErrEmptyCompletion 表示接口没有返回任何候选结果。
var ErrEmptyCompletion = errors.New("chat api returned no choices")

// Client defines the interface for an LLM client.
type Client interface {
	// Chat 以 role-based 消息与可选生成参数调用聊天接口，返回完整回复文本。
	Chat(ctx context.Context, messages []Message, gen *GenerationParams) (string, error)
	// Complete 是只发送一条 user 消息的便捷形式。
	Complete(ctx context.Context, prompt string, gen *GenerationParams) (string, error)
}

// Message 表示一条角色消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams 控制生成行为
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// WithTemperature 返回只设置了温度的生成参数。
func WithTemperature(t float64) *GenerationParams {
	return &GenerationParams{Temperature: &t}
}

type openAIClient struct {
	cfg    config.LLMConfig
	client openai.Client
}

// NewClient creates a new LLM client for an OpenAI-compatible chat completion endpoint.
func NewClient(cfg config.LLMConfig) Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIClient{
		cfg:    cfg,
		client: openai.NewClient(opts...),
	}
}

func (c *openAIClient) Complete(ctx context.Context, prompt string, gen *GenerationParams) (string, error) {
	return c.Chat(ctx, []Message{{Role: "user", Content: prompt}}, gen)
}

func (c *openAIClient) Chat(ctx context.Context, messages []Message, gen *GenerationParams) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.cfg.Model),
		Messages: toOpenAIMessages(messages),
	}
	c.applyGeneration(&params, gen)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Errorf("[LLMClient] 调用 Chat API 失败, model: %s, error: %v", c.cfg.Model, err)
		return "", fmt.Errorf("failed to call chat api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// applyGeneration 从传参或全局配置注入生成参数（传参优先生效）。
func (c *openAIClient) applyGeneration(params *openai.ChatCompletionNewParams, gen *GenerationParams) {
	merged := GenerationParams{}
	if c.cfg.Generation.Temperature != 0 {
		t := c.cfg.Generation.Temperature
		merged.Temperature = &t
	}
	if c.cfg.Generation.TopP != 0 {
		p := c.cfg.Generation.TopP
		merged.TopP = &p
	}
	if c.cfg.Generation.MaxTokens != 0 {
		m := c.cfg.Generation.MaxTokens
		merged.MaxTokens = &m
	}
	if gen != nil {
		if gen.Temperature != nil {
			merged.Temperature = gen.Temperature
		}
		if gen.TopP != nil {
			merged.TopP = gen.TopP
		}
		if gen.MaxTokens != nil {
			merged.MaxTokens = gen.MaxTokens
		}
	}

	if merged.Temperature != nil {
		params.Temperature = openai.Float(*merged.Temperature)
	}
	if merged.TopP != nil {
		params.TopP = openai.Float(*merged.TopP)
	}
	if merged.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*merged.MaxTokens))
	}
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
