package agent

import (
	"context"
	"fmt"

	"ai-resume-analyst/pkg/llm"
	"ai-resume-analyst/pkg/log"
)

// Classifier 用一次 LLM 调用把查询映射到意图。
type Classifier struct {
	llm llm.Client
}

// NewClassifier 创建意图分类器。
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{llm: client}
}

// Classify 返回查询的意图；模型输出不在集合内时返回 IntentUnknown 而不是错误。
func (c *Classifier) Classify(ctx context.Context, query string) (Intent, error) {
	raw, err := c.llm.Complete(ctx, fmt.Sprintf(intentPrompt, query), llm.WithTemperature(classifierTemperature))
	if err != nil {
		return IntentUnknown, fmt.Errorf("classify intent: %w", err)
	}
	log.Debugf("[Classifier] 模型原始输出: %q", raw)
	intent := ParseIntent(raw)
	if intent == IntentUnknown {
		log.Warnf("[Classifier] 模型返回了未知意图: %q", raw)
	}
	return intent, nil
}
