package service

import (
	"context"
	"time"

	"ai-resume-analyst/internal/model"
	"ai-resume-analyst/internal/repository"
)

// ConversationService 定义了会话历史业务逻辑的接口。
type ConversationService interface {
	GetConversationHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	AddExchange(ctx context.Context, sessionID, question, answer, intent string) error
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

func (s *conversationService) GetConversationHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	return s.repo.GetConversationHistory(ctx, sessionID)
}

// AddExchange 追加一轮问答到会话历史。
func (s *conversationService) AddExchange(ctx context.Context, sessionID, question, answer, intent string) error {
	history, err := s.repo.GetConversationHistory(ctx, sessionID)
	if err != nil {
		return err
	}
	now := time.Now()
	history = append(history,
		model.ChatMessage{Role: "user", Content: question, Timestamp: now},
		model.ChatMessage{Role: "assistant", Content: answer, Intent: intent, Timestamp: now},
	)
	return s.repo.UpdateConversationHistory(ctx, sessionID, history)
}
