package service

import (
	"context"

	"ai-resume-analyst/internal/agent"
	"ai-resume-analyst/pkg/log"
)

// QueryAgent 执行一次意图路由问答。
type QueryAgent interface {
	Invoke(ctx context.Context, query string) (*agent.State, error)
}

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// Ask 回答一条消息并记录到会话历史；历史只用于展示，不作为 Agent 的上下文。
	Ask(ctx context.Context, sessionID, query string) (*agent.State, error)
}

type chatService struct {
	agent         QueryAgent
	conversations ConversationService
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(queryAgent QueryAgent, conversations ConversationService) ChatService {
	return &chatService{agent: queryAgent, conversations: conversations}
}

func (s *chatService) Ask(ctx context.Context, sessionID, query string) (*agent.State, error) {
	state, err := s.agent.Invoke(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.conversations != nil && sessionID != "" {
		// 使用后台上下文，即使连接已断开也保存已经生成的答案
		if err := s.conversations.AddExchange(context.Background(), sessionID, query, state.Answer, string(state.Intent)); err != nil {
			log.Errorf("Failed to save conversation history: %v", err)
		}
	}
	return state, nil
}
