package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ai-resume-analyst/internal/service"
	"ai-resume-analyst/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	welcomeMessage = "👋 Welcome to the AI Resume Analyst! I can help you with:\n\n" +
		"- 📋 Resume searches and candidate matching\n" +
		"- 📊 Resume summaries\n" +
		"- 📅 Availability checks\n" +
		"- 🎯 Talent gap analysis\n\n" +
		"Ask me anything about resumes and candidates!"
	processingMessage = "🤔 Processing your query..."
	// errorMessage 不包含任何内部错误细节。
	errorMessage = "❌ An error occurred while processing your query.\n\nPlease try again or rephrase your question."
)

// 服务端推送的消息类型
const (
	frameWelcome    = "welcome"
	frameProcessing = "processing"
	frameAnswer     = "answer"
	frameError      = "error"
	frameCompletion = "completion"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// ChatFrame 是推送给聊天前端的一条 JSON 消息。
type ChatFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Intent    string `json:"intent,omitempty"`
	Status    string `json:"status,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
}

// ChatHandler 负责处理 WebSocket 聊天连接。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Handle 处理一个传入的 WebSocket 连接。
// 可通过 ?session_id= 续接已有会话，否则分配新的会话 ID。
func (h *ChatHandler) Handle(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("[ChatHandler] WebSocket 连接已建立, SessionID: %s", sessionID)
	if err := writeFrame(conn, ChatFrame{Type: frameWelcome, SessionID: sessionID, Content: welcomeMessage}); err != nil {
		log.Warnf("[ChatHandler] 发送欢迎消息失败: %v", err)
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}
		query := strings.TrimSpace(string(message))
		if query == "" {
			continue
		}
		log.Infof("[ChatHandler] 收到 WebSocket 消息, SessionID: %s, Query: %s", sessionID, query)

		if err := writeFrame(conn, ChatFrame{Type: frameProcessing, SessionID: sessionID, Content: processingMessage}); err != nil {
			break
		}

		state, err := h.chatService.Ask(c.Request.Context(), sessionID, query)
		if err != nil {
			log.Errorf("[ChatHandler] 处理查询失败, SessionID: %s, Error: %v", sessionID, err)
			_ = writeFrame(conn, ChatFrame{Type: frameError, SessionID: sessionID, Content: errorMessage})
		} else {
			_ = writeFrame(conn, ChatFrame{
				Type:      frameAnswer,
				SessionID: sessionID,
				Content:   state.Answer,
				Intent:    string(state.Intent),
			})
		}
		if err := writeFrame(conn, ChatFrame{Type: frameCompletion, SessionID: sessionID, Status: "finished"}); err != nil {
			break
		}
	}
}

func writeFrame(conn *websocket.Conn, frame ChatFrame) error {
	now := time.Now()
	frame.Timestamp = now.UnixMilli()
	frame.Date = now.Format("2006-01-02T15:04:05")
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}
