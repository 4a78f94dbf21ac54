package biz

import (
	"context"
	stderrors "errors"

	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/docuchat/store"
	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/pkg/utils/errors"
	"github.com/kart-io/docuchat/pkg/utils/id"
)

// ChatConfig 会话编排配置。
type ChatConfig struct {
	// MaxHistoryMessages 参与合成的最近历史消息数。
	MaxHistoryMessages int
}

// CompletionResult 是一次补全的返回。
type CompletionResult struct {
	Message *model.ChatMessage `json:"message"`
	Sources []Source           `json:"sources"`
}

// ChatService 编排一次补全：鉴权、取历史、检索、合成、落库。
type ChatService struct {
	factory     store.Factory
	retriever   *Retriever
	synthesizer *Synthesizer
	config      *ChatConfig
}

// NewChatService 创建会话服务实例。
func NewChatService(factory store.Factory, retriever *Retriever, synthesizer *Synthesizer, config *ChatConfig) *ChatService {
	return &ChatService{
		factory:     factory,
		retriever:   retriever,
		synthesizer: synthesizer,
		config:      config,
	}
}

// Completion 处理一次用户提问并返回助手回复。
// 鉴权链：会话存在 → 会话属于当前用户 → Agent 的项目属于当前租户。
func (s *ChatService) Completion(ctx context.Context, userID, tenantID, sessionID, message string) (*CompletionResult, error) {
	session, err := s.factory.Sessions().Get(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrSessionNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	if session.UserID != userID {
		return nil, errors.ErrForbidden
	}

	agent, err := s.factory.Agents().Get(ctx, session.AgentID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAgentNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}

	project, err := s.factory.Projects().Get(ctx, agent.ProjectID, tenantID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProjectNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}

	history, err := s.factory.Messages().ListRecent(ctx, sessionID, s.config.MaxHistoryMessages)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	retrieved, err := s.retriever.Retrieve(ctx, project.ID, message)
	if err != nil {
		// 检索失败与提供方失败同样降级，不让一次提问失败
		logger.Errorw("上下文检索失败，按空上下文继续", "session_id", sessionID, "error", err.Error())
		retrieved = nil
	}

	answer := s.synthesizer.Synthesize(ctx, message, history, retrieved)

	sources := make(model.JSONArray, len(answer.Sources))
	for i, src := range answer.Sources {
		sources[i] = src
	}
	assistantMsg := &model.ChatMessage{
		ID:            id.New(),
		ChatSessionID: sessionID,
		Role:          model.RoleAssistant,
		Content:       answer.Content,
		Sources:       sources,
	}
	if err := s.factory.Messages().Create(ctx, assistantMsg); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	if err := s.factory.Sessions().Touch(ctx, sessionID); err != nil {
		logger.Warnw("更新会话时间失败", "session_id", sessionID, "error", err.Error())
	}

	return &CompletionResult{Message: assistantMsg, Sources: answer.Sources}, nil
}

// CreateSession 在指定 Agent 下创建会话，校验 Agent 归属当前租户。
func (s *ChatService) CreateSession(ctx context.Context, userID, tenantID, agentID, title string) (*model.ChatSession, error) {
	agent, err := s.factory.Agents().Get(ctx, agentID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAgentNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	if _, err := s.factory.Projects().Get(ctx, agent.ProjectID, tenantID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProjectNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}

	if title == "" {
		title = model.DefaultSessionTitle
	}
	session := &model.ChatSession{
		ID:      id.New(),
		UserID:  userID,
		AgentID: agentID,
		Title:   title,
	}
	if err := s.factory.Sessions().Create(ctx, session); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return session, nil
}

// ListSessions 返回用户在指定 Agent 下的会话，最新在前。
func (s *ChatService) ListSessions(ctx context.Context, userID, agentID string) ([]*model.ChatSession, error) {
	list, err := s.factory.Sessions().List(ctx, userID, agentID)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// ListMessages 返回会话全部消息（时间正序），仅会话属主可见。
func (s *ChatService) ListMessages(ctx context.Context, userID, sessionID string) ([]*model.ChatMessage, error) {
	if err := s.authorizeSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	list, err := s.factory.Messages().List(ctx, sessionID)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// PostMessage 向会话追加一条用户消息。
func (s *ChatService) PostMessage(ctx context.Context, userID, sessionID, content string) (*model.ChatMessage, error) {
	if content == "" {
		return nil, errors.ErrChatEmptyMessage
	}
	if err := s.authorizeSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		ID:            id.New(),
		ChatSessionID: sessionID,
		Role:          model.RoleUser,
		Content:       content,
	}
	if err := s.factory.Messages().Create(ctx, msg); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	if err := s.factory.Sessions().Touch(ctx, sessionID); err != nil {
		logger.Warnw("更新会话时间失败", "session_id", sessionID, "error", err.Error())
	}
	return msg, nil
}

func (s *ChatService) authorizeSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.factory.Sessions().Get(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrSessionNotFound
		}
		return errors.ErrDatabase.WithCause(err)
	}
	if session.UserID != userID {
		return errors.ErrForbidden
	}
	return nil
}
