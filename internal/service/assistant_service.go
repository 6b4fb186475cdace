package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cara-compliance-be/internal/config"
	"cara-compliance-be/internal/constant"
	"cara-compliance-be/internal/dto"
	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/repository/specification"
	"cara-compliance-be/internal/repository/unitofwork"
	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/assist/compose"
	"cara-compliance-be/pkg/assist/retrieval"
	"cara-compliance-be/pkg/assist/router"
	"cara-compliance-be/pkg/assist/workflow"
	"cara-compliance-be/pkg/assist/workflow/riskscore"
	"cara-compliance-be/pkg/embedding"
	"cara-compliance-be/pkg/llm"
	"cara-compliance-be/pkg/store"
)

const historyWindow = 20

// IAssistantService defines the compliance assistant interface
type IAssistantService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
	GetModules(ctx context.Context) []*dto.ModuleResponse
}

// assistantService coordinates the router, retrieval pipeline, workflow
// engine, and composer for every chat turn.
type assistantService struct {
	uowFactory unitofwork.RepositoryFactory
	replyCache IReplyCache
	pipeLogger *log.Logger

	moduleRouter *router.Router
	pipeline     *retrieval.Pipeline
	engine       *workflow.Engine
	definitions  map[assist.ModuleTag]workflow.Definition
	composer     *compose.Composer

	topK       int
	scoreFloor float64
}

// NewAssistantService wires the chat turn components. The workflow
// store decides where wizard state lives (SQL or process memory).
func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	llmProvider llm.Provider,
	workflowStore workflow.Store,
	replyCache IReplyCache,
	scorer riskscore.Strategy,
	cfg config.RetrievalConfig,
) IAssistantService {
	pipeLogger := initPipelineLogger()

	if scorer == nil {
		scorer = riskscore.NewMatrixStrategy()
	}

	return &assistantService{
		uowFactory:   uowFactory,
		replyCache:   replyCache,
		pipeLogger:   pipeLogger,
		moduleRouter: router.New(router.DefaultRuleset(), pipeLogger),
		pipeline:     retrieval.NewPipeline(embeddingProvider, NewVectorSearcher(uowFactory), pipeLogger),
		engine:       workflow.NewEngine(workflowStore, pipeLogger),
		definitions:  workflow.Definitions(scorer),
		composer:     compose.NewComposer(llmProvider, pipeLogger, 0),
		topK:         cfg.TopK,
		scoreFloor:   cfg.ScoreFloor,
	}
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "assist_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[ASSIST] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// CreateSession creates a new chat session with a greeting turn.
func (as *assistantService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "Unnamed session",
		CreatedAt: now,
	}

	greeting := entity.ConversationTurn{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Seq:           1,
		Role:          constant.ChatMessageRoleModel,
		Text:          "Hi, I'm CARA. Ask me about ISO 27001, risk, audits, policies, or security, or say \"risk assessment\" to start a guided one.",
		Module:        string(assist.ModuleGeneral),
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ConversationTurnRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

// GetAllSessions retrieves all chat sessions owned by the user
func (as *assistantService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

// GetChatHistory retrieves chat history for a session
func (as *assistantService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	sess, err := as.verifySession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	turns, err := uow.ConversationTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sess.Id},
		specification.OrderBy{Field: "seq", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(turns))
	for _, t := range turns {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        t.Id,
			Role:      t.Role,
			Chat:      t.Text,
			Module:    t.Module,
			Citations: t.Citations,
			CreatedAt: t.CreatedAt,
		})
	}

	return resp, nil
}

// SendChat processes one user message and returns the assistant reply.
func (as *assistantService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := as.verifySession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	// Route first: an in-progress wizard pins the module so its answers
	// never leak into keyword matching.
	prior, err := as.findActiveWorkflow(ctx, uow, chatSession.Id)
	if err != nil {
		return nil, err
	}
	module := as.moduleRouter.Route(request.Chat, prior)

	now := time.Now()
	var (
		reply    *compose.Reply
		tr       *workflow.Transition
		degraded bool
		cached   bool
		cacheKey string
		snippets []store.Snippet
	)

	def, isWizard := as.definitions[module]
	if isWizard {
		tr, err = as.engine.Resume(ctx, def, chatSession.Id, request.Chat)
		if err != nil {
			return nil, err
		}
		reply, err = as.composer.Respond(ctx, compose.Input{Module: module, Workflow: tr})
		if err != nil {
			return nil, err
		}
	} else {
		cacheKey = ReplyCacheKey(userId, string(module), request.Chat)
		if hit, ok := as.replyCache.Get(ctx, cacheKey); ok {
			reply = &compose.Reply{Text: hit.Reply, Citations: hit.Citations}
			cached = true
		} else {
			snippets, degraded, err = as.retrieve(ctx, request.Chat, module)
			if err != nil {
				return nil, err
			}

			history, herr := as.loadHistory(ctx, uow, chatSession.Id)
			if herr != nil {
				return nil, herr
			}

			reply, err = as.composer.Respond(ctx, compose.Input{
				Module:   module,
				Message:  request.Chat,
				Snippets: snippets,
				History:  history,
				Degraded: degraded,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	sent, replied, err := as.persistTurns(ctx, uow, chatSession, module, request.Chat, reply, now)
	if err != nil {
		return nil, err
	}

	// Cache only clean knowledge replies
	if !isWizard && !cached && !degraded && !reply.FromFallback {
		as.replyCache.Set(ctx, cacheKey, &store.CachedReply{
			Reply:     reply.Text,
			Module:    string(module),
			Citations: reply.Citations,
		})
	}

	resp := &dto.SendChatResponse{
		ChatSessionId:    chatSession.Id,
		ChatSessionTitle: chatSession.Title,
		Module:           string(module),
		Sent:             sent,
		Reply:            replied,
		Cached:           cached,
		Degraded:         degraded,
	}
	if tr != nil {
		resp.WorkflowActive = tr.State.Status == workflow.StatusInProgress
		resp.WorkflowComplete = tr.Completed
	}
	return resp, nil
}

// DeleteSession removes a session with its turns and wizard state.
func (as *assistantService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	sess, err := as.verifySession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConversationTurnRepository().DeleteByChatSessionId(ctx, sess.Id); err != nil {
		return err
	}
	if err := uow.WorkflowStateRepository().DeleteByChatSessionId(ctx, sess.Id); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sess.Id); err != nil {
		return err
	}

	return uow.Commit()
}

// GetModules lists the module catalog.
func (as *assistantService) GetModules(ctx context.Context) []*dto.ModuleResponse {
	catalog := assist.Catalog()
	resp := make([]*dto.ModuleResponse, 0, len(catalog))
	for _, m := range catalog {
		resp = append(resp, &dto.ModuleResponse{
			Tag:         string(m.Tag),
			Name:        m.Name,
			Description: m.Description,
			Wizard:      m.Wizard,
		})
	}
	return resp
}

func (as *assistantService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return sess, nil
}

func (as *assistantService) findActiveWorkflow(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (*workflow.State, error) {
	states, err := uow.WorkflowStateRepository().FindActiveBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, nil
	}
	// One live wizard per session in practice; take the newest if not.
	latest := states[0]
	for _, s := range states[1:] {
		if s.UpdatedAt.After(latest.UpdatedAt) {
			latest = s
		}
	}
	return &workflow.State{
		Id:        latest.Id,
		SessionId: latest.SessionId,
		Module:    assist.ModuleTag(latest.Module),
		StepIndex: latest.StepIndex,
		Answers:   latest.Answers,
		Status:    workflow.Status(latest.Status),
		Retries:   latest.Retries,
		Version:   latest.Version,
		CreatedAt: latest.CreatedAt,
		UpdatedAt: latest.UpdatedAt,
	}, nil
}

// retrieve runs the vector search, degrading instead of failing when
// the embedding provider is down.
func (as *assistantService) retrieve(ctx context.Context, query string, module assist.ModuleTag) ([]store.Snippet, bool, error) {
	snippets, err := as.pipeline.Retrieve(ctx, query, module, as.topK, as.scoreFloor)
	if err != nil {
		var embErr *embedding.Error
		if errors.As(err, &embErr) {
			as.pipeLogger.Printf("[assistant] embedding provider down, degraded turn: %v", err)
			return nil, true, nil
		}
		return nil, false, err
	}
	return snippets, false, nil
}

func (as *assistantService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]llm.Message, error) {
	turns, err := uow.ConversationTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "seq", Desc: true},
		specification.Pagination{Limit: historyWindow},
	)
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order for the prompt.
	history := make([]llm.Message, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		history = append(history, llm.Message{
			Role:    turns[i].Role,
			Content: turns[i].Text,
		})
	}
	return history, nil
}

func (as *assistantService) persistTurns(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	chatSession *entity.ChatSession,
	module assist.ModuleTag,
	userText string,
	reply *compose.Reply,
	now time.Time,
) (*dto.SendChatResponseChat, *dto.SendChatResponseChat, error) {
	existing, err := uow.ConversationTurnRepository().Count(ctx,
		specification.ByChatSessionID{ChatSessionID: chatSession.Id},
	)
	if err != nil {
		return nil, nil, err
	}
	// Greeting only means this is the first real exchange.
	updateTitle := existing <= 1

	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	userTurn := &entity.ConversationTurn{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Seq:           int(existing) + 1,
		Role:          constant.ChatMessageRoleUser,
		Text:          userText,
		Module:        string(module),
		CreatedAt:     now,
	}
	modelTurn := &entity.ConversationTurn{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Seq:           int(existing) + 2,
		Role:          constant.ChatMessageRoleModel,
		Text:          reply.Text,
		Module:        string(module),
		Citations:     reply.Citations,
		CreatedAt:     now,
	}

	if err := uow.ConversationTurnRepository().CreateBulk(ctx, []*entity.ConversationTurn{userTurn, modelTurn}); err != nil {
		return nil, nil, err
	}

	if updateTitle {
		chatSession.Title = sessionTitleFrom(userText)
		updatedAt := now
		chatSession.UpdatedAt = &updatedAt
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return nil, nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	sent := &dto.SendChatResponseChat{
		Id:        userTurn.Id,
		Chat:      userTurn.Text,
		Role:      userTurn.Role,
		CreatedAt: userTurn.CreatedAt,
	}
	replied := &dto.SendChatResponseChat{
		Id:        modelTurn.Id,
		Chat:      modelTurn.Text,
		Role:      modelTurn.Role,
		CreatedAt: modelTurn.CreatedAt,
		Citations: modelTurn.Citations,
	}
	return sent, replied, nil
}

func sessionTitleFrom(message string) string {
	const maxTitle = 60
	runes := []rune(message)
	if len(runes) <= maxTitle {
		return message
	}
	return string(runes[:maxTitle]) + "..."
}
