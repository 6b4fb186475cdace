package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cara-compliance-be/internal/config"
	"cara-compliance-be/internal/constant"
	"cara-compliance-be/internal/dto"
	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/repository/contract"
	"cara-compliance-be/internal/repository/memory"
	"cara-compliance-be/internal/repository/specification"
	"cara-compliance-be/internal/repository/unitofwork"
	"cara-compliance-be/pkg/embedding"
	"cara-compliance-be/pkg/llm"
)

// In-memory repositories backing a unit of work for service tests.

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.ChatSession
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *entity.ChatSession) error {
	r.sessions[s.Id] = s
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, s *entity.ChatSession) error {
	r.sessions[s.Id] = s
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, s := range r.sessions {
		return s, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	out := make([]*entity.ChatSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sessions)), nil
}

type fakeTurnRepo struct {
	turns []*entity.ConversationTurn
}

func (r *fakeTurnRepo) Create(ctx context.Context, t *entity.ConversationTurn) error {
	r.turns = append(r.turns, t)
	return nil
}

func (r *fakeTurnRepo) CreateBulk(ctx context.Context, ts []*entity.ConversationTurn) error {
	r.turns = append(r.turns, ts...)
	return nil
}

func (r *fakeTurnRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.turns = nil
	return nil
}

func (r *fakeTurnRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	out := make([]*entity.ConversationTurn, len(r.turns))
	copy(out, r.turns)
	return out, nil
}

func (r *fakeTurnRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.turns)), nil
}

type fakeChunkRepo struct {
	hits []*contract.ScoredKnowledgeChunk
}

func (r *fakeChunkRepo) Create(ctx context.Context, c *entity.KnowledgeChunk) error       { return nil }
func (r *fakeChunkRepo) CreateBulk(ctx context.Context, c []*entity.KnowledgeChunk) error { return nil }
func (r *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error                   { return nil }
func (r *fakeChunkRepo) DeleteByModuleTag(ctx context.Context, moduleTag string) error    { return nil }

func (r *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, vec []float32, limit int, moduleTag string) ([]*contract.ScoredKnowledgeChunk, error) {
	return r.hits, nil
}

type fakeWorkflowRepo struct{}

func (r *fakeWorkflowRepo) FindBySessionAndModule(ctx context.Context, sessionId uuid.UUID, module string) (*entity.WorkflowState, error) {
	return nil, nil
}

func (r *fakeWorkflowRepo) FindActiveBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.WorkflowState, error) {
	return nil, nil
}

func (r *fakeWorkflowRepo) Save(ctx context.Context, state *entity.WorkflowState) error { return nil }

func (r *fakeWorkflowRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return nil
}

type fakeUow struct {
	sessions *fakeSessionRepo
	turns    *fakeTurnRepo
	chunks   *fakeChunkRepo
	states   *fakeWorkflowRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) KnowledgeChunkRepository() contract.KnowledgeChunkRepository { return u.chunks }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository       { return u.sessions }
func (u *fakeUow) ConversationTurnRepository() contract.ConversationTurnRepository {
	return u.turns
}
func (u *fakeUow) WorkflowStateRepository() contract.WorkflowStateRepository { return u.states }

type fakeUowFactory struct{ uow *fakeUow }

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type stubEmbedder struct{}

func (stubEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.Response, error) {
	return &embedding.Response{Embedding: embedding.ResponseEmbedding{Values: []float32{1, 0, 0}}}, nil
}

type stubLLM struct{ reply string }

func (s stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.reply, nil
}

func (s stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.reply, nil
}

func newTestAssistant(uow *fakeUow) IAssistantService {
	return NewAssistantService(
		&fakeUowFactory{uow: uow},
		stubEmbedder{},
		stubLLM{reply: "Passwords rotate quarterly."},
		memory.NewWorkflowStore(),
		NewNoopReplyCache(),
		nil,
		config.RetrievalConfig{TopK: 3, ScoreFloor: 0.1},
	)
}

func TestSendChatNumbersTurnsSequentially(t *testing.T) {
	userId := uuid.New()
	sessionId := uuid.New()
	uow := &fakeUow{
		sessions: &fakeSessionRepo{sessions: map[uuid.UUID]*entity.ChatSession{
			sessionId: {Id: sessionId, UserId: userId, Title: "Unnamed session", CreatedAt: time.Now()},
		}},
		turns: &fakeTurnRepo{turns: []*entity.ConversationTurn{
			{Id: uuid.New(), ChatSessionId: sessionId, Seq: 1, Role: constant.ChatMessageRoleModel, Text: "Hi"},
		}},
		chunks: &fakeChunkRepo{},
		states: &fakeWorkflowRepo{},
	}
	svc := newTestAssistant(uow)

	before := time.Now()
	resp, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          "How often do passwords rotate?",
	})
	require.NoError(t, err)

	require.Len(t, uow.turns.turns, 3)
	userTurn := uow.turns.turns[1]
	modelTurn := uow.turns.turns[2]

	// Ordering comes from the sequence numbers, not from skewed clocks.
	assert.Equal(t, 2, userTurn.Seq)
	assert.Equal(t, 3, modelTurn.Seq)
	assert.True(t, modelTurn.CreatedAt.Equal(userTurn.CreatedAt),
		"model turn timestamp differs from the user turn's")
	assert.False(t, modelTurn.CreatedAt.After(time.Now().Add(time.Millisecond)),
		"model turn stamped in the future")
	assert.False(t, userTurn.CreatedAt.Before(before))

	assert.Equal(t, resp.Sent.Id, userTurn.Id)
	assert.Equal(t, resp.Reply.Id, modelTurn.Id)
}

func TestSendChatSecondExchangeContinuesSequence(t *testing.T) {
	userId := uuid.New()
	sessionId := uuid.New()
	uow := &fakeUow{
		sessions: &fakeSessionRepo{sessions: map[uuid.UUID]*entity.ChatSession{
			sessionId: {Id: sessionId, UserId: userId, Title: "Unnamed session", CreatedAt: time.Now()},
		}},
		turns:  &fakeTurnRepo{},
		chunks: &fakeChunkRepo{},
		states: &fakeWorkflowRepo{},
	}
	svc := newTestAssistant(uow)
	ctx := context.Background()

	_, err := svc.SendChat(ctx, userId, &dto.SendChatRequest{ChatSessionId: sessionId, Chat: "What is our password policy?"})
	require.NoError(t, err)
	_, err = svc.SendChat(ctx, userId, &dto.SendChatRequest{ChatSessionId: sessionId, Chat: "And for service accounts?"})
	require.NoError(t, err)

	require.Len(t, uow.turns.turns, 4)
	for i, turn := range uow.turns.turns {
		assert.Equal(t, i+1, turn.Seq, "turn %d out of sequence", i)
	}
}
