package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"

	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/embedding"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.Response{Embedding: embedding.ResponseEmbedding{Values: f.vector}}, nil
}

type fakeSearcher struct {
	hits    []ScoredChunk
	err     error
	gotTag  string
	gotK    int
	gotVec  []float32
	invoked bool
}

func (f *fakeSearcher) Search(ctx context.Context, vector []float32, moduleTag string, k int) ([]ScoredChunk, error) {
	f.invoked = true
	f.gotVec = vector
	f.gotTag = moduleTag
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func newTestPipeline(e *fakeEmbedder, s *fakeSearcher) *Pipeline {
	return NewPipeline(e, s, log.New(io.Discard, "", 0))
}

func chunk(text string, score float64) ScoredChunk {
	return ScoredChunk{ChunkID: uuid.New(), SourceRef: "handbook.md", Text: text, Score: score}
}

func TestRetrieveRanksAndFilters(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0, 0}}
	searcher := &fakeSearcher{hits: []ScoredChunk{
		chunk("low relevance", 0.21),
		chunk("best match", 0.92),
		chunk("second", 0.77),
	}}
	p := newTestPipeline(embedder, searcher)

	got, err := p.Retrieve(context.Background(), "access control policy", assist.ModulePolicy, 5, 0.3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Retrieve() returned %d snippets, want 2", len(got))
	}
	if got[0].Excerpt != "best match" || got[1].Excerpt != "second" {
		t.Errorf("snippets not ordered by score: %q, %q", got[0].Excerpt, got[1].Excerpt)
	}
	if got[0].Rank != 1 || got[1].Rank != 2 {
		t.Errorf("ranks = %d, %d, want 1, 2", got[0].Rank, got[1].Rank)
	}
	if searcher.gotTag != string(assist.ModulePolicy) {
		t.Errorf("search tag = %q, want %q", searcher.gotTag, assist.ModulePolicy)
	}
}

func TestRetrieveGeneralSearchesAllCorpora(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	searcher := &fakeSearcher{}
	p := newTestPipeline(embedder, searcher)

	if _, err := p.Retrieve(context.Background(), "hello", assist.ModuleGeneral, 3, 0.3); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if searcher.gotTag != "" {
		t.Errorf("general module search tag = %q, want empty", searcher.gotTag)
	}
}

func TestRetrieveTruncatesToK(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	searcher := &fakeSearcher{hits: []ScoredChunk{
		chunk("a", 0.9), chunk("b", 0.8), chunk("c", 0.7), chunk("d", 0.6),
	}}
	p := newTestPipeline(embedder, searcher)

	got, err := p.Retrieve(context.Background(), "q", assist.ModuleISO, 2, 0.0)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Retrieve() returned %d snippets, want 2", len(got))
	}
}

func TestRetrieveEmptyResultIsValid(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	searcher := &fakeSearcher{hits: []ScoredChunk{chunk("weak", 0.1)}}
	p := newTestPipeline(embedder, searcher)

	got, err := p.Retrieve(context.Background(), "obscure question", assist.ModuleISO, 5, 0.3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Retrieve() returned %d snippets, want 0", len(got))
	}
}

func TestRetrievePropagatesEmbeddingError(t *testing.T) {
	wrapped := &embedding.Error{Provider: "ollama", Err: errors.New("connection refused")}
	embedder := &fakeEmbedder{err: wrapped}
	searcher := &fakeSearcher{}
	p := newTestPipeline(embedder, searcher)

	_, err := p.Retrieve(context.Background(), "q", assist.ModuleISO, 5, 0.3)
	if err == nil {
		t.Fatal("Retrieve() error = nil, want embedding error")
	}
	var embErr *embedding.Error
	if !errors.As(err, &embErr) {
		t.Errorf("error %v does not unwrap to *embedding.Error", err)
	}
	if searcher.invoked {
		t.Error("searcher called despite embedding failure")
	}
}

func TestRetrievePropagatesSearchError(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	searcher := &fakeSearcher{err: errors.New("pg down")}
	p := newTestPipeline(embedder, searcher)

	if _, err := p.Retrieve(context.Background(), "q", assist.ModuleISO, 5, 0.3); err == nil {
		t.Fatal("Retrieve() error = nil, want search error")
	}
}

func TestRetrieveIsDeterministic(t *testing.T) {
	idA, idB := uuid.New(), uuid.New()
	hits := []ScoredChunk{
		{ChunkID: idA, SourceRef: "a.md", Text: "tie one", Score: 0.8},
		{ChunkID: idB, SourceRef: "b.md", Text: "tie two", Score: 0.8},
	}
	embedder := &fakeEmbedder{vector: []float32{1}}
	searcher := &fakeSearcher{hits: hits}
	p := newTestPipeline(embedder, searcher)

	first, err := p.Retrieve(context.Background(), "q", assist.ModuleISO, 5, 0.3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.Retrieve(context.Background(), "q", assist.ModuleISO, 5, 0.3)
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		for j := range first {
			if first[j].ChunkID != again[j].ChunkID {
				t.Fatalf("tie ordering changed between calls at rank %d", j+1)
			}
		}
	}
}
