package memory

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Match is one semantic search hit.
type Match struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
}

// VectorStore is the semantic layer: an index of past message text queried by
// similarity with an equality filter on user id. Callers must treat an empty
// result as "no information", never as an error.
type VectorStore interface {
	// Index stores text for later retrieval. A no-op when the layer is absent.
	Index(ctx context.Context, userID, conversationID, text string) error

	// Search returns the top-k matches for query, filtered to userID.
	Search(ctx context.Context, query, userID string, k int) ([]Match, error)
}

// Embedder generates embedding vectors from text. The concrete embedding
// model is a deployment choice; the index only requires the contract.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dims() int
}

// CosineSimilarity computes cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// HashingEmbedder is a deterministic, dependency-free Embedder that hashes
// lowercased tokens into a fixed-width bag-of-words vector. It gives mock
// deployments stable, meaningful token-overlap similarity without a network
// embedding provider.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder constructs a HashingEmbedder with the given width
// (256 if dims <= 0).
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashingEmbedder{dims: dims}
}

// Embed implements Embedder.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dims]++
	}
	return vec, nil
}

// Dims implements Embedder.
func (e *HashingEmbedder) Dims() int { return e.dims }

type vectorDoc struct {
	id             string
	userID         string
	conversationID string
	text           string
	vec            []float32
	at             time.Time
}

// InMemoryVectorIndex is a process-local VectorStore over a pluggable
// Embedder. Safe for concurrent use.
type InMemoryVectorIndex struct {
	mu       sync.RWMutex
	embedder Embedder
	docs     []vectorDoc
}

// NewInMemoryVectorIndex constructs an index over the given embedder
// (HashingEmbedder when nil).
func NewInMemoryVectorIndex(embedder Embedder) *InMemoryVectorIndex {
	if embedder == nil {
		embedder = NewHashingEmbedder(0)
	}
	return &InMemoryVectorIndex{embedder: embedder}
}

// Index implements VectorStore.
func (s *InMemoryVectorIndex) Index(ctx context.Context, userID, conversationID, text string) error {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, vectorDoc{
		id:             uuid.NewString(),
		userID:         userID,
		conversationID: conversationID,
		text:           text,
		vec:            vec,
		at:             time.Now(),
	})
	return nil
}

// Search implements VectorStore.
func (s *InMemoryVectorIndex) Search(ctx context.Context, query, userID string, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, k)
	for _, doc := range s.docs {
		if doc.userID != userID {
			continue
		}
		matches = append(matches, Match{
			Text: doc.text,
			Metadata: map[string]string{
				"user_id":         doc.userID,
				"conversation_id": doc.conversationID,
			},
			Score: CosineSimilarity(qvec, doc.vec),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// NoopVectorStore is the degraded semantic layer: indexing is silently
// dropped and every search is empty.
type NoopVectorStore struct{}

// Index implements VectorStore as a no-op.
func (NoopVectorStore) Index(context.Context, string, string, string) error { return nil }

// Search implements VectorStore returning no matches.
func (NoopVectorStore) Search(context.Context, string, string, int) ([]Match, error) {
	return nil, nil
}
