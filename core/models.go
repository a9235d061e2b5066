package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a source text belonging to a single content owner.
// Documents are immutable after ingestion; changing a document means
// rebuilding the owner collection.
type Document struct {
	Owner  string
	Source string // Origin label, typically the file name
	Text   string
}

// Passage is a segment of a document enriched with an embedding vector.
// Passages are the unit of storage and retrieval.
type Passage struct {
	Id         ID
	Owner      string
	Source     string
	ChunkIndex int // 0-based position within the source document
	Contents   string
	WordCount  int
	CharCount  int
	TokenCount int               // cl100k_base token count
	Vector     []float32         // Embedding vector (populated by the embedding client)
	Metadata   map[string]string // Optional metadata, round-tripped opaquely
	InsertedAt time.Time
}

// ChunkID returns the synthesized passage identifier "{source}_{index}".
// It is stable across re-ingestion of the same document, which makes
// repeated ingestion an upsert rather than a duplicate.
func (p *Passage) ChunkID() string {
	return p.Source + "_" + strconv.Itoa(p.ChunkIndex)
}

// ScoredPassage is a passage match from vector similarity search.
// Distance is cosine distance in [0, 2]; Similarity is 1 - Distance.
type ScoredPassage struct {
	Passage    *Passage
	Distance   float32
	Similarity float32
}

// RetrievalResult is the outcome of one retrieval call: the strategy the
// orchestrator selected and the ranked passages it produced.
type RetrievalResult struct {
	Query      string
	Owner      string
	Strategy   string
	Passages   []*ScoredPassage
	TotalCount int
}
