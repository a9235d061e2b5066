package retrieve

import (
	"github.com/poiesic/recallit/classify"
	"github.com/poiesic/recallit/core"
)

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during retrieval.
type RetrievalMonitor interface {
	Start(query, owner string)
	AfterClassification(analysis classify.QueryAnalysis)
	Skipped(strategy Strategy)
	AfterQueryEmbedding(vector []float32)
	AfterSimilaritySearch(passages []*core.ScoredPassage)
	Finish(result *core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                              {}
func (n *noopMonitor) AfterClassification(_ classify.QueryAnalysis)   {}
func (n *noopMonitor) Skipped(_ Strategy)                             {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)                {}
func (n *noopMonitor) AfterSimilaritySearch(_ []*core.ScoredPassage)  {}
func (n *noopMonitor) Finish(_ *core.RetrievalResult)                 {}
