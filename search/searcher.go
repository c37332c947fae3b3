package search

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/docstore"
)

// Request describes one hybrid query.
type Request struct {
	// Query is the text to search for. Required.
	Query string

	// Filters are exact-match constraints applied to candidate fields
	// after ranking.
	Filters map[string]string

	// Fusion is the per-query fusion configuration. Zero-valued fields
	// take defaults.
	Fusion FusionConfig

	// Summarize requests a free-text summary of the final result list.
	Summarize bool
}

// Response is the outcome of one hybrid query. Degraded means one retrieval
// method was unavailable and the ranking used the other alone; Unavailable
// names the missing methods. SummaryErr carries a summarization failure,
// which never fails the query itself.
type Response struct {
	Results     []*Candidate
	Duplicates  []Duplicate
	Degraded    bool
	Unavailable []Method
	Summary     *ai.Summary
	SummaryErr  error
}

// Searcher answers hybrid queries: it embeds the query text, runs the
// lexical and vector retrievals concurrently, normalizes and fuses their
// rankings, and collapses near-duplicate results.
type Searcher struct {
	store        docstore.Store
	embedder     ai.Embedder
	summarizer   ai.Summarizer
	collection   string
	lexicalIndex string
	vectorIndex  string
	fields       []string
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIndexes overrides the default index names ("lexical", "vector").
func WithIndexes(lexical, vector string) Option {
	return func(s *Searcher) {
		if lexical != "" {
			s.lexicalIndex = lexical
		}
		if vector != "" {
			s.vectorIndex = vector
		}
	}
}

// WithFields sets the text fields queried by lexical search.
// Default is title and contents.
func WithFields(fields ...string) Option {
	return func(s *Searcher) {
		if len(fields) > 0 {
			s.fields = fields
		}
	}
}

// NewSearcher creates a searcher over one collection.
func NewSearcher(store docstore.Store, provider ai.AIProvider, collection string, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		store:        store,
		embedder:     provider.Embedder(),
		summarizer:   provider.Summarizer(),
		collection:   collection,
		lexicalIndex: "lexical",
		vectorIndex:  "vector",
		fields:       []string{"title", "contents"},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search answers one hybrid query.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor answers one hybrid query, reporting each stage to the
// monitor. A nil monitor is replaced by a no-op.
//
// The query either returns a (possibly degraded) ranked list or a single
// descriptive error; it never returns a silently empty list when the real
// cause is a missing index or collection.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req Request, monitor Monitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	fuser, err := NewFuser(req.Fusion)
	if err != nil {
		return nil, err
	}
	topK := req.Fusion.withDefaults().TopK

	monitor.Start(req.Query)

	embedding, err := s.embedder.EmbedText(ctx, req.Query)
	if err != nil {
		s.logger.Error("query embedding failed", "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(embedding.Tokens)

	var (
		lexical, vector       []*Candidate
		lexicalOff, vectorOff bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		lexical, lexicalOff, gerr = s.lexicalCandidates(gctx, req.Query, req.Filters, topK)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		vector, vectorOff, gerr = s.vectorCandidates(gctx, embedding.Vector, req.Filters, topK)
		return gerr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	monitor.AfterMethod(MethodLexical, len(lexical), lexicalOff)
	monitor.AfterMethod(MethodVector, len(vector), vectorOff)

	lists := make(map[Method][]*Candidate, 2)
	var unavailable []Method
	if lexicalOff {
		unavailable = append(unavailable, MethodLexical)
	} else {
		Normalize(lexical, MethodLexical)
		lists[MethodLexical] = lexical
	}
	if vectorOff {
		unavailable = append(unavailable, MethodVector)
	} else {
		Normalize(vector, MethodVector)
		lists[MethodVector] = vector
	}

	fused, degraded := fuser.Fuse(lists)
	monitor.AfterFusion(len(fused), degraded)

	kept, duplicates := Dedup(fused, fuser.Threshold())
	monitor.AfterDedup(len(kept), len(duplicates))

	if limit := fuser.Limit(); len(kept) > limit {
		kept = kept[:limit]
	}

	response := &Response{
		Results:     kept,
		Duplicates:  duplicates,
		Degraded:    degraded,
		Unavailable: unavailable,
	}

	if req.Summarize && len(kept) > 0 {
		s.summarize(ctx, req.Query, response)
	}

	monitor.Finish(response)
	return response, nil
}

// summarize renders the final results for the summarizer. Failures are
// reported on the response and never abort the query.
func (s *Searcher) summarize(ctx context.Context, query string, response *Response) {
	docs := make([]string, len(response.Results))
	for i, candidate := range response.Results {
		docs[i] = candidate.Record.EmbeddingText()
	}

	summary, err := s.summarizer.Summarize(ctx, query, docs)
	if err != nil {
		s.logger.Warn("result summarization failed", "err", err)
		response.SummaryErr = err
		return
	}
	response.Summary = summary
}
