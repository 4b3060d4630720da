package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
)

// Searcher is the similarity-search collaborator the classifier consumes.
// Implementations must return relevance scores in [0,1], higher meaning more
// relevant, and a nil match when nothing in the corpus is relevant.
type Searcher interface {
	BestMatch(ctx context.Context, query string) (*domain.KnowledgeMatch, error)
}

// LexicalSearcher ranks knowledge entries by token overlap with the query.
// It stands in for an embedding-based engine behind the same interface:
// keyword hits weigh double because keywords are curated for exactly this
// kind of matching.
type LexicalSearcher struct {
	mu      sync.RWMutex
	entries []indexedEntry
	logger  *zap.Logger
}

type indexedEntry struct {
	entry    domain.KnowledgeEntry
	keywords map[string]struct{}
	body     map[string]struct{}
}

// NewLexicalSearcher indexes the given entries.
func NewLexicalSearcher(entries []domain.KnowledgeEntry, logger *zap.Logger) *LexicalSearcher {
	s := &LexicalSearcher{logger: logger}
	s.Reindex(entries)
	return s
}

// Reindex replaces the indexed corpus.
func (s *LexicalSearcher) Reindex(entries []domain.KnowledgeEntry) {
	indexed := make([]indexedEntry, 0, len(entries))
	for _, entry := range entries {
		indexed = append(indexed, indexEntry(entry))
	}
	s.mu.Lock()
	s.entries = indexed
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Info("knowledge index built", zap.Int("entries", len(indexed)))
	}
}

// Add indexes one additional entry without rebuilding the corpus.
func (s *LexicalSearcher) Add(entry domain.KnowledgeEntry) {
	s.mu.Lock()
	s.entries = append(s.entries, indexEntry(entry))
	s.mu.Unlock()
}

// BestMatch returns the highest-scoring entry for the query, or nil when no
// entry shares a single token with it.
func (s *LexicalSearcher) BestMatch(ctx context.Context, query string) (*domain.KnowledgeMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		entry domain.KnowledgeEntry
		score float64
	}
	candidates := make([]scored, 0, len(s.entries))
	for _, indexed := range s.entries {
		score := relevance(queryTokens, indexed)
		if score > 0 {
			candidates = append(candidates, scored{entry: indexed.entry, score: score})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	best := candidates[0]
	return &domain.KnowledgeMatch{
		EntryID:        best.entry.ID,
		Category:       best.entry.Category,
		Title:          best.entry.Title,
		Description:    best.entry.Description,
		Solution:       best.entry.Solution,
		Keywords:       best.entry.Keywords,
		AutoResolvable: best.entry.AutoResolvable,
		Priority:       best.entry.PriorityLevel,
		RelevanceScore: best.score,
	}, nil
}

// relevance scores an entry against query tokens. Each query token that hits
// a keyword counts 2, a hit in title/category/description counts 1; the sum
// is normalized by twice the query length so the result stays in [0,1].
func relevance(queryTokens []string, indexed indexedEntry) float64 {
	var hits float64
	for _, token := range queryTokens {
		if _, ok := indexed.keywords[token]; ok {
			hits += 2
			continue
		}
		if _, ok := indexed.body[token]; ok {
			hits++
		}
	}
	return hits / float64(2*len(queryTokens))
}

func indexEntry(entry domain.KnowledgeEntry) indexedEntry {
	keywords := make(map[string]struct{})
	for _, keyword := range entry.Keywords {
		for _, token := range tokenize(keyword) {
			keywords[token] = struct{}{}
		}
	}
	body := make(map[string]struct{})
	for _, token := range tokenize(entry.Category + " " + entry.Title + " " + entry.Description) {
		body[token] = struct{}{}
	}
	return indexedEntry{entry: entry, keywords: keywords, body: body}
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "cant": {}, "do": {}, "for": {},
	"from": {}, "i": {}, "in": {}, "is": {}, "it": {}, "my": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "with": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, skip := stopwords[field]; skip {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		tokens = append(tokens, field)
	}
	return tokens
}
