package domain

import "time"

// KnowledgeEntry is a knowledge-base article describing a known issue and
// its remediation.
type KnowledgeEntry struct {
	ID             string         `json:"id"`
	Category       string         `json:"category"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Solution       string         `json:"solution"`
	Keywords       []string       `json:"keywords"`
	AutoResolvable bool           `json:"auto_resolvable"`
	PriorityLevel  TicketPriority `json:"priority_level"`
	SuccessRate    float64        `json:"success_rate"`
	UsageCount     int            `json:"usage_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// KnowledgeMatch is a ranked similarity-search result. RelevanceScore is
// normalized to [0,1]; higher means more relevant.
type KnowledgeMatch struct {
	EntryID        string         `json:"entry_id"`
	Category       string         `json:"category"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Solution       string         `json:"solution"`
	Keywords       []string       `json:"keywords"`
	AutoResolvable bool           `json:"auto_resolvable"`
	Priority       TicketPriority `json:"priority"`
	RelevanceScore float64        `json:"relevance_score"`
}
