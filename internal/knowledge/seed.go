package knowledge

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spec-kit/it-support/internal/domain"
)

type seedEntry struct {
	Category       string                `json:"category"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Solution       string                `json:"solution"`
	Keywords       []string              `json:"keywords"`
	AutoResolvable bool                  `json:"auto_resolvable"`
	PriorityLevel  domain.TicketPriority `json:"priority_level"`
}

// LoadSeed reads the bundled knowledge-base seed file.
func LoadSeed(path string) ([]domain.KnowledgeEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge seed: %w", err)
	}
	var raw []seedEntry
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse knowledge seed: %w", err)
	}
	entries := make([]domain.KnowledgeEntry, 0, len(raw))
	for _, item := range raw {
		entries = append(entries, domain.KnowledgeEntry{
			Category:       item.Category,
			Title:          item.Title,
			Description:    item.Description,
			Solution:       item.Solution,
			Keywords:       item.Keywords,
			AutoResolvable: item.AutoResolvable,
			PriorityLevel:  item.PriorityLevel,
		})
	}
	return entries, nil
}
