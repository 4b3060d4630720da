package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/persistence"
	"github.com/spec-kit/it-support/internal/repository"
	apperrors "github.com/spec-kit/it-support/pkg/util"
)

const (
	dashboardCacheKey = "analytics:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

// TicketAnalytics summarizes ticket volume.
type TicketAnalytics struct {
	TotalTickets   int64   `json:"total_tickets"`
	AutoResolved   int64   `json:"auto_resolved"`
	Escalated      int64   `json:"escalated"`
	Pending        int64   `json:"pending"`
	ResolutionRate float64 `json:"resolution_rate"`
}

// StagePerformance reports aggregated stage behavior for the dashboard.
type StagePerformance struct {
	Stage         string  `json:"agent_name"`
	TotalActions  int64   `json:"total_actions"`
	SuccessRate   float64 `json:"success_rate"`
	AvgDurationMs float64 `json:"avg_processing_time"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// RecentTicket is the compact ticket summary shown on the dashboard.
type RecentTicket struct {
	TicketKey string                 `json:"ticket_id"`
	Category  *string                `json:"category"`
	Priority  *domain.TicketPriority `json:"priority"`
	Status    domain.TicketStatus    `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
}

// DashboardMetrics is the full analytics payload.
type DashboardMetrics struct {
	Tickets              TicketAnalytics    `json:"tickets"`
	StagePerformance     []StagePerformance `json:"agent_performance"`
	CategoryDistribution map[string]int64   `json:"category_distribution"`
	PriorityDistribution map[string]int64   `json:"priority_distribution"`
	RecentTickets        []RecentTicket     `json:"recent_tickets"`
}

// AnalyticsService computes dashboard metrics from persisted tickets and the
// audit trail, with a short-lived Redis cache in front.
type AnalyticsService struct {
	tickets repository.TicketRepository
	audit   repository.AuditRepository
	cache   *persistence.Redis
	logger  *zap.Logger
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(tickets repository.TicketRepository, audit repository.AuditRepository, cache *persistence.Redis, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{tickets: tickets, audit: audit, cache: cache, logger: logger}
}

// Dashboard returns the current metrics, served from cache when fresh.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardMetrics, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	statusCounts, err := s.tickets.StatusCounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var total int64
	for _, count := range statusCounts {
		total += count
	}
	autoResolved := statusCounts[domain.TicketStatusResolved]
	escalated := statusCounts[domain.TicketStatusEscalated]
	pending := statusCounts[domain.TicketStatusNew] + statusCounts[domain.TicketStatusClassified]

	var resolutionRate float64
	if total > 0 {
		resolutionRate = float64(autoResolved) / float64(total) * 100
	}

	categoryDist, err := s.tickets.CategoryDistribution(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	priorityDist, err := s.tickets.PriorityDistribution(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	listed, err := s.tickets.List(ctx, repository.TicketFilter{Limit: 10})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	recent := make([]RecentTicket, 0, len(listed))
	for _, ticket := range listed {
		recent = append(recent, RecentTicket{
			TicketKey: ticket.TicketKey,
			Category:  ticket.Category,
			Priority:  ticket.Priority,
			Status:    ticket.Status,
			CreatedAt: ticket.CreatedAt,
		})
	}
	stagePerf, err := s.audit.StagePerformance(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	performance := make([]StagePerformance, 0, len(stagePerf))
	for _, perf := range stagePerf {
		var successRate float64
		if perf.TotalActions > 0 {
			successRate = float64(perf.SuccessCount) / float64(perf.TotalActions) * 100
		}
		performance = append(performance, StagePerformance{
			Stage:         perf.Stage,
			TotalActions:  perf.TotalActions,
			SuccessRate:   successRate,
			AvgDurationMs: perf.AvgDurationMs,
			AvgConfidence: perf.AvgConfidence,
		})
	}

	metrics := &DashboardMetrics{
		Tickets: TicketAnalytics{
			TotalTickets:   total,
			AutoResolved:   autoResolved,
			Escalated:      escalated,
			Pending:        pending,
			ResolutionRate: resolutionRate,
		},
		StagePerformance:     performance,
		CategoryDistribution: categoryDist,
		PriorityDistribution: priorityDist,
		RecentTickets:        recent,
	}

	s.toCache(ctx, metrics)
	return metrics, nil
}

func (s *AnalyticsService) fromCache(ctx context.Context) *DashboardMetrics {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var metrics DashboardMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return nil
	}
	return &metrics
}

func (s *AnalyticsService) toCache(ctx context.Context, metrics *DashboardMetrics) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
		s.logger.Debug("dashboard cache write failed", zap.Error(err))
	}
}
