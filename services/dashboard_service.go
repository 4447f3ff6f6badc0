package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"eduguide/logger"
	"eduguide/models"
)

type DashboardAPI interface {
	History(ctx context.Context) ([]models.QuizResult, error)
	StreamSummary(ctx context.Context) (*models.StreamSummary, error)
	Conversations(ctx context.Context, userID int64) ([]models.ChatConversation, error)
}

// Dashboard holds each section with its own error; one failing section
// does not hide the others.
type Dashboard struct {
	History       []models.QuizResult
	HistoryErr    error
	Summary       *models.StreamSummary
	SummaryErr    error
	Conversations []models.ChatConversation
	ConvErr       error
}

type DashboardService struct {
	api DashboardAPI
	log *logger.Logger
}

func NewDashboardService(api DashboardAPI, log *logger.Logger) *DashboardService {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardService{api: api, log: log.With("component", "dashboard")}
}

// Load fetches all sections concurrently. Section errors are kept on the
// Dashboard rather than returned to the group, so one failure never
// cancels the others; only ctx does.
func (s *DashboardService) Load(ctx context.Context, userID int64) *Dashboard {
	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.History, d.HistoryErr = s.api.History(gctx)
		return nil
	})
	g.Go(func() error {
		d.Summary, d.SummaryErr = s.api.StreamSummary(gctx)
		return nil
	})
	g.Go(func() error {
		d.Conversations, d.ConvErr = s.api.Conversations(gctx, userID)
		return nil
	})
	_ = g.Wait()

	if d.History == nil {
		d.History = []models.QuizResult{}
	}
	if d.Conversations == nil {
		d.Conversations = []models.ChatConversation{}
	}
	for name, err := range map[string]error{"history": d.HistoryErr, "summary": d.SummaryErr, "conversations": d.ConvErr} {
		if err != nil {
			s.log.Warn("dashboard section failed", "section", name, "error", err)
		}
	}
	return d
}
