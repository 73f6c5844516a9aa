package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-helpdesk/internal/config"
	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/features/ticket"
)

// systemActor performs scheduled transitions with admin authority.
var systemActor = ticket.Actor{
	ID:   primitive.NilObjectID,
	Role: authz.RoleAdmin,
	Name: "System",
}

// AutoCloseService closes tickets that have sat in Resolved past the
// configured grace period.
type AutoCloseService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	RunOnce(ctx context.Context) (int, error)
}

type resolvedFinder interface {
	FindResolvedBefore(ctx context.Context, cutoff time.Time) ([]ticket.Ticket, error)
}

type transitioner interface {
	UpdateStatus(ctx context.Context, id string, to ticket.TicketStatus, actor ticket.Actor) (*ticket.Ticket, error)
	AddComment(ctx context.Context, id string, text string, actor ticket.Actor) (*ticket.Ticket, error)
}

type AutoCloseServiceImpl struct {
	Tickets     resolvedFinder
	Transitions transitioner
	Logger      *zap.Logger
	GraceDays   int

	scheduler *cron.Cron
}

// NewAutoCloseService creates the auto-close maintenance job
func NewAutoCloseService(
	ticketRepo ticket.TicketRepository,
	ticketService ticket.TicketService,
	logger *zap.Logger,
	cfg *config.Config,
) AutoCloseService {
	return &AutoCloseServiceImpl{
		Tickets:     ticketRepo,
		Transitions: ticketService,
		Logger:      logger,
		GraceDays:   cfg.AutoCloseDays,
	}
}

func (s *AutoCloseServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc("@hourly", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		closed, err := s.RunOnce(jobCtx)
		if err != nil {
			s.Logger.Error("auto-close run failed", zap.Error(err))
			return
		}
		if closed > 0 {
			s.Logger.Info("auto-closed resolved tickets", zap.Int("count", closed))
		}
	}); err != nil {
		return err
	}

	s.scheduler.Start()
	s.Logger.Info("auto-close scheduler started", zap.Int("grace_days", s.GraceDays))
	return nil
}

func (s *AutoCloseServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}
	return nil
}

// RunOnce closes every ticket resolved earlier than the grace cutoff,
// leaving a system comment on each. Tickets touched by another writer
// between the scan and the transition are skipped.
func (s *AutoCloseServiceImpl) RunOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.GraceDays)
	stale, err := s.Tickets.FindResolvedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, t := range stale {
		id := t.ID.Hex()
		if _, err := s.Transitions.UpdateStatus(ctx, id, ticket.TicketStatusClosed, systemActor); err != nil {
			s.Logger.Warn("auto-close skipped ticket",
				zap.String("ticket_id", t.TicketID), zap.Error(err))
			continue
		}
		note := fmt.Sprintf("Automatically closed after %d days in Resolved", s.GraceDays)
		if _, err := s.Transitions.AddComment(ctx, id, note, systemActor); err != nil {
			s.Logger.Warn("auto-close comment failed",
				zap.String("ticket_id", t.TicketID), zap.Error(err))
		}
		closed++
	}
	return closed, nil
}
