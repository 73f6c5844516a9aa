package admin

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"

	"go-helpdesk/internal/features/authz"
	"go-helpdesk/internal/features/servicerequest"
	"go-helpdesk/internal/features/ticket"
	"go-helpdesk/internal/features/user"
)

// Analytics is the admin dashboard summary across both record kinds.
type Analytics struct {
	TotalTickets  int64 `json:"totalTickets"`
	TotalRequests int64 `json:"totalRequests"`
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`

	TicketsByStatus   map[string]int64 `json:"ticketsByStatus"`
	TicketsByPriority map[string]int64 `json:"ticketsByPriority"`
	TicketsByCategory map[string]int64 `json:"ticketsByCategory"`
	RequestsByStatus  map[string]int64 `json:"requestsByStatus"`
	RequestsByService map[string]int64 `json:"requestsByService"`
	UsersByRole       map[string]int64 `json:"usersByRole"`
	GeneratedAt       time.Time        `json:"generatedAt"`
}

// AnalyticsService defines the interface for admin analytics
type AnalyticsService interface {
	Overview(ctx context.Context) (*Analytics, error)
	ExportXLSX(ctx context.Context) (*bytes.Buffer, error)
}

type AnalyticsServiceImpl struct {
	TicketRepo  ticket.TicketRepository
	RequestRepo servicerequest.RequestRepository
	UserRepo    user.UserRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	ticketRepo ticket.TicketRepository,
	requestRepo servicerequest.RequestRepository,
	userRepo user.UserRepository,
) AnalyticsService {
	return &AnalyticsServiceImpl{
		TicketRepo:  ticketRepo,
		RequestRepo: requestRepo,
		UserRepo:    userRepo,
	}
}

func bucketMap(buckets []ticket.StatusCount) (map[string]int64, int64) {
	out := make(map[string]int64, len(buckets))
	var total int64
	for _, b := range buckets {
		out[b.Key] = b.Count
		total += b.Count
	}
	return out, total
}

func (s *AnalyticsServiceImpl) Overview(ctx context.Context) (*Analytics, error) {
	a := &Analytics{GeneratedAt: time.Now()}

	byStatus, err := s.TicketRepo.CountBy(ctx, "status", bson.M{})
	if err != nil {
		return nil, err
	}
	a.TicketsByStatus, a.TotalTickets = bucketMap(byStatus)

	byPriority, err := s.TicketRepo.CountBy(ctx, "priority", bson.M{})
	if err != nil {
		return nil, err
	}
	a.TicketsByPriority, _ = bucketMap(byPriority)

	byCategory, err := s.TicketRepo.CountBy(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	a.TicketsByCategory, _ = bucketMap(byCategory)

	reqByStatus, err := s.RequestRepo.CountBy(ctx, "status", bson.M{})
	if err != nil {
		return nil, err
	}
	a.RequestsByStatus, a.TotalRequests = bucketMap(reqByStatus)

	reqByService, err := s.RequestRepo.CountBy(ctx, "service_type", bson.M{})
	if err != nil {
		return nil, err
	}
	a.RequestsByService, _ = bucketMap(reqByService)

	a.UsersByRole = map[string]int64{}
	for _, role := range []authz.Role{authz.RoleEmployee, authz.RoleAgent, authz.RoleAdmin} {
		n, err := s.UserRepo.Count(ctx, bson.M{"role": role})
		if err != nil {
			return nil, err
		}
		a.UsersByRole[string(role)] = n
		a.TotalUsers += n
	}
	active, err := s.UserRepo.Count(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	a.ActiveUsers = active

	return a, nil
}

// ExportXLSX renders the overview as a spreadsheet, one sheet per grouping.
func (s *AnalyticsServiceImpl) ExportXLSX(ctx context.Context) (*bytes.Buffer, error) {
	a, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)
	rows := [][]any{
		{"Metric", "Value"},
		{"Total tickets", a.TotalTickets},
		{"Total service requests", a.TotalRequests},
		{"Total users", a.TotalUsers},
		{"Active users", a.ActiveUsers},
		{"Generated at", a.GeneratedAt.Format(time.RFC3339)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	sheets := []struct {
		name    string
		header  string
		buckets map[string]int64
	}{
		{"Tickets by status", "Status", a.TicketsByStatus},
		{"Tickets by priority", "Priority", a.TicketsByPriority},
		{"Tickets by category", "Category", a.TicketsByCategory},
		{"Requests by status", "Status", a.RequestsByStatus},
		{"Requests by service", "Service type", a.RequestsByService},
		{"Users by role", "Role", a.UsersByRole},
	}
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet.name, "A1", &[]any{sheet.header, "Count"}); err != nil {
			return nil, err
		}
		row := 2
		for key, count := range sheet.buckets {
			if err := f.SetSheetRow(sheet.name, fmt.Sprintf("A%d", row), &[]any{key, count}); err != nil {
				return nil, err
			}
			row++
		}
	}

	return f.WriteToBuffer()
}
