package ticket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/features/authz"
	"go-helpdesk/pkg/apperr"
)

func newTicket(status TicketStatus, createdBy primitive.ObjectID, assignedTo *primitive.ObjectID) *Ticket {
	return &Ticket{
		ID:         primitive.NewObjectID(),
		TicketID:   "TKT-1001",
		Status:     status,
		CreatedBy:  createdBy,
		AssignedTo: assignedTo,
	}
}

func TestAllowedEdges(t *testing.T) {
	creator := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	assignee := primitive.NewObjectID()

	tests := []struct {
		name string
		from TicketStatus
		to   TicketStatus
		ok   bool
	}{
		{"open to in progress", TicketStatusOpen, TicketStatusInProgress, true},
		{"open to rejected", TicketStatusOpen, TicketStatusRejected, true},
		{"open to resolved skips work", TicketStatusOpen, TicketStatusResolved, false},
		{"open to closed skips work", TicketStatusOpen, TicketStatusClosed, false},
		{"in progress to resolved", TicketStatusInProgress, TicketStatusResolved, true},
		{"in progress to rejected", TicketStatusInProgress, TicketStatusRejected, true},
		{"in progress to closed", TicketStatusInProgress, TicketStatusClosed, false},
		{"resolved to closed", TicketStatusResolved, TicketStatusClosed, true},
		{"resolved to rejected", TicketStatusResolved, TicketStatusRejected, true},
		{"resolved backwards", TicketStatusResolved, TicketStatusInProgress, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := newTicket(tt.from, creator, &assignee)
			err := ValidateTransition(tk, tt.to, authz.RoleAdmin, admin)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				var appErr *apperr.Error
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, "INVALID_TRANSITION", appErr.Code)
			}
		})
	}
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	actor := primitive.NewObjectID()
	for _, status := range []TicketStatus{TicketStatusClosed, TicketStatusRejected} {
		tk := newTicket(status, actor, nil)
		err := ValidateTransition(tk, TicketStatusInProgress, authz.RoleAdmin, actor)
		require.Error(t, err)
		var appErr *apperr.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "CONFLICT", appErr.Code)
	}
}

func TestInProgressRequiresAssignee(t *testing.T) {
	agent := primitive.NewObjectID()

	tk := newTicket(TicketStatusOpen, primitive.NewObjectID(), nil)
	err := ValidateTransition(tk, TicketStatusInProgress, authz.RoleAgent, agent)
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_FAILED", appErr.Code)

	tk.AssignedTo = &agent
	assert.NoError(t, ValidateTransition(tk, TicketStatusInProgress, authz.RoleAgent, agent))
}

func TestOnlyHandlingRolesProgressTickets(t *testing.T) {
	creator := primitive.NewObjectID()
	assignee := primitive.NewObjectID()

	tk := newTicket(TicketStatusOpen, creator, &assignee)
	err := ValidateTransition(tk, TicketStatusInProgress, authz.RoleEmployee, creator)
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestCloseRestrictedToCreatorOrAdmin(t *testing.T) {
	creator := primitive.NewObjectID()
	agent := primitive.NewObjectID()

	tk := newTicket(TicketStatusResolved, creator, &agent)

	assert.NoError(t, ValidateTransition(tk, TicketStatusClosed, authz.RoleEmployee, creator))
	assert.NoError(t, ValidateTransition(tk, TicketStatusClosed, authz.RoleAdmin, primitive.NewObjectID()))

	err := ValidateTransition(tk, TicketStatusClosed, authz.RoleAgent, agent)
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(TicketStatusClosed))
	assert.True(t, IsTerminal(TicketStatusRejected))
	assert.False(t, IsTerminal(TicketStatusOpen))
	assert.False(t, IsTerminal(TicketStatusInProgress))
	assert.False(t, IsTerminal(TicketStatusResolved))
}
