package ticket

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/features/authz"
	"go-helpdesk/pkg/apperr"
)

// ticketEdges is the explicit allowed-edges table. Any requested transition
// not listed here is rejected, so stored status can only move forward.
var ticketEdges = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusRejected},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusRejected},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusRejected},
}

// IsTerminal reports whether s accepts no further transitions.
func IsTerminal(s TicketStatus) bool {
	return s == TicketStatusClosed || s == TicketStatusRejected
}

func edgeAllowed(from, to TicketStatus) bool {
	for _, next := range ticketEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks a requested status change against the current
// status, the requester's role, and the per-edge preconditions. It has no
// side effects; callers apply the change only when nil is returned.
//
//   - Open -> In Progress: agent/admin, assignee must be set
//   - In Progress -> Resolved: agent/admin
//   - Resolved -> Closed: creator or admin
//   - any non-terminal -> Rejected: agent/admin
func ValidateTransition(t *Ticket, to TicketStatus, actorRole authz.Role, actorID primitive.ObjectID) error {
	if IsTerminal(t.Status) {
		return apperr.Conflict("ticket is in a terminal state", map[string]any{"status": t.Status})
	}
	if !edgeAllowed(t.Status, to) {
		return apperr.InvalidTransition(string(t.Status), string(to))
	}

	switch to {
	case TicketStatusClosed:
		if actorRole != authz.RoleAdmin && t.CreatedBy != actorID {
			return apperr.Forbidden("only the ticket creator or an admin may close")
		}
	default:
		if actorRole != authz.RoleAgent && actorRole != authz.RoleAdmin {
			return apperr.Forbidden("only agents or admins may change ticket status")
		}
	}

	if to == TicketStatusInProgress && t.AssignedTo == nil {
		return apperr.Validation("ticket must be assigned before work starts", nil)
	}

	return nil
}
