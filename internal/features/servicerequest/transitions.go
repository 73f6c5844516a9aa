package servicerequest

import (
	"go-helpdesk/internal/features/authz"
	"go-helpdesk/pkg/apperr"
)

// requestEdges is the explicit allowed-edges table for service requests.
// Approval is required before work begins: there is no Pending -> In
// Progress edge.
var requestEdges = map[RequestStatus][]RequestStatus{
	RequestStatusPending:    {RequestStatusApproved, RequestStatusRejected},
	RequestStatusApproved:   {RequestStatusInProgress},
	RequestStatusInProgress: {RequestStatusCompleted},
}

// IsTerminal reports whether s accepts no further transitions.
func IsTerminal(s RequestStatus) bool {
	return s == RequestStatusRejected || s == RequestStatusCompleted
}

func edgeAllowed(from, to RequestStatus) bool {
	for _, next := range requestEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks a requested status change against the current
// status and the requester's role. Every edge requires a handling role
// (agent or admin); only Pending requests may be approved or rejected.
func ValidateTransition(from, to RequestStatus, actorRole authz.Role) error {
	if IsTerminal(from) {
		return apperr.Conflict("service request is in a terminal state", map[string]any{"status": from})
	}
	if !edgeAllowed(from, to) {
		return apperr.InvalidTransition(string(from), string(to))
	}
	if actorRole != authz.RoleAgent && actorRole != authz.RoleAdmin {
		return apperr.Forbidden("only agents or admins may change request status")
	}
	return nil
}
