package authz

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/pkg/apperr"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Resource names an authorizable surface.
type Resource string

const (
	ResourceTicket         Resource = "ticket"
	ResourceServiceRequest Resource = "service_request"
	ResourceCategory       Resource = "category"
	ResourceUser           Resource = "user"
	ResourceAnalytics      Resource = "analytics"
)

// Action names an operation against a resource.
type Action string

const (
	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAssign     Action = "assign"
	ActionTransition Action = "transition"
	ActionApprove    Action = "approve"
	ActionComment    Action = "comment"
	ActionManage     Action = "manage"
)

type capability struct {
	resource Resource
	action   Action
}

// capabilities is the full (role, resource, action) table. Anything not
// listed is denied, so an unrecognized role can do nothing.
var capabilities = map[Role]map[capability]bool{
	RoleEmployee: {
		{ResourceTicket, ActionCreate}:          true,
		{ResourceTicket, ActionRead}:            true,
		{ResourceTicket, ActionComment}:         true,
		{ResourceTicket, ActionTransition}:      true, // Resolved -> Closed on own tickets only
		{ResourceServiceRequest, ActionCreate}:  true,
		{ResourceServiceRequest, ActionRead}:    true,
		{ResourceServiceRequest, ActionComment}: true,
		{ResourceCategory, ActionRead}:          true,
	},
	RoleAgent: {
		{ResourceTicket, ActionCreate}:             true,
		{ResourceTicket, ActionRead}:               true,
		{ResourceTicket, ActionUpdate}:             true,
		{ResourceTicket, ActionAssign}:             true,
		{ResourceTicket, ActionTransition}:         true,
		{ResourceTicket, ActionComment}:            true,
		{ResourceServiceRequest, ActionCreate}:     true,
		{ResourceServiceRequest, ActionRead}:       true,
		{ResourceServiceRequest, ActionUpdate}:     true,
		{ResourceServiceRequest, ActionAssign}:     true,
		{ResourceServiceRequest, ActionTransition}: true,
		{ResourceServiceRequest, ActionApprove}:    true,
		{ResourceServiceRequest, ActionComment}:    true,
		{ResourceCategory, ActionRead}:             true,
	},
	RoleAdmin: {}, // admin is handled as a wildcard in Can
}

// Can reports whether role may perform action on resource. Pure: same
// inputs always yield the same answer.
func Can(role Role, resource Resource, action Action) bool {
	if role == RoleAdmin {
		return true
	}
	caps, ok := capabilities[role]
	if !ok {
		return false
	}
	return caps[capability{resource, action}]
}

// VisibilityFilter computes the database filter restricting which
// tickets/service requests the requester may see.
//
//   - employee: only records they created
//   - agent: their own assignments plus all unassigned work
//   - admin: unrestricted
//
// Unrecognized roles are denied with an error. Pure: no side effects.
func VisibilityFilter(role Role, userID primitive.ObjectID) (bson.M, error) {
	switch role {
	case RoleEmployee:
		return bson.M{"created_by": userID}, nil
	case RoleAgent:
		return bson.M{"$or": []bson.M{
			{"assigned_to": userID},
			{"assigned_to": nil},
		}}, nil
	case RoleAdmin:
		return bson.M{}, nil
	default:
		return nil, apperr.Forbidden("unrecognized role")
	}
}

// CanSeeRecord applies the same visibility rules to a single loaded record.
func CanSeeRecord(role Role, userID, createdBy primitive.ObjectID, assignedTo *primitive.ObjectID) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleAgent:
		return assignedTo == nil || *assignedTo == userID
	case RoleEmployee:
		return createdBy == userID
	default:
		return false
	}
}
