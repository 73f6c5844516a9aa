package ticket

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketStatus is the closed status set for complaint tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
	TicketStatusRejected   TicketStatus = "Rejected"
)

// TicketPriority represents the priority level of a ticket
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Valid reports whether p is a recognized priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketTypeComplaint is the fixed ticketType discriminator for complaints,
// as opposed to scheduled service requests.
const TicketTypeComplaint = "complaint"

// Comment is embedded in its parent record, append-only and never edited.
// AuthorName is snapshotted at append time so renames don't rewrite history.
type Comment struct {
	AuthorID   primitive.ObjectID `json:"author_id" bson:"author_id"`
	AuthorName string             `json:"author_name" bson:"author_name"`
	Text       string             `json:"text" bson:"text"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// Ticket is a hardware/software complaint filed by an employee.
type Ticket struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TicketID    string             `json:"ticketId" bson:"ticket_id"`
	TicketType  string             `json:"ticketType" bson:"ticket_type"`
	Type        string             `json:"type" bson:"type"` // Hardware | Software
	Category    string             `json:"category" bson:"category"`
	Subcategory string             `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Description string             `json:"description" bson:"description"`
	Priority    TicketPriority     `json:"priority" bson:"priority"`
	Status      TicketStatus       `json:"status" bson:"status"`

	CreatedBy  primitive.ObjectID  `json:"createdBy" bson:"created_by"`
	AssignedTo *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`

	Attachments []string  `json:"attachments,omitempty" bson:"attachments,omitempty"`
	Comments    []Comment `json:"comments" bson:"comments"`

	ResolvedAt *time.Time `json:"resolvedAt,omitempty" bson:"resolved_at,omitempty"`
	ClosedAt   *time.Time `json:"closedAt,omitempty" bson:"closed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}
