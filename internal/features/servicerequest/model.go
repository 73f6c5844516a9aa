package servicerequest

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/features/ticket"
)

// RequestStatus is the closed status set for scheduled service requests.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "Pending"
	RequestStatusApproved   RequestStatus = "Approved"
	RequestStatusRejected   RequestStatus = "Rejected"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusCompleted  RequestStatus = "Completed"
)

// ServiceType classifies the requested assistance.
type ServiceType string

const (
	ServiceTypeInstallation ServiceType = "Installation"
	ServiceTypeRepair       ServiceType = "Repair"
	ServiceTypeMaintenance  ServiceType = "Maintenance"
	ServiceTypeTraining     ServiceType = "Training"
	ServiceTypeOther        ServiceType = "Other"
)

// Valid reports whether t is a recognized service type.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeInstallation, ServiceTypeRepair, ServiceTypeMaintenance, ServiceTypeTraining, ServiceTypeOther:
		return true
	}
	return false
}

// TicketTypeServiceRequest is the fixed ticketType discriminator.
const TicketTypeServiceRequest = "service_request"

// ServiceRequest is a scheduled request for IT assistance. It shares the
// classification, priority, and comment shape with Ticket.
type ServiceRequest struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RequestID  string             `json:"requestId" bson:"request_id"`
	TicketType string             `json:"ticketType" bson:"ticket_type"`

	DateFrom      time.Time   `json:"dateFrom" bson:"date_from"`
	DateTo        time.Time   `json:"dateTo" bson:"date_to"`
	DurationHours float64     `json:"durationHours" bson:"duration_hours"`
	ServiceType   ServiceType `json:"serviceType" bson:"service_type"`
	ServiceSub    string      `json:"serviceSubType,omitempty" bson:"service_sub_type,omitempty"`

	Category    string                `json:"category" bson:"category"`
	Subcategory string                `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Description string                `json:"description" bson:"description"`
	Priority    ticket.TicketPriority `json:"priority" bson:"priority"`
	Status      RequestStatus         `json:"status" bson:"status"`

	CreatedBy  primitive.ObjectID  `json:"createdBy" bson:"created_by"`
	AssignedTo *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`

	Attachments []string         `json:"attachments,omitempty" bson:"attachments,omitempty"`
	Comments    []ticket.Comment `json:"comments" bson:"comments"`

	ApprovedBy      *primitive.ObjectID `json:"approvedBy,omitempty" bson:"approved_by,omitempty"`
	ApprovedAt      *time.Time          `json:"approvedAt,omitempty" bson:"approved_at,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty" bson:"rejection_reason,omitempty"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty" bson:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
