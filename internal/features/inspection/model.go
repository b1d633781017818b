package inspection

import (
	"math"
	"slices"
	"time"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusReviewed   Status = "reviewed"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

var statuses = []Status{StatusDraft, StatusInProgress, StatusCompleted, StatusReviewed, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

// ChecklistItem is one answer. Compliant is nil while unanswered.
type ChecklistItem struct {
	Compliant   *bool  `json:"compliant,omitempty" bson:"compliant,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Notes       string `json:"notes,omitempty" bson:"notes,omitempty"`
}

type Inspection struct {
	ID                string                   `json:"id" bson:"_id"`
	EstablishmentName string                   `json:"establishment_name" bson:"establishment_name"`
	Address           string                   `json:"address" bson:"address"`
	ContactPhone      string                   `json:"contact_phone,omitempty" bson:"contact_phone,omitempty"`
	Date              time.Time                `json:"date" bson:"date"`
	InspectorID       string                   `json:"inspector_id" bson:"inspector_id"`
	InspectorEmail    string                   `json:"inspector_email" bson:"inspector_email"`
	Status            Status                   `json:"status" bson:"status"`
	Checklist         map[string]ChecklistItem `json:"checklist" bson:"checklist"`
	CreatedAt         *time.Time               `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt         *time.Time               `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	UpdatedBy         string                   `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	Version           int64                    `json:"version" bson:"version"`
}

// InspectionInput carries the editable fields of create and update.
type InspectionInput struct {
	EstablishmentName string                   `json:"establishment_name" validate:"required,min=2,max=100"`
	Address           string                   `json:"address" validate:"required,min=5"`
	ContactPhone      string                   `json:"contact_phone" validate:"omitempty,e164"`
	Date              *time.Time               `json:"date" validate:"required"`
	Checklist         map[string]ChecklistItem `json:"checklist" validate:"required,min=1"`
}

// Query narrows the stored inspections before the list view runs.
type Query struct {
	InspectorID string
	From        *time.Time
	To          *time.Time
}

type NonCompliantItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
}

type ComplianceStats struct {
	TotalItems           int                `json:"total_items"`
	CompletedItems       int                `json:"completed_items"`
	CompliancePercentage int                `json:"compliance_percentage"`
	NonCompliantItems    []NonCompliantItem `json:"non_compliant_items"`
}

// Compliance counts compliant answers against every checklist entry,
// unanswered ones included.
func Compliance(checklist map[string]ChecklistItem) ComplianceStats {
	stats := ComplianceStats{TotalItems: len(checklist), NonCompliantItems: []NonCompliantItem{}}

	ids := make([]string, 0, len(checklist))
	for id := range checklist {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		item := checklist[id]
		switch {
		case item.Compliant == nil:
		case *item.Compliant:
			stats.CompletedItems++
		default:
			desc := item.Description
			if desc == "" {
				desc = id
			}
			stats.NonCompliantItems = append(stats.NonCompliantItems, NonCompliantItem{ID: id, Description: desc, Notes: item.Notes})
		}
	}
	if stats.TotalItems > 0 {
		stats.CompliancePercentage = int(math.Round(float64(stats.CompletedItems) * 100 / float64(stats.TotalItems)))
	}
	return stats
}
