package entities

import (
	"strings"
	"time"

	"symptocare-backend/domain/core/valueobjects"
	"symptocare-backend/domain/events"
	pkgerrors "symptocare-backend/pkg/errors"
)

// SupportContact is a friend or family member on the plan
type SupportContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// ProfessionalContact is a clinician or service on the plan
type ProfessionalContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}

// SafetyPlanContent is the body of a safety plan
type SafetyPlanContent struct {
	WarningSigns         []string              `json:"warning_signs"`
	CopingStrategies     []string              `json:"coping_strategies"`
	SupportContacts      []SupportContact      `json:"support_contacts"`
	SafeEnvironmentSteps []string              `json:"safe_environment_steps"`
	ReasonsToLive        []string              `json:"reasons_to_live"`
	ProfessionalContacts []ProfessionalContact `json:"professional_contacts"`
}

// SafetyPlan is the single per-user crisis plan
type SafetyPlan struct {
	id        valueobjects.RecordID
	userID    string
	content   SafetyPlanContent
	createdAt time.Time
	updatedAt time.Time

	events []events.DomainEvent
}

// EmptySafetyPlan is what a user without a saved plan sees
func EmptySafetyPlan(userID string) *SafetyPlan {
	return &SafetyPlan{
		userID:  userID,
		content: normalizePlan(SafetyPlanContent{}),
		events:  []events.DomainEvent{},
	}
}

// NewSafetyPlan creates a plan for a user who has none
func NewSafetyPlan(userID string, content SafetyPlanContent, now time.Time) (*SafetyPlan, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	plan := &SafetyPlan{
		id:        valueobjects.NewRecordID(),
		userID:    userID,
		createdAt: now.UTC(),
		events:    []events.DomainEvent{},
	}
	plan.Replace(content, now)
	return plan, nil
}

// ReconstructSafetyPlan rebuilds a plan from storage
func ReconstructSafetyPlan(id, userID string, content SafetyPlanContent, createdAt, updatedAt time.Time) (*SafetyPlan, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	recordID, err := valueobjects.RecordIDFromStorage(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return &SafetyPlan{
		id:        recordID,
		userID:    userID,
		content:   normalizePlan(content),
		createdAt: createdAt,
		updatedAt: updatedAt,
		events:    []events.DomainEvent{},
	}, nil
}

// Replace overwrites the plan body. Blank list items and contacts
// without a name or phone are dropped.
func (p *SafetyPlan) Replace(content SafetyPlanContent, now time.Time) {
	p.content = normalizePlan(content)
	p.updatedAt = now.UTC()

	p.addEvent(events.NewSafetyPlanSaved(
		p.id.String(),
		p.userID,
		len(p.content.SupportContacts)+len(p.content.ProfessionalContacts),
		len(p.content.CopingStrategies),
		p.updatedAt,
	))
}

// IsSaved reports whether the plan exists in storage
func (p *SafetyPlan) IsSaved() bool { return !p.id.IsZero() }

func (p *SafetyPlan) ID() valueobjects.RecordID { return p.id }
func (p *SafetyPlan) UserID() string { return p.userID }
func (p *SafetyPlan) CreatedAt() time.Time { return p.createdAt }
func (p *SafetyPlan) UpdatedAt() time.Time { return p.updatedAt }

// Content returns the plan body
func (p *SafetyPlan) Content() SafetyPlanContent { return p.content }

// GetUncommittedEvents returns events raised since the last commit
func (p *SafetyPlan) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the pending events
func (p *SafetyPlan) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *SafetyPlan) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}

func normalizePlan(c SafetyPlanContent) SafetyPlanContent {
	out := SafetyPlanContent{
		WarningSigns:         cleanList(c.WarningSigns),
		CopingStrategies:     cleanList(c.CopingStrategies),
		SafeEnvironmentSteps: cleanList(c.SafeEnvironmentSteps),
		ReasonsToLive:        cleanList(c.ReasonsToLive),
		SupportContacts:      []SupportContact{},
		ProfessionalContacts: []ProfessionalContact{},
	}
	for _, sc := range c.SupportContacts {
		sc.Name, sc.Phone, sc.Relationship = strings.TrimSpace(sc.Name), strings.TrimSpace(sc.Phone), strings.TrimSpace(sc.Relationship)
		if sc.Name == "" && sc.Phone == "" {
			continue
		}
		out.SupportContacts = append(out.SupportContacts, sc)
	}
	for _, pc := range c.ProfessionalContacts {
		pc.Name, pc.Phone, pc.Type = strings.TrimSpace(pc.Name), strings.TrimSpace(pc.Phone), strings.TrimSpace(pc.Type)
		if pc.Name == "" && pc.Phone == "" {
			continue
		}
		out.ProfessionalContacts = append(out.ProfessionalContacts, pc)
	}
	return out
}
