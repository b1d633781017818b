// Package inspection stores inspections and gates every operation on the
// caller's inspections.* catalog permissions.
package inspection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eic-admin/internal/common/errs"
	common_models "eic-admin/internal/common/models"
	"eic-admin/internal/common/validation"
	"eic-admin/internal/features/audit"
	"eic-admin/internal/features/auth"
	"eic-admin/pkg/listview"

	"go.uber.org/zap"
)

const auditModule = "inspections"

type InspectionService interface {
	ListInspections(ctx context.Context, q Query, st listview.State) (listview.Page[Inspection], error)
	GetInspection(ctx context.Context, id string) (*Inspection, error)
	CreateInspection(ctx context.Context, in InspectionInput) (*Inspection, error)
	UpdateInspection(ctx context.Context, id string, in InspectionInput) (*Inspection, error)
	ChangeStatus(ctx context.Context, id string, to Status) (*Inspection, error)
	DeleteInspection(ctx context.Context, id string) error
	ComplianceStats(ctx context.Context, id string) (*ComplianceStats, error)
}

type InspectionServiceImpl struct {
	Repo         InspectionRepository
	Policy       Policy
	AuditService audit.AuditService
	Logger       *zap.Logger

	now       func() time.Time
	validator *validation.Validator
	schema    listview.Schema[Inspection]
}

func NewInspectionService(repo InspectionRepository, perms Permissions, auditService audit.AuditService, logger *zap.Logger) InspectionService {
	return &InspectionServiceImpl{
		Repo:         repo,
		Policy:       NewPolicy(perms),
		AuditService: auditService,
		Logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		validator:    validation.New(),
		schema:       viewSchema(),
	}
}

func actorFrom(ctx context.Context) (*auth.Actor, error) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok || actor.ID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", errs.ErrAuthentication)
	}
	return actor, nil
}

func denied(action string) error {
	return fmt.Errorf("%w: cannot %s this inspection", errs.ErrAuthorization, action)
}

// endOfDay is the last instant of t's UTC day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
}

func normalizeInput(in InspectionInput) InspectionInput {
	in.EstablishmentName = strings.TrimSpace(in.EstablishmentName)
	in.Address = strings.TrimSpace(in.Address)
	in.ContactPhone = normalizePhone(in.ContactPhone)
	return in
}

// normalizePhone drops spacing and punctuation and stores the number with a
// leading "+".
func normalizePhone(phone string) string {
	phone = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, phone)
	if phone != "" && !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone
}

func (s *InspectionServiceImpl) validate(in InspectionInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}
	if in.Date.After(endOfDay(s.now())) {
		return errs.Validation("date", "not_future", "inspection date cannot be in the future")
	}
	return nil
}

func (s *InspectionServiceImpl) ListInspections(ctx context.Context, q Query, st listview.State) (listview.Page[Inspection], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return listview.Page[Inspection]{}, err
	}
	if !s.Policy.CanList(actor) {
		return listview.Page[Inspection]{}, fmt.Errorf("%w: cannot view inspections", errs.ErrAuthorization)
	}
	if !s.Policy.CanViewAll(actor) {
		q.InspectorID = actor.ID
	}
	if q.To != nil {
		to := endOfDay(*q.To)
		q.To = &to
	}

	items, err := s.Repo.List(ctx, q)
	if err != nil {
		return listview.Page[Inspection]{}, err
	}
	return listview.Apply(items, s.schema, st), nil
}

// find loads id and applies the view check.
func (s *InspectionServiceImpl) find(ctx context.Context, actor *auth.Actor, id string) (*Inspection, error) {
	insp, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Policy.CanView(actor, insp) {
		return nil, denied("view")
	}
	return insp, nil
}

func (s *InspectionServiceImpl) GetInspection(ctx context.Context, id string) (*Inspection, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, actor, id)
}

func (s *InspectionServiceImpl) CreateInspection(ctx context.Context, in InspectionInput) (*Inspection, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Policy.CanCreate(actor) {
		return nil, fmt.Errorf("%w: cannot create inspections", errs.ErrAuthorization)
	}

	in = normalizeInput(in)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	insp := &Inspection{
		EstablishmentName: in.EstablishmentName,
		Address:           in.Address,
		ContactPhone:      in.ContactPhone,
		Date:              in.Date.UTC(),
		InspectorID:       actor.ID,
		InspectorEmail:    actor.Email,
		Status:            StatusDraft,
		Checklist:         in.Checklist,
		UpdatedBy:         actor.ID,
	}
	if err := s.Repo.Create(ctx, insp); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, auditModule, insp.ID, map[string]common_models.Change{
		"establishment_name": {New: insp.EstablishmentName},
		"status":             {New: insp.Status},
	})
	s.Logger.Info("Inspection created", zap.String("inspection_id", insp.ID), zap.String("inspector_id", actor.ID))
	return insp, nil
}

func (s *InspectionServiceImpl) UpdateInspection(ctx context.Context, id string, in InspectionInput) (*Inspection, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.Policy.CanEdit(actor, current) {
		return nil, denied("edit")
	}

	in = normalizeInput(in)
	if err := s.validate(in); err != nil {
		return nil, err
	}
	utc := in.Date.UTC()
	in.Date = &utc

	updated, err := s.Repo.Update(ctx, id, in, actor.ID)
	if err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}
	if current.EstablishmentName != updated.EstablishmentName {
		changes["establishment_name"] = common_models.Change{Old: current.EstablishmentName, New: updated.EstablishmentName}
	}
	if current.Address != updated.Address {
		changes["address"] = common_models.Change{Old: current.Address, New: updated.Address}
	}
	if !current.Date.Equal(updated.Date) {
		changes["date"] = common_models.Change{Old: current.Date, New: updated.Date}
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, auditModule, id, changes)
	return updated, nil
}

func (s *InspectionServiceImpl) ChangeStatus(ctx context.Context, id string, to Status) (*Inspection, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, errs.Validation("status", "oneof", fmt.Sprintf("unknown inspection status %q", to))
	}
	current, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.Policy.CanChangeStatus(actor, current, to) {
		return nil, fmt.Errorf("%w: cannot move inspection to %s", errs.ErrAuthorization, to)
	}

	updated, err := s.Repo.SetStatus(ctx, id, to, actor.ID)
	if err != nil {
		return nil, err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, auditModule, id, map[string]common_models.Change{
		"status": {Old: current.Status, New: updated.Status},
	})
	s.Logger.Info("Inspection status changed",
		zap.String("inspection_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)),
	)
	return updated, nil
}

func (s *InspectionServiceImpl) DeleteInspection(ctx context.Context, id string) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	current, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.Policy.CanDelete(actor, current) {
		return denied("delete")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, auditModule, id, map[string]common_models.Change{
		"establishment_name": {Old: current.EstablishmentName},
	})
	return nil
}

func (s *InspectionServiceImpl) ComplianceStats(ctx context.Context, id string) (*ComplianceStats, error) {
	insp, err := s.GetInspection(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := Compliance(insp.Checklist)
	return &stats, nil
}
