package inspection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"eic-admin/internal/common/errs"
	common_models "eic-admin/internal/common/models"
	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
	"eic-admin/internal/features/role"
	"eic-admin/pkg/listview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockInspectionRepo struct {
	mu    sync.Mutex
	items map[string]Inspection
	seq   int
	clock time.Time
}

func NewMockInspectionRepo() *MockInspectionRepo {
	return &MockInspectionRepo{
		items: map[string]Inspection{},
		clock: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *MockInspectionRepo) now() *time.Time {
	m.clock = m.clock.Add(time.Minute)
	t := m.clock
	return &t
}

func (m *MockInspectionRepo) Create(_ context.Context, insp *Inspection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	insp.ID = fmt.Sprintf("insp-%d", m.seq)
	insp.CreatedAt = m.now()
	insp.UpdatedAt = insp.CreatedAt
	insp.Version = 1
	m.items[insp.ID] = *insp
	return nil
}

func (m *MockInspectionRepo) FindByID(_ context.Context, id string) (*Inspection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	insp, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: inspection %s", errs.ErrNotFound, id)
	}
	return &insp, nil
}

func (m *MockInspectionRepo) List(_ context.Context, q Query) ([]Inspection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Inspection{}
	for _, insp := range m.items {
		if q.InspectorID != "" && insp.InspectorID != q.InspectorID {
			continue
		}
		if q.From != nil && insp.Date.Before(*q.From) {
			continue
		}
		if q.To != nil && insp.Date.After(*q.To) {
			continue
		}
		out = append(out, insp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *MockInspectionRepo) mutate(id string, fn func(*Inspection)) (*Inspection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	insp, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: inspection %s", errs.ErrNotFound, id)
	}
	fn(&insp)
	insp.Version++
	insp.UpdatedAt = m.now()
	m.items[id] = insp
	return &insp, nil
}

func (m *MockInspectionRepo) Update(_ context.Context, id string, in InspectionInput, updatedBy string) (*Inspection, error) {
	return m.mutate(id, func(i *Inspection) {
		i.EstablishmentName, i.Address, i.ContactPhone = in.EstablishmentName, in.Address, in.ContactPhone
		i.Checklist, i.UpdatedBy = in.Checklist, updatedBy
		if in.Date != nil {
			i.Date = *in.Date
		}
	})
}

func (m *MockInspectionRepo) SetStatus(_ context.Context, id string, status Status, updatedBy string) (*Inspection, error) {
	return m.mutate(id, func(i *Inspection) { i.Status, i.UpdatedBy = status, updatedBy })
}

func (m *MockInspectionRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: inspection %s", errs.ErrNotFound, id)
	}
	delete(m.items, id)
	return nil
}

func (m *MockInspectionRepo) EnsureIndexes(context.Context) error { return nil }

// rolePermissions grants the default sets of the system roles plus any extras.
type rolePermissions map[string]permission.Set

func newRolePermissions() rolePermissions {
	out := rolePermissions{
		"inspector_lead": permission.Set{permission.ModuleInspections: {"view": true, "approve": true}},
	}
	for _, r := range role.DefaultRoles() {
		out[r.ID] = r.Permissions
	}
	return out
}

func (r rolePermissions) HasPermission(roleID, module, perm string) bool {
	return r[roleID].Has(module, perm)
}

type MockAudit struct {
	Actions []common_models.AuditAction
}

func (m *MockAudit) LogChange(_ context.Context, action common_models.AuditAction, _ string, _ string, _ map[string]common_models.Change) error {
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *MockAudit) ListLogs(context.Context, map[string]interface{}, int64, int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

var (
	ana   = &auth.Actor{ID: "ana", Email: "ana@eic.test", Role: role.Employee}
	ben   = &auth.Actor{ID: "ben", Email: "ben@eic.test", Role: role.Employee}
	maria = &auth.Actor{ID: "maria", Email: "maria@eic.test", Role: role.Manager}
	alex  = &auth.Actor{ID: "alex", Email: "alex@eic.test", Role: role.Admin}
	root  = &auth.Actor{ID: "root", Email: "root@eic.test", Role: role.SuperAdmin}
	lead  = &auth.Actor{ID: "lead", Email: "lead@eic.test", Role: "inspector_lead"}
)

type fixture struct {
	svc   *InspectionServiceImpl
	repo  *MockInspectionRepo
	audit *MockAudit
}

func newFixture() fixture {
	f := fixture{repo: NewMockInspectionRepo(), audit: &MockAudit{}}
	svc := NewInspectionService(f.repo, newRolePermissions(), f.audit, zap.NewNop())
	f.svc = svc.(*InspectionServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return f
}

func as(actor *auth.Actor) context.Context {
	return auth.WithActor(context.Background(), actor)
}

func day(d int) *time.Time {
	t := time.Date(2026, 3, d, 9, 30, 0, 0, time.UTC)
	return &t
}

func yes() *bool { v := true; return &v }
func no() *bool  { v := false; return &v }

func validInput() InspectionInput {
	return InspectionInput{
		EstablishmentName: " Cafe Central ",
		Address:           "Av. Corrientes 1234",
		ContactPhone:      "54 (11) 5555-1234",
		Date:              day(9),
		Checklist: map[string]ChecklistItem{
			"fire_exits": {Compliant: yes()},
		},
	}
}

func (f fixture) create(t *testing.T, actor *auth.Actor, name string, date *time.Time) *Inspection {
	t.Helper()
	in := validInput()
	in.EstablishmentName = name
	in.Date = date
	insp, err := f.svc.CreateInspection(as(actor), in)
	require.NoError(t, err)
	return insp
}

func TestCreateInspection(t *testing.T) {
	f := newFixture()

	insp, err := f.svc.CreateInspection(as(ana), validInput())
	require.NoError(t, err)

	require.Equal(t, "Cafe Central", insp.EstablishmentName)
	require.Equal(t, "+541155551234", insp.ContactPhone)
	require.Equal(t, StatusDraft, insp.Status)
	require.Equal(t, ana.ID, insp.InspectorID)
	require.Equal(t, ana.Email, insp.InspectorEmail)
	require.Equal(t, []common_models.AuditAction{common_models.AuditActionCreate}, f.audit.Actions)
}

func TestCreateInspectionValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*InspectionInput)
		field string
		rule  string
	}{
		{"short establishment", func(in *InspectionInput) { in.EstablishmentName = " C " }, "establishment_name", "min"},
		{"missing address", func(in *InspectionInput) { in.Address = "" }, "address", "required"},
		{"short address", func(in *InspectionInput) { in.Address = "Av 1" }, "address", "min"},
		{"bad phone", func(in *InspectionInput) { in.ContactPhone = "call me" }, "contact_phone", "e164"},
		{"missing date", func(in *InspectionInput) { in.Date = nil }, "date", "required"},
		{"future date", func(in *InspectionInput) { in.Date = day(11) }, "date", "not_future"},
		{"empty checklist", func(in *InspectionInput) { in.Checklist = map[string]ChecklistItem{} }, "checklist", "min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := validInput()
			tt.edit(&in)

			_, err := f.svc.CreateInspection(as(ana), in)
			require.ErrorIs(t, err, errs.ErrValidation)
			ve, ok := errs.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.rule, ve.Rule)
		})
	}
}

func TestCreateInspectionAllowsLaterToday(t *testing.T) {
	f := newFixture()
	in := validInput()
	later := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	in.Date = &later

	_, err := f.svc.CreateInspection(as(ana), in)
	require.NoError(t, err)
}

func TestInspectionsRequireAuthentication(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateInspection(context.Background(), validInput())
	require.ErrorIs(t, err, errs.ErrAuthentication)

	_, err = f.svc.ListInspections(context.Background(), Query{}, DefaultViewState())
	require.ErrorIs(t, err, errs.ErrAuthentication)
}

func TestListInspectionsScopesToOwnerWithoutApprove(t *testing.T) {
	f := newFixture()
	f.create(t, ana, "Cafe Central", day(3))
	f.create(t, ben, "Bar Sur", day(5))
	f.create(t, ana, "Panaderia Norte", day(7))

	names := func(p listview.Page[Inspection]) []string {
		out := []string{}
		for _, i := range p.Items {
			out = append(out, i.EstablishmentName)
		}
		return out
	}

	page, err := f.svc.ListInspections(as(ana), Query{}, DefaultViewState())
	require.NoError(t, err)
	require.Equal(t, []string{"Panaderia Norte", "Cafe Central"}, names(page))

	// asking for someone else's inspections still returns only your own
	page, err = f.svc.ListInspections(as(ana), Query{InspectorID: ben.ID}, DefaultViewState())
	require.NoError(t, err)
	require.Equal(t, []string{"Panaderia Norte", "Cafe Central"}, names(page))

	for _, actor := range []*auth.Actor{maria, alex, root, lead} {
		page, err = f.svc.ListInspections(as(actor), Query{}, DefaultViewState())
		require.NoError(t, err)
		require.Equal(t, 3, page.TotalItems, actor.Role)
	}

	page, err = f.svc.ListInspections(as(maria), Query{InspectorID: ben.ID}, DefaultViewState())
	require.NoError(t, err)
	require.Equal(t, []string{"Bar Sur"}, names(page))

	st := DefaultViewState()
	st.SetSearchTerm("norte")
	page, err = f.svc.ListInspections(as(maria), Query{}, st)
	require.NoError(t, err)
	require.Equal(t, []string{"Panaderia Norte"}, names(page))
}

func TestListInspectionsDateRangeIncludesLastDay(t *testing.T) {
	f := newFixture()
	f.create(t, ana, "Early", day(3))
	f.create(t, ana, "Middle", day(5))
	f.create(t, ana, "Late", day(7))

	from := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	page, err := f.svc.ListInspections(as(maria), Query{From: &from, To: &to}, DefaultViewState())
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalItems)
	require.Equal(t, "Late", page.Items[0].EstablishmentName)
	require.Equal(t, "Middle", page.Items[1].EstablishmentName)
}

func TestListInspectionsFiltersByStatus(t *testing.T) {
	f := newFixture()
	a := f.create(t, ana, "Cafe Central", day(3))
	f.create(t, ana, "Bar Sur", day(5))

	_, err := f.svc.ChangeStatus(as(ana), a.ID, StatusInProgress)
	require.NoError(t, err)

	st := DefaultViewState()
	st.SetCategory(string(StatusInProgress))
	page, err := f.svc.ListInspections(as(ana), Query{}, st)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalItems)
	require.Equal(t, a.ID, page.Items[0].ID)
}

func TestGetInspectionHidesOtherInspectors(t *testing.T) {
	f := newFixture()
	insp := f.create(t, ben, "Bar Sur", day(5))

	_, err := f.svc.GetInspection(as(ana), insp.ID)
	require.ErrorIs(t, err, errs.ErrAuthorization)

	got, err := f.svc.GetInspection(as(lead), insp.ID)
	require.NoError(t, err)
	require.Equal(t, insp.ID, got.ID)

	_, err = f.svc.GetInspection(as(maria), "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateInspection(t *testing.T) {
	f := newFixture()
	insp := f.create(t, ana, "Cafe Central", day(3))

	in := validInput()
	in.EstablishmentName = "Cafe Central II"
	updated, err := f.svc.UpdateInspection(as(ana), insp.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Cafe Central II", updated.EstablishmentName)
	require.Equal(t, int64(2), updated.Version)

	_, err = f.svc.UpdateInspection(as(ben), insp.ID, in)
	require.ErrorIs(t, err, errs.ErrAuthorization)

	// view and approve alone do not allow editing
	_, err = f.svc.UpdateInspection(as(lead), insp.ID, in)
	require.ErrorIs(t, err, errs.ErrAuthorization)

	_, err = f.svc.UpdateInspection(as(maria), insp.ID, in)
	require.NoError(t, err)

	in.Address = "x"
	_, err = f.svc.UpdateInspection(as(maria), insp.ID, in)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestChangeStatus(t *testing.T) {
	f := newFixture()
	insp := f.create(t, ana, "Cafe Central", day(3))

	tests := []struct {
		actor *auth.Actor
		to    Status
		err   error
	}{
		{ana, StatusInProgress, nil},
		{ana, StatusCompleted, nil},
		{ana, StatusApproved, errs.ErrAuthorization},
		{ben, StatusInProgress, errs.ErrAuthorization},
		{maria, StatusReviewed, nil},
		{maria, StatusApproved, nil},
		{maria, StatusDraft, errs.ErrAuthorization},
		{lead, StatusRejected, nil},
		{root, StatusDraft, nil},
		{root, Status("archived"), errs.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.actor.ID, tt.to), func(t *testing.T) {
			got, err := f.svc.ChangeStatus(as(tt.actor), insp.ID, tt.to)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.to, got.Status)
			require.Equal(t, tt.actor.ID, got.UpdatedBy)
		})
	}
}

func TestDeleteInspection(t *testing.T) {
	f := newFixture()
	draft := f.create(t, ana, "Cafe Central", day(3))
	approved := f.create(t, ana, "Bar Sur", day(4))
	_, err := f.svc.ChangeStatus(as(root), approved.ID, StatusApproved)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteInspection(as(ana), draft.ID), errs.ErrAuthorization)
	require.ErrorIs(t, f.svc.DeleteInspection(as(maria), draft.ID), errs.ErrAuthorization)
	require.ErrorIs(t, f.svc.DeleteInspection(as(alex), approved.ID), errs.ErrAuthorization)

	require.NoError(t, f.svc.DeleteInspection(as(alex), draft.ID))
	require.NoError(t, f.svc.DeleteInspection(as(root), approved.ID))
	require.ErrorIs(t, f.svc.DeleteInspection(as(root), approved.ID), errs.ErrNotFound)

	require.Empty(t, f.repo.items)
	require.Contains(t, f.audit.Actions, common_models.AuditActionDelete)
}

func TestComplianceStats(t *testing.T) {
	f := newFixture()
	in := validInput()
	in.Checklist = map[string]ChecklistItem{
		"fire_exits":   {Compliant: yes()},
		"signage":      {Compliant: yes()},
		"extinguisher": {Compliant: no(), Description: "Extinguisher expired", Notes: "replace"},
		"lighting":     {},
	}
	insp, err := f.svc.CreateInspection(as(ana), in)
	require.NoError(t, err)

	stats, err := f.svc.ComplianceStats(as(ana), insp.ID)
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalItems)
	require.Equal(t, 2, stats.CompletedItems)
	require.Equal(t, 50, stats.CompliancePercentage)
	require.Equal(t, []NonCompliantItem{{ID: "extinguisher", Description: "Extinguisher expired", Notes: "replace"}}, stats.NonCompliantItems)

	_, err = f.svc.ComplianceStats(as(ben), insp.ID)
	require.ErrorIs(t, err, errs.ErrAuthorization)
}

func TestComplianceRounding(t *testing.T) {
	stats := Compliance(map[string]ChecklistItem{
		"a": {Compliant: yes()},
		"b": {Compliant: yes()},
		"c": {Compliant: no()},
	})
	require.Equal(t, 67, stats.CompliancePercentage)
	require.Equal(t, "c", stats.NonCompliantItems[0].Description)

	empty := Compliance(nil)
	require.Zero(t, empty.TotalItems)
	require.Zero(t, empty.CompliancePercentage)
	require.NotNil(t, empty.NonCompliantItems)
}
