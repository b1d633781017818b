package audit

import (
	"context"
	"errors"
	"testing"

	common_models "eic-admin/internal/common/models"
	"eic-admin/internal/features/auth"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAuditRepo struct {
	Created []common_models.AuditLog
	Listed  []common_models.AuditLog
	Err     error
	Offset  int64
}

func (m *MockAuditRepo) Create(_ context.Context, log common_models.AuditLog) error {
	if m.Err != nil {
		return m.Err
	}
	m.Created = append(m.Created, log)
	return nil
}

func (m *MockAuditRepo) List(_ context.Context, _ map[string]interface{}, _, offset int64) ([]common_models.AuditLog, error) {
	m.Offset = offset
	return m.Listed, nil
}

func (m *MockAuditRepo) EnsureIndexes(context.Context) error { return nil }

type MockUserFinder map[string]string

func (m MockUserFinder) DisplayNames(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if name, ok := m[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func TestLogChangeUsesActorFromContext(t *testing.T) {
	repo := &MockAuditRepo{}
	svc := NewAuditService(repo, nil, zap.NewNop())

	ctx := auth.WithActor(context.Background(), &auth.Actor{ID: "root-1", Role: auth.SuperAdminRole})
	require.NoError(t, svc.LogChange(ctx, common_models.AuditActionDelete, "roles", "inspector_lead", nil))
	require.NoError(t, svc.LogChange(context.Background(), common_models.AuditActionSeed, "roles", "employee", nil))

	require.Len(t, repo.Created, 2)
	require.Equal(t, "root-1", repo.Created[0].ActorID)
	require.Equal(t, "system", repo.Created[1].ActorID)
}

func TestLogChangeReturnsRepositoryError(t *testing.T) {
	repo := &MockAuditRepo{Err: errors.New("disk full")}
	svc := NewAuditService(repo, nil, zap.NewNop())

	err := svc.LogChange(context.Background(), common_models.AuditActionCreate, "users", "u1", nil)
	require.Error(t, err)
}

func TestListLogsPopulatesActorNames(t *testing.T) {
	repo := &MockAuditRepo{Listed: []common_models.AuditLog{
		{ActorID: "system"},
		{ActorID: "u1"},
		{ActorID: "ghost"},
	}}
	svc := NewAuditService(repo, MockUserFinder{"u1": "Ana Lopez"}, zap.NewNop())

	logs, err := svc.ListLogs(context.Background(), nil, 3, 10)
	require.NoError(t, err)
	require.Equal(t, int64(20), repo.Offset)
	require.Equal(t, "System", logs[0].ActorName)
	require.Equal(t, "Ana Lopez", logs[1].ActorName)
	require.Equal(t, "Unknown User", logs[2].ActorName)
}
