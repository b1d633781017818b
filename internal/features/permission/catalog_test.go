package permission

import (
	"testing"

	"eic-admin/internal/common/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogModules(t *testing.T) {
	modules := DefaultCatalog().Modules()
	require.Len(t, modules, 8)

	var keys []string
	for _, m := range modules {
		keys = append(keys, m.Key)
		assert.Len(t, m.Order, len(m.Permissions), m.Key)
	}
	require.Equal(t, []string{
		ModuleDashboard, ModuleInspections, ModuleReports, ModuleAnalytics,
		ModuleUserManagement, ModuleRoleManagement, ModuleTemplates, ModuleSettings,
	}, keys)

	require.True(t, DefaultCatalog().Exists(ModuleInspections, "approve"))
	require.False(t, DefaultCatalog().Exists(ModuleInspections, "fly"))
}

func TestFullCoversEverything(t *testing.T) {
	c := DefaultCatalog()
	full := c.Full()
	require.Equal(t, c.Size(), full.Count())
	require.Equal(t, 35, full.Count())
	require.True(t, full.Covers(Set{ModuleSettings: {"restore": true}}))
}

func TestSetCount(t *testing.T) {
	set := Set{
		ModuleDashboard:   {"view": true, "manage_stats": false},
		ModuleInspections: {"view": true, "perform": true},
		ModuleReports:     {},
	}
	require.Equal(t, 3, set.Count())
	require.Equal(t, 0, Set(nil).Count())

	clone := set.Clone()
	require.Equal(t, 3, clone.Count())
	_, hasFalse := clone[ModuleDashboard]["manage_stats"]
	require.False(t, hasFalse)

	clone[ModuleDashboard]["view"] = false
	require.True(t, set.Has(ModuleDashboard, "view"))
}

func TestCovers(t *testing.T) {
	manager := Set{ModuleDashboard: {"view": true}, ModuleAnalytics: {"view": true}}
	require.True(t, manager.Covers(Set{ModuleDashboard: {"view": true}}))
	require.True(t, manager.Covers(Set{ModuleDashboard: {"manage_stats": false}}))
	require.False(t, manager.Covers(Set{ModuleReports: {"view": true}}))
}

func TestValidate(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate(Set{ModuleReports: {"export": true}}))
	require.NoError(t, c.Validate(nil))

	err := c.Validate(Set{"payroll": {"view": true}})
	require.ErrorIs(t, err, errs.ErrValidation)

	err = c.Validate(Set{ModuleReports: {"print": true}})
	ve, ok := errs.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "permission", ve.Rule)
}
