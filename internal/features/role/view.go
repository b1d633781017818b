package role

import (
	"cmp"
	"strings"
	"time"

	"eic-admin/pkg/listview"
	"eic-admin/pkg/syncache"
)

const (
	SortName            = "name"
	SortCreatedAt       = "createdAt"
	SortUpdatedAt       = "updatedAt"
	SortUsersAssigned   = "usersAssigned"
	SortPermissionCount = "permissionCount"
)

// DefaultViewState is newest first.
func DefaultViewState() listview.State {
	return listview.NewState(SortCreatedAt, listview.Desc)
}

func viewSchema() listview.Schema[Role] {
	return listview.Schema[Role]{
		Search: func(r Role) []string { return []string{r.Name, r.Description} },
		Sort: map[string]listview.Compare[Role]{
			SortName:          listview.ByString(func(r Role) string { return r.Name }),
			SortCreatedAt:     listview.ByTime(func(r Role) *time.Time { return r.CreatedAt }),
			SortUpdatedAt:     listview.ByTime(func(r Role) *time.Time { return r.UpdatedAt }),
			SortUsersAssigned: listview.ByInt(func(r Role) int64 { return r.UsersAssigned }),
			SortPermissionCount: listview.ByInt(func(r Role) int64 {
				return int64(CountPermissions(r.Permissions))
			}),
		},
	}
}

func cacheKeys() syncache.Keys[Role] {
	return syncache.Keys[Role]{
		ID:      func(r Role) string { return r.ID },
		Version: func(r Role) int64 { return r.Version },
		Order: func(a, b Role) int {
			// created_at desc, matching the repository listing
			return cmp.Compare(unix(b.CreatedAt), unix(a.CreatedAt))
		},
	}
}

func unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

func normalizeInput(in RoleInput) RoleInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Permissions == nil {
		in.Permissions = map[string]map[string]bool{}
	}
	return in
}
