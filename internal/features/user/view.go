package user

import (
	"cmp"
	"time"

	"eic-admin/pkg/listview"
	"eic-admin/pkg/syncache"
)

const (
	SortDisplayName = "displayName"
	SortEmail       = "email"
	SortRole        = "role"
	SortCreatedAt   = "createdAt"
	SortLastLogin   = "lastLogin"
	SortUpdatedAt   = "updatedAt"
)

func DefaultViewState() listview.State {
	return listview.NewState(SortCreatedAt, listview.Desc)
}

func viewSchema() listview.Schema[User] {
	return listview.Schema[User]{
		Search:   func(u User) []string { return []string{u.DisplayName, u.Email, u.Role} },
		Category: func(u User) string { return u.Role },
		Active:   func(u User) bool { return u.IsActive },
		Sort: map[string]listview.Compare[User]{
			SortDisplayName: listview.ByString(func(u User) string { return u.DisplayName }),
			SortEmail:       listview.ByString(func(u User) string { return u.Email }),
			SortRole:        listview.ByString(func(u User) string { return u.Role }),
			SortCreatedAt:   listview.ByTime(func(u User) *time.Time { return u.CreatedAt }),
			SortLastLogin:   listview.ByTime(func(u User) *time.Time { return u.LastLogin }),
			SortUpdatedAt:   listview.ByTime(func(u User) *time.Time { return u.UpdatedAt }),
		},
	}
}

func cacheKeys() syncache.Keys[User] {
	return syncache.Keys[User]{
		ID:      func(u User) string { return u.ID },
		Version: func(u User) int64 { return u.Version },
		Order: func(a, b User) int {
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
