package inspection

import (
	"time"

	"eic-admin/pkg/listview"
)

const (
	SortDate              = "date"
	SortEstablishmentName = "establishmentName"
	SortStatus            = "status"
	SortCreatedAt         = "createdAt"
	SortUpdatedAt         = "updatedAt"
)

func DefaultViewState() listview.State {
	return listview.NewState(SortDate, listview.Desc)
}

// viewSchema uses the status as category. Inspections have no active flag.
func viewSchema() listview.Schema[Inspection] {
	return listview.Schema[Inspection]{
		Search: func(i Inspection) []string {
			return []string{i.EstablishmentName, i.Address, i.InspectorEmail}
		},
		Category: func(i Inspection) string { return string(i.Status) },
		Sort: map[string]listview.Compare[Inspection]{
			SortDate:              listview.ByTime(func(i Inspection) *time.Time { return &i.Date }),
			SortEstablishmentName: listview.ByString(func(i Inspection) string { return i.EstablishmentName }),
			SortStatus:            listview.ByString(func(i Inspection) string { return string(i.Status) }),
			SortCreatedAt:         listview.ByTime(func(i Inspection) *time.Time { return i.CreatedAt }),
			SortUpdatedAt:         listview.ByTime(func(i Inspection) *time.Time { return i.UpdatedAt }),
		},
	}
}
