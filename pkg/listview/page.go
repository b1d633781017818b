package listview

// Page is one slice of a filtered collection. StartIndex and EndIndex are the
// 1-based display range; both are 0 when the page is empty.
type Page[T any] struct {
	Items        []T  `json:"items"`
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	CurrentPage  int  `json:"current_page"`
	ItemsPerPage int  `json:"items_per_page"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
	StartIndex   int  `json:"start_index"`
	EndIndex     int  `json:"end_index"`
}

// Paginate slices [(page-1)*size, page*size) out of filtered.
func Paginate[T any](filtered []T, page, size int) Page[T] {
	page = max(1, page)
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(filtered)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	// page-1 < totalPages keeps (page-1)*size below total, so it cannot overflow.
	start, end := total, total
	if page-1 < totalPages {
		start = (page - 1) * size
		end = start + min(size, total-start)
	}

	items := make([]T, end-start)
	copy(items, filtered[start:end])

	p := Page[T]{
		Items:        items,
		TotalItems:   total,
		TotalPages:   totalPages,
		CurrentPage:  page,
		ItemsPerPage: size,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
	if end > start {
		p.StartIndex = start + 1
		p.EndIndex = end
	}
	return p
}
