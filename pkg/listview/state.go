package listview

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Status selects records by their active flag.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

const (
	DefaultPageSize = 10
	MinPageSize     = 5
	MaxPageSize     = 100
)

// State holds the search, filter, sort and page parameters of one list.
type State struct {
	SearchTerm   string `json:"search_term"`
	Category     string `json:"category"`
	Status       Status `json:"status"`
	SortBy       string `json:"sort_by"`
	SortOrder    Order  `json:"sort_order"`
	CurrentPage  int    `json:"current_page"`
	ItemsPerPage int    `json:"items_per_page"`
}

func NewState(sortBy string, order Order) State {
	return State{
		Category:     CategoryAll,
		Status:       StatusAll,
		SortBy:       sortBy,
		SortOrder:    order,
		CurrentPage:  1,
		ItemsPerPage: DefaultPageSize,
	}
}

func (s *State) SetSearchTerm(term string) {
	s.SearchTerm = term
	s.CurrentPage = 1
}

func (s *State) SetCategory(category string) {
	s.Category = category
	s.CurrentPage = 1
}

func (s *State) SetStatus(status Status) {
	s.Status = status
	s.CurrentPage = 1
}

func (s *State) SetSorting(sortBy string, order Order) {
	s.SortBy = sortBy
	s.SortOrder = order
}

func (s *State) SetCurrentPage(page int) {
	s.CurrentPage = max(1, page)
}

func (s *State) SetItemsPerPage(n int) {
	s.ItemsPerPage = ClampPageSize(n)
	s.CurrentPage = 1
}

func ClampPageSize(n int) int {
	return max(MinPageSize, min(MaxPageSize, n))
}

// Normalize fills zero values with defaults and clamps out-of-range fields.
func (s State) Normalize() State {
	if s.Category == "" {
		s.Category = CategoryAll
	}
	switch s.Status {
	case StatusActive, StatusInactive:
	default:
		s.Status = StatusAll
	}
	if s.SortOrder != Asc {
		s.SortOrder = Desc
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}
	if s.ItemsPerPage == 0 {
		s.ItemsPerPage = DefaultPageSize
	} else {
		s.ItemsPerPage = ClampPageSize(s.ItemsPerPage)
	}
	return s
}

// filterKey is the part of State that decides membership and order.
type filterKey struct {
	search   string
	category string
	status   Status
	sortBy   string
	order    Order
}

func (s State) filterKey() filterKey {
	return filterKey{
		search:   s.SearchTerm,
		category: s.Category,
		status:   s.Status,
		sortBy:   s.SortBy,
		order:    s.SortOrder,
	}
}
