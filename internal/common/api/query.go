package api

import (
	"strings"

	"eic-admin/pkg/listview"

	"github.com/gofiber/fiber/v2"
)

// ViewState reads list parameters from the query string on top of defaults.
// Supported keys: search, category, status, sort_by, sort_order, page, limit.
func ViewState(c *fiber.Ctx, defaults listview.State) listview.State {
	st := defaults

	if v := c.Query("search"); v != "" {
		st.SearchTerm = v
	}
	if v := c.Query("category"); v != "" {
		st.Category = v
	}
	switch listview.Status(strings.ToLower(c.Query("status"))) {
	case listview.StatusActive:
		st.Status = listview.StatusActive
	case listview.StatusInactive:
		st.Status = listview.StatusInactive
	case listview.StatusAll:
		st.Status = listview.StatusAll
	}
	if v := c.Query("sort_by"); v != "" {
		st.SortBy = v
	}
	switch listview.Order(strings.ToLower(c.Query("sort_order"))) {
	case listview.Asc:
		st.SortOrder = listview.Asc
	case listview.Desc:
		st.SortOrder = listview.Desc
	}

	st.CurrentPage = c.QueryInt("page", st.CurrentPage)
	st.ItemsPerPage = c.QueryInt("limit", st.ItemsPerPage)

	return st.Normalize()
}
