package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/views"
)

// parsePeriodQuery reads year and month, defaulting to now's. Range checks
// are left to the service.
func parsePeriodQuery(r *http.Request, now time.Time) (year, month int, err error) {
	q := r.URL.Query()

	year = now.Year()
	if s := q.Get("year"); s != "" {
		year, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, errors.New("invalid 'year' (expected integer)")
		}
	}

	month = int(now.Month())
	if s := q.Get("month"); s != "" {
		month, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, errors.New("invalid 'month' (expected integer)")
		}
	}
	return year, month, nil
}

// parsePage returns the 1-based page number from the request (default 1, min 1).
func parsePage(r *http.Request) int {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// buildPageItems returns page numbers and ellipsis for the pagination bar.
func buildPageItems(totalPages, currentPage int) []views.PaginationItem {
	if totalPages <= 0 {
		return nil
	}
	const window = 2
	show := map[int]bool{1: true, totalPages: true}
	for p := currentPage - window; p <= currentPage+window; p++ {
		if p >= 1 && p <= totalPages {
			show[p] = true
		}
	}
	var items []views.PaginationItem
	prev := 0
	for p := 1; p <= totalPages; p++ {
		if !show[p] {
			continue
		}
		if prev != 0 && p > prev+1 {
			items = append(items, views.PaginationItem{Ellipsis: true})
		}
		items = append(items, views.PaginationItem{Page: p})
		prev = p
	}
	return items
}
