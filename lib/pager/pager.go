package pager

import (
	"net/url"
	"strconv"
)

// PaginatedResult is the uniform shape every listing operation returns.
// Next and Previous are raw item offsets (page index times perPage)
// rather than page numbers, matching the `?start=` parameter the source
// sites use in their own pager links. -1 means there is no such page.
type PaginatedResult[T any] struct {
	Results     []T  `json:"results"`
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Pages       int  `json:"pages"`
	Next        int  `json:"next"`
	Previous    int  `json:"previous"`
	HasNextPage bool `json:"hasNextPage"`
}

// Offset converts a 1-indexed page number into the `?start=` offset the
// source sites paginate with.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

// lastPageFromHref recovers the total page count from the pager's
// "last" link, whose `start` query parameter carries the offset of the
// final page. A missing or malformed pager means a single page.
func lastPageFromHref(lastHref string, perPage int) int {
	if lastHref == "" {
		return 1
	}
	link, err := url.Parse(lastHref)
	if err != nil {
		return 1
	}
	offset, err := strconv.Atoi(link.Query().Get("start"))
	if err != nil || offset < 0 {
		return 1
	}
	return offset/perPage + 1
}

// Build assembles a PaginatedResult from one scraped listing page and
// the href of the pager's last-page link (empty when the pager control
// is absent).
func Build[T any](items []T, lastHref string, requestedPage, perPage int) PaginatedResult[T] {
	if perPage < 1 {
		perPage = 1
	}

	pages := lastPageFromHref(lastHref, perPage)

	page := requestedPage
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	next := -1
	hasNext := page < pages
	if hasNext {
		next = Offset(page+1, perPage)
	}
	previous := -1
	if page > 1 {
		previous = Offset(page-1, perPage)
	}

	// the sites only report a page count, the exact total is known
	// once the final page's item count is visible
	total := len(items)
	if pages > 1 {
		if page == pages {
			total = (pages-1)*perPage + len(items)
		} else {
			total = pages * perPage
		}
	}

	return PaginatedResult[T]{
		Results:     items,
		Total:       total,
		Page:        page,
		Pages:       pages,
		Next:        next,
		Previous:    previous,
		HasNextPage: hasNext,
	}
}
