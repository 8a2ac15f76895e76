package domain

import "strconv"

const defaultPageSize = 20

// PageInput is a relay-style page request. Cursors are ordinal
// positions in the filtered, sorted result set, encoded as decimal
// strings.
type PageInput struct {
	First        int    `json:"first,omitempty"`
	Last         int    `json:"last,omitempty"`
	AfterCursor  string `json:"afterCursor,omitempty"`
	BeforeCursor string `json:"beforeCursor,omitempty"`
}

type PageInfo struct {
	FirstCursor string `json:"firstCursor"`
	LastCursor  string `json:"lastCursor"`
}

// Pageable carries one page of items plus the total size of the full
// filtered set, independent of the requested page.
type Pageable[T any] struct {
	Items      []T      `json:"items"`
	PageInfo   PageInfo `json:"pageInfo"`
	TotalItems int      `json:"totalItems"`
}

// Paginate slices the full filtered result set according to input.
// first/afterCursor walk forward, last/beforeCursor walk backward from
// the cursor; an unset page size defaults to 20.
func Paginate[T any](items []T, input PageInput) Pageable[T] {
	total := len(items)

	start := 0
	if input.AfterCursor != "" {
		if idx, err := strconv.Atoi(input.AfterCursor); err == nil {
			start = idx + 1
		}
	}

	end := total
	if input.BeforeCursor != "" {
		if idx, err := strconv.Atoi(input.BeforeCursor); err == nil && idx < end {
			end = idx
		}
	}

	if input.First > 0 {
		if e := start + input.First; e < end {
			end = e
		}
	} else if input.Last > 0 {
		if s := end - input.Last; s > start {
			start = s
		}
	} else {
		if e := start + defaultPageSize; e < end {
			end = e
		}
	}

	if start > total {
		start = total
	}
	if end < start {
		end = start
	}

	page := Pageable[T]{
		Items:      items[start:end],
		TotalItems: total,
	}
	if end > start {
		page.PageInfo.FirstCursor = strconv.Itoa(start)
		page.PageInfo.LastCursor = strconv.Itoa(end - 1)
	}
	return page
}
