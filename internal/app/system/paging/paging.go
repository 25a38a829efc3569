// internal/app/system/paging/paging.go
package paging

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the number of posts shown per feed page.
const PageSize = 10

// ParseNumber turns a raw "page" value into a 1-based page number.
// Missing, non-numeric and < 1 values all become 1. Values past the last
// page, including ones too large for an int, are clamped later by Compute,
// once the total is known.
func ParseNumber(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-") {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePage extracts the "page" query parameter from the request.
func ParsePage(r *http.Request) int {
	return ParseNumber(query.Get(r, "page"))
}

// Page describes one clamped page of a result set.
type Page struct {
	Number   int   // 1-based, always within [1, NumPages]
	NumPages int   // at least 1, even for an empty result set
	Total    int64 // total matching items
	Size     int

	HasPrev    bool
	HasNext    bool
	PrevNumber int
	NextNumber int

	Start int // 1-based index of the first item shown (0 when empty)
	End   int // 1-based index of the last item shown (0 when empty)
}

// Offset is the number of items to skip to reach this page.
func (p Page) Offset() int64 { return int64(p.Number-1) * int64(p.Size) }

// Limit is the maximum number of items on this page.
func (p Page) Limit() int64 { return int64(p.Size) }

// NumPages returns how many pages total items fill at the given size.
// An empty set still has one (empty) page.
func NumPages(total int64, size int) int {
	if size < 1 {
		size = PageSize
	}
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Compute clamps the requested page into range using PageSize.
func Compute(requested int, total int64) Page {
	return ComputeWithSize(requested, total, PageSize)
}

// ComputeWithSize is like Compute with a custom page size.
func ComputeWithSize(requested int, total int64, size int) Page {
	if size < 1 {
		size = PageSize
	}
	if total < 0 {
		total = 0
	}
	pages := NumPages(total, size)

	n := requested
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}

	p := Page{
		Number:   n,
		NumPages: pages,
		Total:    total,
		Size:     size,
		HasPrev:  n > 1,
		HasNext:  n < pages,
	}
	if p.HasPrev {
		p.PrevNumber = n - 1
	}
	if p.HasNext {
		p.NextNumber = n + 1
	}

	if total > 0 {
		p.Start = (n-1)*size + 1
		end := int64(n * size)
		if end > total {
			end = total
		}
		p.End = int(end)
	}
	return p
}
