package core

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a normalized page request. Build it with NewPage so the
// clamping policy is applied in exactly one place: page below 1 becomes
// 1, size below 1 becomes the default, size above the maximum is
// clamped to it.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageMeta describes a page slice relative to the full match set. The
// total reflects the same predicate as the returned page.
type PageMeta struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NewPageMeta computes pagination metadata for a total match count.
func NewPageMeta(p Page, total int64) PageMeta {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return PageMeta{
		Page:        p.Number,
		PageSize:    p.Size,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     p.Number < totalPages,
		HasPrevious: p.Number > 1,
	}
}
