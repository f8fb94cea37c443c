package domain

// Pagination describes one page of a listing response.
type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

// Paginate computes the pagination envelope for total items split into
// limit-sized pages. A page past the end is valid and simply empty.
func Paginate(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Current: page, Pages: pages, Total: total}
}
