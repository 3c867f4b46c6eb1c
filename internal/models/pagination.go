package models

// Pagination is the page metadata reported by the server on every list response.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// Sanitize enforces 1 <= CurrentPage <= LastPage.
func (p Pagination) Sanitize() Pagination {
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.LastPage < p.CurrentPage {
		p.LastPage = p.CurrentPage
	}

	return p
}
