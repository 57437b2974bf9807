package models

// Book is a catalog entry owned by a user.
type Book struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Year        int    `json:"year"`
	Discipline  string `json:"discipline"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	OwnerID     int64  `json:"ownerId"`
}

// PageMeta is the pagination block returned by GET /books.
type PageMeta struct {
	TotalItems   int `json:"totalItems"`
	ItemCount    int `json:"itemCount"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// BookPage is one page of search results.
type BookPage struct {
	Items []Book   `json:"items"`
	Meta  PageMeta `json:"meta"`
}
