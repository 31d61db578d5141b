package models

// Reviews maps a reviewer's username to their review text.
type Reviews map[string]string

// Book represents a single catalog record. The ISBN is the record's key and is
// carried alongside the map key so single-book responses stay self-describing.
type Book struct {
	ISBN    string  `json:"-"`
	Author  string  `json:"author"`
	Title   string  `json:"title"`
	Reviews Reviews `json:"reviews"`
}

// Clone returns a deep copy. A nil reviews map stays nil.
func (b Book) Clone() Book {
	b.Reviews = b.Reviews.Clone()
	return b
}

// Clone returns a copy of the reviews map, preserving nil.
func (r Reviews) Clone() Reviews {
	if r == nil {
		return nil
	}
	out := make(Reviews, len(r))
	for user, text := range r {
		out[user] = text
	}
	return out
}

// CatalogStats summarizes the catalog for the health endpoint and the live feed.
type CatalogStats struct {
	Books         int `json:"books"`
	ReviewedBooks int `json:"reviewedBooks"`
	Reviews       int `json:"reviews"`
}
