package blogadmin

// Article is a blog article row. CategoryName is populated by list queries
// that join the categories table; it is empty when the article is
// uncategorized.
type Article struct {
	ID           int64
	Title        string
	Content      string
	Image        string // stored upload filename, empty when none
	CategoryID   int64  // 0 when uncategorized
	CategoryName string
	CreatedAt    string
}

// Category groups articles. ArticleCount is populated by ListCategories.
type Category struct {
	ID           int64
	Name         string
	Description  string
	CreatedAt    string
	ArticleCount int
}

// Flash is a one-shot notification stored in the session and consumed by
// the next page render.
type Flash struct {
	Type    string // "success" or "error"
	Message string
}

// DashboardStats feeds the admin dashboard view.
type DashboardStats struct {
	TotalArticles   int
	TotalCategories int
	Recent          []Article
}
