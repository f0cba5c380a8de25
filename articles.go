package blogadmin

const articleColumns = `a.id, a.title, a.content, a.image, a.category_id, c.name, a.created_at`

const articleSelect = `
SELECT ` + articleColumns + `
FROM articles a
LEFT JOIN categories c ON a.category_id = c.id`

// ListArticles returns every article with its category name attached,
// newest first.
func (s *Store) ListArticles() ([]Article, error) {
	rows, err := s.FetchAll(articleSelect + ` ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(rows))
	for _, row := range rows {
		articles = append(articles, articleFromRow(row))
	}
	return articles, nil
}

// RecentArticles returns the n newest articles for the dashboard.
func (s *Store) RecentArticles(n int) ([]Article, error) {
	rows, err := s.FetchAll(articleSelect+` ORDER BY a.created_at DESC, a.id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(rows))
	for _, row := range rows {
		articles = append(articles, articleFromRow(row))
	}
	return articles, nil
}

// GetArticle returns a single article by id, or ErrNotFound.
func (s *Store) GetArticle(id int64) (Article, error) {
	row, err := s.FetchOne(articleSelect+` WHERE a.id = ?`, id)
	if err != nil {
		return Article{}, err
	}
	return articleFromRow(row), nil
}

// CreateArticle inserts a new article and returns its id. A zero CategoryID
// is stored as NULL.
func (s *Store) CreateArticle(a Article) (int64, error) {
	return s.Insert("articles", map[string]any{
		"title":       a.Title,
		"content":     a.Content,
		"image":       nullableImage(a.Image),
		"category_id": nullableID(a.CategoryID),
		"created_at":  nowTimestamp(),
	})
}

// UpdateArticle overwrites title, content, image, and category of the row
// with a.ID. CreatedAt is immutable and never touched.
func (s *Store) UpdateArticle(a Article) error {
	_, err := s.Update("articles", map[string]any{
		"title":       a.Title,
		"content":     a.Content,
		"image":       nullableImage(a.Image),
		"category_id": nullableID(a.CategoryID),
	}, "id = ?", a.ID)
	return err
}

// DeleteArticle removes the article row. Image file cleanup is the
// caller's responsibility (best-effort, after the row is gone).
func (s *Store) DeleteArticle(id int64) error {
	_, err := s.Delete("articles", "id = ?", id)
	return err
}

// CategoryExists reports whether a category row with the given id exists.
func (s *Store) CategoryExists(id int64) (bool, error) {
	n, err := s.Count("categories", "id = ?", id)
	return n > 0, err
}

// Stats gathers the dashboard numbers: totals plus the five most recent
// articles.
func (s *Store) Stats() (DashboardStats, error) {
	articles, err := s.Count("articles", "")
	if err != nil {
		return DashboardStats{}, err
	}
	categories, err := s.Count("categories", "")
	if err != nil {
		return DashboardStats{}, err
	}
	recent, err := s.RecentArticles(5)
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{
		TotalArticles:   articles,
		TotalCategories: categories,
		Recent:          recent,
	}, nil
}

func articleFromRow(row map[string]any) Article {
	return Article{
		ID:           rowInt(row, "id"),
		Title:        rowString(row, "title"),
		Content:      rowString(row, "content"),
		Image:        rowString(row, "image"),
		CategoryID:   rowInt(row, "category_id"),
		CategoryName: rowString(row, "name"),
		CreatedAt:    rowString(row, "created_at"),
	}
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableImage(name string) any {
	if name == "" {
		return nil
	}
	return name
}
