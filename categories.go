package blogadmin

import "fmt"

const categorySelect = `
SELECT c.id, c.name, c.description, c.created_at, COUNT(a.id) AS article_count
FROM categories c
LEFT JOIN articles a ON a.category_id = c.id`

// ListCategories returns every category with its article count attached,
// newest first.
func (s *Store) ListCategories() ([]Category, error) {
	rows, err := s.FetchAll(categorySelect + ` GROUP BY c.id ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, categoryFromRow(row))
	}
	return categories, nil
}

// GetCategory returns a single category by id, or ErrNotFound.
func (s *Store) GetCategory(id int64) (Category, error) {
	row, err := s.FetchOne(categorySelect+` WHERE c.id = ? GROUP BY c.id`, id)
	if err != nil {
		return Category{}, err
	}
	return categoryFromRow(row), nil
}

// CategoryNameTaken reports whether a category other than excludeID already
// uses name. The match is case-sensitive exact.
func (s *Store) CategoryNameTaken(name string, excludeID int64) (bool, error) {
	n, err := s.Count("categories", "name = ? AND id != ?", name, excludeID)
	return n > 0, err
}

// CreateCategory inserts a new category and returns its id. A UNIQUE clash
// on name is translated into a ValidationError so concurrent duplicate
// inserts fail the same way the pre-check does.
func (s *Store) CreateCategory(c Category) (int64, error) {
	id, err := s.Insert("categories", map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"created_at":  nowTimestamp(),
	})
	if isConstraintViolation(err) {
		return 0, NewValidationError("Category with this name already exists")
	}
	return id, err
}

// UpdateCategory overwrites name and description of the row with c.ID.
func (s *Store) UpdateCategory(c Category) error {
	_, err := s.Update("categories", map[string]any{
		"name":        c.Name,
		"description": c.Description,
	}, "id = ?", c.ID)
	if isConstraintViolation(err) {
		return NewValidationError("Category with this name already exists")
	}
	return err
}

// DeleteCategory detaches referencing articles (they become uncategorized)
// and removes the category row, atomically.
func (s *Store) DeleteCategory(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE articles SET category_id = NULL WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("detach articles: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return tx.Commit()
}

func categoryFromRow(row map[string]any) Category {
	return Category{
		ID:           rowInt(row, "id"),
		Name:         rowString(row, "name"),
		Description:  rowString(row, "description"),
		CreatedAt:    rowString(row, "created_at"),
		ArticleCount: int(rowInt(row, "article_count")),
	}
}
