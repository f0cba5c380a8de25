package blogadmin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const categoriesPath = "/admin/categories/"

func (a *App) handleCategories(c echo.Context) error {
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	flash, _ := TakeFlash(c)
	return Render(c, a.Views.Categories(categories, flash, CsrfToken(c)))
}

// handleCategoryGet returns one category as JSON for the edit-form prefill.
func (a *App) handleCategoryGet(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	category, err := a.Store.GetCategory(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope{Status: "error", Message: "Category not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "success",
		"category": categoryJSON(category),
	})
}

func (a *App) handleCategoryCreate(c echo.Context) error {
	ajax := isAJAX(c)

	category, err := a.parseCategoryForm(c, 0)
	if err != nil {
		return a.respondInputError(c, ajax, err, categoriesPath)
	}

	if _, err := a.Store.CreateCategory(category); err != nil {
		return a.respondInputError(c, ajax, err, categoriesPath)
	}
	return a.respond(c, ajax, actionResult{
		code:     http.StatusOK,
		message:  "Category added successfully",
		redirect: categoriesPath,
	})
}

func (a *App) handleCategoryUpdate(c echo.Context) error {
	ajax := isAJAX(c)
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	if _, err := a.Store.GetCategory(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.respond(c, ajax, actionResult{
				code:     http.StatusNotFound,
				message:  "Category not found",
				redirect: categoriesPath,
			})
		}
		return err
	}

	category, err := a.parseCategoryForm(c, id)
	if err != nil {
		return a.respondInputError(c, ajax, err, categoriesPath)
	}
	category.ID = id

	if err := a.Store.UpdateCategory(category); err != nil {
		return a.respondInputError(c, ajax, err, categoriesPath)
	}
	return a.respond(c, ajax, actionResult{
		code:     http.StatusOK,
		message:  "Category updated successfully",
		redirect: categoriesPath,
	})
}

func (a *App) handleCategoryDelete(c echo.Context) error {
	ajax := isAJAX(c)
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	if _, err := a.Store.GetCategory(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.respond(c, ajax, actionResult{
				code:     http.StatusNotFound,
				message:  "Category not found",
				redirect: categoriesPath,
			})
		}
		return err
	}

	if err := a.Store.DeleteCategory(id); err != nil {
		return err
	}
	return a.respond(c, ajax, actionResult{
		code:     http.StatusOK,
		message:  "Category deleted successfully",
		redirect: categoriesPath,
	})
}

// parseCategoryForm trims and validates the category form fields. The
// uniqueness check excludes excludeID so a category can keep its own name
// on update.
func (a *App) parseCategoryForm(c echo.Context, excludeID int64) (Category, error) {
	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))

	if name == "" {
		return Category{}, NewValidationError("Category name is required")
	}
	taken, err := a.Store.CategoryNameTaken(name, excludeID)
	if err != nil {
		return Category{}, err
	}
	if taken {
		return Category{}, NewValidationError("Category with this name already exists")
	}
	return Category{Name: name, Description: description}, nil
}

func categoryJSON(c Category) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"created_at":  c.CreatedAt,
	}
}
