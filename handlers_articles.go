package blogadmin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const articlesPath = "/admin/articles/"

func (a *App) handleArticles(c echo.Context) error {
	articles, err := a.Store.ListArticles()
	if err != nil {
		return err
	}
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	flash, _ := TakeFlash(c)
	return Render(c, a.Views.Articles(articles, categories, flash, CsrfToken(c)))
}

// handleArticleGet returns one article as JSON for the edit-form prefill.
func (a *App) handleArticleGet(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	article, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope{Status: "error", Message: "Article not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"article": articleJSON(article),
	})
}

func (a *App) handleArticleCreate(c echo.Context) error {
	ajax := isAJAX(c)

	article, err := a.parseArticleForm(c)
	if err != nil {
		return a.respondInputError(c, ajax, err, articlesPath)
	}

	image, err := a.storeUploadedImage(c)
	if err != nil {
		return a.respondInputError(c, ajax, err, articlesPath)
	}
	article.Image = image

	if _, err := a.Store.CreateArticle(article); err != nil {
		// No partial writes: an orphaned upload must not survive a failed
		// insert.
		if image != "" {
			if rmErr := a.Uploads.Remove(image); rmErr != nil {
				c.Logger().Warnf("remove orphaned upload %s: %v", image, rmErr)
			}
		}
		return err
	}
	return a.respond(c, ajax, actionResult{
		code:     http.StatusOK,
		message:  "Article created successfully",
		redirect: articlesPath,
	})
}

func (a *App) handleArticleUpdate(c echo.Context) error {
	ajax := isAJAX(c)
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	existing, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.respond(c, ajax, actionResult{
				code:     http.StatusNotFound,
				message:  "Article not found",
				redirect: articlesPath,
			})
		}
		return err
	}

	article, err := a.parseArticleForm(c)
	if err != nil {
		return a.respondInputError(c, ajax, err, articlesPath)
	}
	article.ID = id

	// Keep the existing image unless a new upload succeeds; the old file
	// is only removed once the replacement is safely on disk.
	article.Image = existing.Image
	newImage, err := a.storeUploadedImage(c)
	if err != nil {
		return a.respondInputError(c, ajax, err, articlesPath)
	}
	if newImage != "" {
		if existing.Image != "" {
			if rmErr := a.Uploads.Remove(existing.Image); rmErr != nil {
				c.Logger().Warnf("remove replaced upload %s: %v", existing.Image, rmErr)
			}
		}
		article.Image = newImage
	}

	if err := a.Store.UpdateArticle(article); err != nil {
		return err
	}
	return a.respond(c, ajax, actionResult{
		code:     http.StatusOK,
		message:  "Article updated successfully",
		redirect: articlesPath,
	})
}

func (a *App) handleArticleDelete(c echo.Context) error {
	ajax := isAJAX(c)
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	existing, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.respond(c, ajax, actionResult{
				code:     http.StatusNotFound,
				message:  "Article not found",
				redirect: articlesPath,
			})
		}
		return err
	}

	if err := a.Store.DeleteArticle(id); err != nil {
		return err
	}
	// Image removal is fire-and-forget: the row is already gone and a
	// stray file must not surface as a request failure.
	if existing.Image != "" {
		if rmErr := a.Uploads.Remove(existing.Image); rmErr != nil {
			c.Logger().Warnf("remove upload %s: %v", existing.Image, rmErr)
		}
	}
	return a.respond(c, ajax, actionResult{
		code:     http.StatusOK,
		message:  "Article deleted successfully",
		redirect: articlesPath,
	})
}

// parseArticleForm trims and validates the article form fields.
func (a *App) parseArticleForm(c echo.Context) (Article, error) {
	title := strings.TrimSpace(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))
	categoryID, _ := strconv.ParseInt(c.FormValue("category_id"), 10, 64)

	var messages []string
	if title == "" {
		messages = append(messages, "Article title is required")
	}
	if content == "" {
		messages = append(messages, "Article content is required")
	}
	if categoryID != 0 {
		exists, err := a.Store.CategoryExists(categoryID)
		if err != nil {
			return Article{}, err
		}
		if !exists {
			messages = append(messages, "Invalid category selected")
		}
	}
	if len(messages) > 0 {
		return Article{}, NewValidationError(messages...)
	}
	return Article{Title: title, Content: content, CategoryID: categoryID}, nil
}

// storeUploadedImage persists the "image" form file if one was sent.
// Upload faults come back as validation errors; a missing file is not an
// error.
func (a *App) storeUploadedImage(c echo.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name, err := a.Uploads.Store(src, file.Filename, file.Size)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrUnsupportedType) {
			return "", NewValidationError(fmt.Sprintf("Image upload failed: %v", err))
		}
		return "", err
	}
	return name, nil
}

// respondInputError maps a validation error to a 400 response and passes
// anything else through to the central error handler.
func (a *App) respondInputError(c echo.Context, ajax bool, err error, redirect string) error {
	if ve, ok := AsValidationError(err); ok {
		return a.respond(c, ajax, actionResult{
			code:     http.StatusBadRequest,
			message:  ve.Error(),
			redirect: redirect,
		})
	}
	return err
}

func articleJSON(a Article) map[string]any {
	return map[string]any{
		"id":          a.ID,
		"title":       a.Title,
		"content":     a.Content,
		"image":       a.Image,
		"category_id": a.CategoryID,
		"created_at":  a.CreatedAt,
	}
}
