package main

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/blogadmin"
)

// fallbackViews returns plain-HTML stand-ins for every template slot.
// They are deliberately unstyled; the point is a working panel out of the
// box, not a finished UI.
func fallbackViews() blogadmin.ViewFuncs {
	return blogadmin.ViewFuncs{
		Login:       loginView,
		Dashboard:   dashboardView,
		Articles:    articlesView,
		Categories:  categoriesView,
		NotFound:    func() templ.Component { return page("Not Found", "<h1>404 Not Found</h1>") },
		ServerError: func() templ.Component { return page("Server Error", "<h1>500 Server Error</h1>") },
	}
}

// page wraps a body fragment in the shared HTML shell. Dynamic values must
// already be escaped by the caller.
func page(title, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<!doctype html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body>%s</body></html>",
			html.EscapeString(title), body)
		return err
	})
}

func nav() string {
	return `<nav><a href="/admin/">Dashboard</a> | <a href="/admin/articles/">Articles</a> | <a href="/admin/categories/">Categories</a></nav>`
}

func flashBox(flash blogadmin.Flash) string {
	if flash.Message == "" {
		return ""
	}
	return fmt.Sprintf("<p class=%q>%s</p>", html.EscapeString(flash.Type), html.EscapeString(flash.Message))
}

func csrfField(token string) string {
	return fmt.Sprintf(`<input type="hidden" name="_csrf" value="%s">`, html.EscapeString(token))
}

func loginView(showError bool, csrfToken string) templ.Component {
	var b strings.Builder
	b.WriteString("<h1>Admin Login</h1>")
	if showError {
		b.WriteString("<p>Invalid username or password.</p>")
	}
	b.WriteString(`<form method="post" action="/admin/login/">`)
	b.WriteString(csrfField(csrfToken))
	b.WriteString(`<input name="username" placeholder="Username">`)
	b.WriteString(`<input name="password" type="password" placeholder="Password">`)
	b.WriteString(`<button type="submit">Log in</button></form>`)
	return page("Admin Login", b.String())
}

func dashboardView(stats blogadmin.DashboardStats, flash blogadmin.Flash, username, csrfToken string) templ.Component {
	var b strings.Builder
	b.WriteString(nav())
	b.WriteString(flashBox(flash))
	fmt.Fprintf(&b, "<h1>Dashboard</h1><p>Welcome, %s.</p>", html.EscapeString(username))
	fmt.Fprintf(&b, "<p>%d articles, %d categories.</p>", stats.TotalArticles, stats.TotalCategories)
	b.WriteString("<h2>Recent articles</h2><ul>")
	for _, art := range stats.Recent {
		fmt.Fprintf(&b, "<li>%s (%s)</li>", html.EscapeString(art.Title), html.EscapeString(art.CreatedAt))
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, `<form method="post" action="/admin/logout/">%s<button type="submit">Log out</button></form>`, csrfField(csrfToken))
	return page("Dashboard", b.String())
}

func articlesView(articles []blogadmin.Article, categories []blogadmin.Category, flash blogadmin.Flash, csrfToken string) templ.Component {
	var b strings.Builder
	b.WriteString(nav())
	b.WriteString(flashBox(flash))
	b.WriteString("<h1>Articles</h1><table><tr><th>ID</th><th>Title</th><th>Category</th><th>Created</th><th></th></tr>")
	for _, art := range articles {
		category := art.CategoryName
		if category == "" {
			category = "Uncategorized"
		}
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td>",
			art.ID, html.EscapeString(art.Title), html.EscapeString(category), html.EscapeString(art.CreatedAt))
		fmt.Fprintf(&b, `<td><form method="post" action="/admin/articles/%d/delete/">%s<button type="submit">Delete</button></form></td></tr>`,
			art.ID, csrfField(csrfToken))
	}
	b.WriteString("</table>")

	b.WriteString(`<h2>New article</h2><form method="post" action="/admin/articles/create/" enctype="multipart/form-data">`)
	b.WriteString(csrfField(csrfToken))
	b.WriteString(`<input name="title" placeholder="Title">`)
	b.WriteString(`<textarea name="content" placeholder="Content"></textarea>`)
	b.WriteString(`<select name="category_id"><option value="0">Uncategorized</option>`)
	for _, cat := range categories {
		fmt.Fprintf(&b, `<option value="%d">%s</option>`, cat.ID, html.EscapeString(cat.Name))
	}
	b.WriteString(`</select><input name="image" type="file"><button type="submit">Create</button></form>`)
	return page("Articles", b.String())
}

func categoriesView(categories []blogadmin.Category, flash blogadmin.Flash, csrfToken string) templ.Component {
	var b strings.Builder
	b.WriteString(nav())
	b.WriteString(flashBox(flash))
	b.WriteString("<h1>Categories</h1><table><tr><th>ID</th><th>Name</th><th>Articles</th><th>Created</th><th></th></tr>")
	for _, cat := range categories {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%d</td><td>%s</td>",
			cat.ID, html.EscapeString(cat.Name), cat.ArticleCount, html.EscapeString(cat.CreatedAt))
		fmt.Fprintf(&b, `<td><form method="post" action="/admin/categories/%d/delete/">%s<button type="submit">Delete</button></form></td></tr>`,
			cat.ID, csrfField(csrfToken))
	}
	b.WriteString("</table>")

	b.WriteString(`<h2>New category</h2><form method="post" action="/admin/categories/create/">`)
	b.WriteString(csrfField(csrfToken))
	b.WriteString(`<input name="name" placeholder="Name">`)
	b.WriteString(`<input name="description" placeholder="Description">`)
	b.WriteString(`<button type="submit">Create</button></form>`)
	return page("Categories", b.String())
}
