package blogadmin

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// envelope is the JSON response shape shared by every AJAX endpoint.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// isAJAX reports whether the request expects a JSON response. The decision
// is made once per request; handlers carry the resulting bool instead of
// re-inspecting the request.
func isAJAX(c echo.Context) bool {
	if c.FormValue("ajax") != "" {
		return true
	}
	return c.Request().Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// actionResult is the typed outcome of a mutating handler: a status code
// and message for AJAX callers, or a flash + redirect for full-page forms.
type actionResult struct {
	code     int
	message  string
	redirect string
}

func (a *App) respond(c echo.Context, ajax bool, res actionResult) error {
	status := "success"
	if res.code >= 400 {
		status = "error"
	}
	if ajax {
		return c.JSON(res.code, envelope{Status: status, Message: res.message})
	}
	if err := SetFlash(c, status, res.message); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, res.redirect)
}

// --- auth ---

func (a *App) handleLoginPage(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.Login(false, CsrfToken(c)))
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if a.checkCredentials(username, password) {
		if err := setAdminSession(c, username); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(c.RealIP())
	return Render(c, a.Views.Login(true, CsrfToken(c)))
}

func (a *App) checkCredentials(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.Config.AdminUsername)) != 1 {
		return false
	}
	if a.Config.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.Config.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.Config.AdminPassword)) == 1
}

func handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/login/")
}

// --- dashboard ---

func (a *App) handleDashboard(c echo.Context) error {
	stats, err := a.Store.Stats()
	if err != nil {
		return err
	}
	flash, _ := TakeFlash(c)
	return Render(c, a.Views.Dashboard(stats, flash, AdminUsername(c), CsrfToken(c)))
}

// handleStats serves the dashboard numbers as JSON for the admin UI.
func (a *App) handleStats(c echo.Context) error {
	stats, err := a.Store.Stats()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":           "success",
		"total_articles":   stats.TotalArticles,
		"total_categories": stats.TotalCategories,
	})
}

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/admin/")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nDisallow: /admin/\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if isAJAX(c) || strings.HasPrefix(c.Request().URL.Path, "/api/") {
		msg := "Internal server error"
		if code < 500 {
			msg = http.StatusText(code)
		} else {
			c.Logger().Errorf("server error: %v", err)
		}
		_ = c.JSON(code, envelope{Status: "error", Message: msg})
		return
	}
	if code == http.StatusNotFound {
		_ = RenderStatus(c, code, a.Views.NotFound())
		return
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
