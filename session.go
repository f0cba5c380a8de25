package blogadmin

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const sessionName = "admin_session"

func init() {
	gob.Register(Flash{})
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// IsAdmin checks if the current session is authenticated.
func IsAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, ok := sess.Values["authenticated"].(bool)
	return ok && auth
}

// AdminUsername returns the username stored at login, or "" when absent.
func AdminUsername(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	name, _ := sess.Values["username"].(string)
	return name
}

func setAdminSession(c echo.Context, username string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = true
	sess.Values["username"] = username
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// SetFlash queues a one-shot flash message for the next page render.
func SetFlash(c echo.Context, typ, message string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.AddFlash(Flash{Type: typ, Message: message})
	return sess.Save(c.Request(), c.Response())
}

// TakeFlash pops the pending flash message, if any. Reading clears it, so
// a message is delivered at most once.
func TakeFlash(c echo.Context) (Flash, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return Flash{}, false
	}
	flashes := sess.Flashes()
	// Flashes() mutates the session; the save persists the removal.
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return Flash{}, false
	}
	for _, f := range flashes {
		if fl, ok := f.(Flash); ok {
			return fl, true
		}
	}
	return Flash{}, false
}
