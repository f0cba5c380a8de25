// Package blogadmin is a session-authenticated admin panel engine for blog
// content (articles and categories) backed by SQLite, built with Echo and
// templ. It provides the CRUD handlers, validation, image uploads, flash
// messaging, and the public JSON/RSS feeds out of the box.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// blogadmin handles all the handler logic, middleware, and database
// operations.
package blogadmin

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	_ "modernc.org/sqlite"
)

// ViewFuncs holds user-provided templ components that the engine calls when
// rendering pages. This is the inversion-of-control mechanism that lets
// users own and customize all templates. templ escapes interpolated values
// contextually, so user-supplied text is safe by the time it reaches HTML.
type ViewFuncs struct {
	Login       func(showError bool, csrfToken string) templ.Component
	Dashboard   func(stats DashboardStats, flash Flash, username, csrfToken string) templ.Component
	Articles    func(articles []Article, categories []Category, flash Flash, csrfToken string) templ.Component
	Categories  func(categories []Category, flash Flash, csrfToken string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central blogadmin application. It wires together the store,
// upload manager, handlers, middleware, and user-provided templates.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Store   *Store
	Uploads *UploadManager
	Views   ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new blogadmin App with the given configuration and view
// functions.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, upload manager, middleware, and routes,
// then starts the server.
func (a *App) Start() error {
	if a.Config.AdminUsername == "" {
		return fmt.Errorf("blogadmin: AdminUsername is required")
	}
	if a.Config.AdminPassword == "" && a.Config.AdminPasswordHash == "" {
		return fmt.Errorf("blogadmin: AdminPassword or AdminPasswordHash is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("blogadmin: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("blogadmin: init store: %w", err)
	}
	a.Store = store

	a.Uploads = NewUploadManager(
		a.Config.UploadDir,
		a.Config.MaxUploadSize,
		a.Config.AllowedExtensions,
		a.Config.ThumbnailWidth,
	)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.Static(a.Config.UploadURLPath, a.Config.UploadDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/", handleRootRedirect)

	// Public read-only surface.
	e.GET("/api/articles", a.handleArticlesFeed)
	e.GET("/feed.xml", a.handleRSS)

	// Login is the only admin surface reachable without a session.
	e.GET("/admin/login/", a.handleLoginPage)
	e.POST("/admin/login/", a.handleLogin)

	admin := e.Group("/admin", a.requireAdmin)
	admin.GET("/", a.handleDashboard)
	admin.GET("/stats/", a.handleStats)
	admin.POST("/logout/", handleLogout)

	admin.GET("/articles/", a.handleArticles)
	admin.POST("/articles/create/", a.handleArticleCreate)
	admin.GET("/articles/:id/", a.handleArticleGet)
	admin.POST("/articles/:id/update/", a.handleArticleUpdate)
	admin.POST("/articles/:id/delete/", a.handleArticleDelete)

	admin.GET("/categories/", a.handleCategories)
	admin.POST("/categories/create/", a.handleCategoryCreate)
	admin.GET("/categories/:id/", a.handleCategoryGet)
	admin.POST("/categories/:id/update/", a.handleCategoryUpdate)
	admin.POST("/categories/:id/delete/", a.handleCategoryDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if
// empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally
// exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "blogadmin: required environment variable %s is not set\n", key)
		os.Exit(1)
	}
	return v
}
