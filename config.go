package blogadmin

// Config holds all configuration for a blogadmin instance.
type Config struct {
	Name string // Site name (default "Blog")
	URL  string // Canonical URL (default "http://localhost:3000")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")

	UploadDir         string   // Upload directory (default "public/uploads")
	UploadURLPath     string   // URL path uploads are served under (default "/uploads")
	AllowedExtensions []string // Allowed upload extensions (default jpg, jpeg, png, gif, webp)
	MaxUploadSize     int64    // Max upload size in bytes (default 5 MiB)
	ThumbnailWidth    int      // Width of derived admin thumbnails (default 320)

	AdminUsername     string // Required: admin login username
	AdminPassword     string // Admin password, compared in constant time
	AdminPasswordHash string // Optional bcrypt hash; takes precedence over AdminPassword
	SessionSecret     string // Required: session encryption secret
	CookieSecure      bool   // Set true for HTTPS
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "public/uploads"
	}
	if c.UploadURLPath == "" {
		c.UploadURLPath = "/uploads"
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 5 << 20
	}
	if c.ThumbnailWidth == 0 {
		c.ThumbnailWidth = 320
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
