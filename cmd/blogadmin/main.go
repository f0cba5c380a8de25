// Command blogadmin runs the admin panel with minimal built-in views.
// All configuration comes from environment variables; real deployments
// are expected to supply their own templ components via the library API.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/eringen/blogadmin"
)

func main() {
	cfg := blogadmin.Config{
		Name:              blogadmin.EnvOr("SITE_NAME", "Blog"),
		URL:               blogadmin.EnvOr("SITE_URL", "http://localhost:3000"),
		Addr:              blogadmin.EnvOr("ADDR", ":3000"),
		DatabasePath:      blogadmin.EnvOr("DATABASE_PATH", "data/blog.db"),
		UploadDir:         blogadmin.EnvOr("UPLOAD_DIR", "public/uploads"),
		AdminUsername:     blogadmin.EnvOr("ADMIN_USERNAME", "admin"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SessionSecret:     blogadmin.MustEnv("ADMIN_SESSION_SECRET"),
		CookieSecure:      strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
	}

	app := blogadmin.New(cfg, fallbackViews())
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
