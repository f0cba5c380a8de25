package blogadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/labstack/echo-contrib/session"
)

func stubComponent(marker string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, marker)
		return err
	})
}

func stubViews() ViewFuncs {
	return ViewFuncs{
		Login: func(showError bool, _ string) templ.Component {
			if showError {
				return stubComponent("login-failed")
			}
			return stubComponent("login-page")
		},
		Dashboard: func(_ DashboardStats, _ Flash, _ string, _ string) templ.Component {
			return stubComponent("dashboard-page")
		},
		Articles: func(_ []Article, _ []Category, _ Flash, _ string) templ.Component {
			return stubComponent("articles-page")
		},
		Categories: func(_ []Category, _ Flash, _ string) templ.Component {
			return stubComponent("categories-page")
		},
		NotFound:    func() templ.Component { return stubComponent("not-found-page") },
		ServerError: func() templ.Component { return stubComponent("server-error-page") },
	}
}

// newTestApp wires a full App minus the CSRF layer so POSTs can be driven
// straight from tests.
func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		URL:           "http://example.com",
		DatabasePath:  filepath.Join(dir, "blog.db"),
		UploadDir:     filepath.Join(dir, "uploads"),
		AdminUsername: "admin",
		AdminPassword: "secret",
		SessionSecret: "test-session-secret",
	}
	cfg.setDefaults()

	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	a := &App{
		Config:       cfg,
		Echo:         echo.New(),
		Store:        store,
		Views:        stubViews(),
		loginLimiter: NewLoginLimiter(5, time.Minute),
		staticDir:    dir,
	}
	a.Uploads = NewUploadManager(cfg.UploadDir, cfg.MaxUploadSize, cfg.AllowedExtensions, cfg.ThumbnailWidth)
	a.Echo.HTTPErrorHandler = a.httpErrorHandler
	a.Echo.Use(session.Middleware(a.newSessionStore()))
	a.setupRoutes()
	return a
}

func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func login(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/admin/login/", url.Values{
		"username": {"admin"},
		"password": {"secret"},
	})
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
}

func postForm(t *testing.T, client *http.Client, target string, form url.Values) (*http.Response, []byte) {
	t.Helper()
	resp, err := client.PostForm(target, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", target, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, body
}

func getJSON(t *testing.T, client *http.Client, target string, out any) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", target, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", target, err)
	}
	return resp
}

func postMultipart(t *testing.T, client *http.Client, target string, fields map[string]string, fileField, fileName string, fileData []byte) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(fileData); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", target, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, body
}

func TestDashboardRequiresLogin(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)

	resp, err := client.Get(srv.URL + "/admin/")
	if err != nil {
		t.Fatalf("GET /admin/ failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin/login/" {
		t.Errorf("Location = %q, want /admin/login/", loc)
	}

	login(t, client, srv.URL)

	resp, err = client.Get(srv.URL + "/admin/")
	if err != nil {
		t.Fatalf("GET /admin/ failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status after login = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "dashboard-page") {
		t.Errorf("expected dashboard page, got %q", body)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)

	resp, body := postForm(t, client, srv.URL+"/admin/login/", url.Values{
		"username": {"admin"},
		"password": {"wrong"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "login-failed") {
		t.Errorf("expected login error page, got %q", body)
	}

	// The failed attempt must not have created a session.
	resp2, err := client.Get(srv.URL + "/admin/")
	if err != nil {
		t.Fatalf("GET /admin/ failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", resp2.StatusCode)
	}
}

func TestAjaxRequiresAuth(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)

	resp, body := postForm(t, client, srv.URL+"/admin/articles/create/", url.Values{
		"ajax":    {"1"},
		"title":   {"Hello"},
		"content": {"World"},
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
}

func TestArticleCreateEndToEnd(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)
	login(t, client, srv.URL)

	resp, body := postForm(t, client, srv.URL+"/admin/articles/create/", url.Values{
		"ajax":    {"1"},
		"title":   {"Hello"},
		"content": {"World"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", resp.StatusCode, body)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != "success" {
		t.Errorf("status = %q, want success", env.Status)
	}

	var feed feedResponse
	getJSON(t, client, srv.URL+"/api/articles", &feed)
	if feed.Status != "success" || feed.Count != 1 {
		t.Fatalf("feed = %+v, want one article", feed)
	}
	art := feed.Articles[0]
	if art.Title != "Hello" {
		t.Errorf("title = %q, want Hello", art.Title)
	}
	if art.Category.Name != "Uncategorized" {
		t.Errorf("category name = %q, want Uncategorized", art.Category.Name)
	}
	if art.Category.ID != nil {
		t.Errorf("category id = %v, want null", *art.Category.ID)
	}
	if art.Image != nil {
		t.Errorf("image = %v, want null", *art.Image)
	}
	if art.ShortDescription != "World..." {
		t.Errorf("short_description = %q", art.ShortDescription)
	}
}

func TestArticleCreateValidationJoinsMessages(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)
	login(t, client, srv.URL)

	resp, body := postForm(t, client, srv.URL+"/admin/articles/create/", url.Values{
		"ajax":    {"1"},
		"title":   {"   "},
		"content": {""},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "Article title is required, Article content is required"
	if env.Message != want {
		t.Errorf("message = %q, want %q", env.Message, want)
	}

	n, err := a.Store.Count("articles", "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("article count = %d, want 0 (no partial writes)", n)
	}
}

func TestArticleCreateRejectsUnknownCategory(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)
	login(t, client, srv.URL)

	resp, body := postForm(t, client, srv.URL+"/admin/articles/create/", url.Values{
		"ajax":        {"1"},
		"title":       {"Hello"},
		"content":     {"World"},
		"category_id": {"42"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Message != "Invalid category selected" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestArticleGetNotFound(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)
	login(t, client, srv.URL)

	var env envelope
	resp := getJSON(t, client, srv.URL+"/admin/articles/999/", &env)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if env.Status != "error" || env.Message != "Article not found" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestArticleImageReplacement(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)
	login(t, client, srv.URL)

	first := pngBytes(t, 20, 20)
	resp, body := postMultipart(t, client, srv.URL+"/admin/articles/create/",
		map[string]string{"ajax": "1", "title": "Pic", "content": "Body"},
		"image", "pic.png", first)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}

	articles, err := a.Store.ListArticles()
	if err != nil || len(articles) != 1 {
		t.Fatalf("ListArticles = %v, %v", articles, err)
	}
	art := articles[0]
	if art.Image == "" {
		t.Fatal("article should have an image")
	}
	oldPath := filepath.Join(a.Config.UploadDir, art.Image)
	if _, err := os.Stat(oldPath); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}

	updateURL := srv.URL + "/admin/articles/" + itoa(art.ID) + "/update/"

	// A failed replacement must leave the existing image untouched.
	resp, body = postMultipart(t, client, updateURL,
		map[string]string{"ajax": "1", "title": "Pic", "content": "Body"},
		"image", "evil.txt", []byte("nope"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("update with bad file: status = %d, body %s", resp.StatusCode, body)
	}
	if _, err := os.Stat(oldPath); err != nil {
		t.Errorf("old image must survive a failed replacement: %v", err)
	}
	got, err := a.Store.GetArticle(art.ID)
	if err != nil || got.Image != art.Image {
		t.Errorf("image column changed on failed replacement: %q -> %q (%v)", art.Image, got.Image, err)
	}

	// A successful replacement stores the new file, then removes the old.
	second := pngBytes(t, 30, 30)
	resp, body = postMultipart(t, client, updateURL,
		map[string]string{"ajax": "1", "title": "Pic", "content": "Body"},
		"image", "new.png", second)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, body %s", resp.StatusCode, body)
	}
	got, err = a.Store.GetArticle(art.ID)
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if got.Image == art.Image || got.Image == "" {
		t.Fatalf("image should have been replaced, got %q", got.Image)
	}
	if _, err := os.Stat(filepath.Join(a.Config.UploadDir, got.Image)); err != nil {
		t.Errorf("new image missing: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("old image should be removed after replacement, stat err = %v", err)
	}
}

func TestArticleDeleteRemovesImage(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)
	login(t, client, srv.URL)

	data := pngBytes(t, 20, 20)
	postMultipart(t, client, srv.URL+"/admin/articles/create/",
		map[string]string{"ajax": "1", "title": "Pic", "content": "Body"},
		"image", "pic.png", data)

	articles, err := a.Store.ListArticles()
	if err != nil || len(articles) != 1 {
		t.Fatalf("ListArticles = %v, %v", articles, err)
	}
	art := articles[0]

	resp, body := postForm(t, client, srv.URL+"/admin/articles/"+itoa(art.ID)+"/delete/", url.Values{
		"ajax": {"1"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", resp.StatusCode, body)
	}
	if _, err := a.Store.GetArticle(art.ID); err == nil {
		t.Error("article row should be gone")
	}
	if _, err := os.Stat(filepath.Join(a.Config.UploadDir, art.Image)); !os.IsNotExist(err) {
		t.Errorf("image file should be gone, stat err = %v", err)
	}
}

func TestCategoryHandlers(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)
	login(t, client, srv.URL)

	resp, body := postForm(t, client, srv.URL+"/admin/categories/create/", url.Values{
		"ajax": {"1"},
		"name": {"News"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}

	// Duplicate name is a validation error, not a server fault.
	resp, body = postForm(t, client, srv.URL+"/admin/categories/create/", url.Values{
		"ajax": {"1"},
		"name": {"News"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, body %s", resp.StatusCode, body)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Message != "Category with this name already exists" {
		t.Errorf("message = %q", env.Message)
	}

	categories, err := a.Store.ListCategories()
	if err != nil || len(categories) != 1 {
		t.Fatalf("ListCategories = %v, %v", categories, err)
	}
	id := categories[0].ID

	// Updating a category to its own current name succeeds.
	resp, body = postForm(t, client, srv.URL+"/admin/categories/"+itoa(id)+"/update/", url.Values{
		"ajax":        {"1"},
		"name":        {"News"},
		"description": {"daily news"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("self-rename status = %d, body %s", resp.StatusCode, body)
	}

	var getResp struct {
		Status   string `json:"status"`
		Category struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"category"`
	}
	getJSON(t, client, srv.URL+"/admin/categories/"+itoa(id)+"/", &getResp)
	if getResp.Category.Description != "daily news" {
		t.Errorf("description = %q", getResp.Category.Description)
	}

	resp, body = postForm(t, client, srv.URL+"/admin/categories/"+itoa(id)+"/delete/", url.Values{
		"ajax": {"1"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", resp.StatusCode, body)
	}
}

func TestFeedShortDescription(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)

	content := strings.Repeat("a", 250)
	if _, err := a.Store.CreateArticle(Article{Title: "Long", Content: content}); err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}

	var feed feedResponse
	getJSON(t, client, srv.URL+"/api/articles", &feed)
	if feed.Count != 1 {
		t.Fatalf("count = %d, want 1", feed.Count)
	}
	want := strings.Repeat("a", 100) + "..."
	if feed.Articles[0].ShortDescription != want {
		t.Errorf("short_description = %q (len %d), want first 100 chars + ellipsis",
			feed.Articles[0].ShortDescription, len(feed.Articles[0].ShortDescription))
	}
}

func TestFlashDeliveredOnce(t *testing.T) {
	a := newTestApp(t)
	a.Echo.GET("/flash-take", func(c echo.Context) error {
		flash, ok := TakeFlash(c)
		return c.JSON(http.StatusOK, map[string]any{"ok": ok, "type": flash.Type, "message": flash.Message})
	})
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()
	client := newTestClient(t)
	login(t, client, srv.URL)

	// A non-AJAX create redirects and queues a flash.
	resp, _ := postForm(t, client, srv.URL+"/admin/categories/create/", url.Values{
		"name": {"News"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != categoriesPath {
		t.Errorf("Location = %q, want %q", loc, categoriesPath)
	}

	var first struct {
		OK      bool   `json:"ok"`
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	getJSON(t, client, srv.URL+"/flash-take", &first)
	if !first.OK || first.Type != "success" || first.Message != "Category added successfully" {
		t.Errorf("first take = %+v", first)
	}

	var second struct {
		OK bool `json:"ok"`
	}
	getJSON(t, client, srv.URL+"/flash-take", &second)
	if second.OK {
		t.Error("flash must be consumed exactly once")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
