package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/favourites"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/readonly"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
)

var testUploads = config.Upload{MaxCoverBytes: 4096, MaxPDFBytes: 8192}

type serverOptions struct {
	csrf     bool
	readOnly bool
}

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	router  *gin.Engine
	audit   *audit.Service
	catalog *catalog.Service
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "http.db")

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func setupTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	db := setupTestDB(t)

	authCfg := config.Auth{
		BcryptCost:       4,
		SessionLifetime:  time.Hour,
		MaxLoginAttempts: 5,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}

	auditService := audit.NewService(auditrepo.NewRepository(db))
	t.Cleanup(auditService.Wait)
	catalogService := catalog.NewService(
		books.NewRepository(db, books.Limits{
			MaxCoverBytes: testUploads.MaxCoverBytes,
			MaxPDFBytes:   testUploads.MaxPDFBytes,
		}),
		favourites.NewRepository(db),
		auditService,
		0,
	)

	authService := auth.NewService(users.NewRepository(db), authCfg)
	sessions := auth.NewSessionManager(memstore.New(), authCfg)
	authController := auth.NewAuthController(authService, sessions, auditService, authCfg)
	t.Cleanup(authController.Stop)

	cfg := RouterConfig{
		Catalog:        catalogService,
		Activity:       auditService,
		AuthController: authController,
		AuthMiddleware: auth.NewMiddleware(authService, sessions),
		SessionManager: sessions,
		Uploads:        testUploads,
		ReadOnly:       readonly.NewMiddleware(opts.readOnly),
		HealthChecks: map[string]Pinger{
			"database": PingFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
		},
		Version: "test",
	}
	if opts.csrf {
		cfg.CSRFSecret = []byte("test-secret-key-32-bytes-long!!!")
	}

	return &testServer{
		t:       t,
		db:      db,
		router:  NewRouter(cfg),
		audit:   auditService,
		catalog: catalogService,
	}
}

// client keeps the cookies and CSRF token of one browser-like session.
type client struct {
	srv       *testServer
	cookies   map[string]*http.Cookie
	csrfToken string
}

func (s *testServer) newClient() *client {
	return &client{srv: s, cookies: map[string]*http.Cookie{}}
}

func (cl *client) send(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range cl.cookies {
		req.AddCookie(cookie)
	}
	if cl.csrfToken != "" {
		req.Header.Set(auth.CSRFTokenHeader, cl.csrfToken)
	}

	rr := httptest.NewRecorder()
	cl.srv.router.ServeHTTP(rr, req)

	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(cl.cookies, cookie.Name)
			continue
		}
		cl.cookies[cookie.Name] = cookie
	}
	return rr
}

func (cl *client) do(method, path string) *httptest.ResponseRecorder {
	return cl.send(httptest.NewRequest(method, path, nil))
}

func (cl *client) doJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return cl.send(req)
}

// formFile is one file part of a multipart form.
type formFile struct {
	field string
	name  string
	data  []byte
}

func (cl *client) doMultipart(method, path string, fields map[string]string, files ...formFile) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(cl.srv.t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(cl.srv.t, err)
		_, err = io.Copy(part, bytes.NewReader(f.data))
		require.NoError(cl.srv.t, err)
	}
	require.NoError(cl.srv.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return cl.send(req)
}

// signUp registers email and logs the client in.
func (cl *client) signUp(email string) uint {
	t := cl.srv.t
	rr := cl.doJSON(http.MethodPost, "/api/auth/register",
		fmt.Sprintf(`{"email":%q,"name":"Reader","password":"correct horse"}`, email))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = cl.doJSON(http.MethodPost, "/api/auth/login",
		fmt.Sprintf(`{"email":%q,"password":"correct horse"}`, email))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.User.ID
}

func bookFields(title, date string) map[string]string {
	return map[string]string{
		"title":        title,
		"author":       "Frank Herbert",
		"description":  "Desert planet",
		"publish_date": date,
	}
}

// createBook uploads a book with both files and returns its id.
func (cl *client) createBook(title, date string) uint {
	t := cl.srv.t
	rr := cl.doMultipart(http.MethodPost, "/api/books", bookFields(title, date),
		formFile{FieldCoverImage, "cover.png", pngBytes},
		formFile{FieldPDFFile, "book.pdf", pdfBytes},
	)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var view BookView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	return view.ID
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
