package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sfrosal/portfolio-api/auth"
	"github.com/sfrosal/portfolio-api/database"
	"github.com/sfrosal/portfolio-api/models"
	"github.com/sfrosal/portfolio-api/services"
)

const testSecret = "test-secret"

type testEnv struct {
	router   http.Handler
	db       *gorm.DB
	repos    database.Database
	uploader *fakeUploader
	mailer   *fakeMailer
	codec    *auth.Codec
}

// newTestEnv wires the full router against an in-memory database with fake
// upstreams. Extra config entries override the test defaults.
func newTestEnv(t *testing.T, extraConfig map[string]string) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Technology{},
		&models.ProjectImage{},
	))

	cfg := map[string]string{"SESSION_SECRET": testSecret}
	for key, value := range extraConfig {
		cfg[key] = value
	}

	repos := database.New(db)
	uploader := &fakeUploader{}
	mailer := &fakeMailer{}

	router := newRouter(repos,
		withConfig(cfg),
		withStartupTime(time.Now()),
		withUploader(uploader),
		withMailer(mailer),
	)

	return &testEnv{
		router:   router,
		db:       db,
		repos:    repos,
		uploader: uploader,
		mailer:   mailer,
		codec:    auth.NewCodec(testSecret, time.Hour),
	}
}

// createUser seeds the admin account and returns it with the plaintext
// password it was created with.
func (e *testEnv) createUser(t *testing.T, email string) (*models.User, string) {
	t.Helper()

	const password = "correct horse battery staple"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{Email: email, Password: hash, Name: "Site Owner"}
	require.NoError(t, e.db.Create(user).Error)
	return user, password
}

// tokenFor issues a valid session token for the user.
func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := e.codec.Issue(user.ID, user.Email)
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func withSessionCookie(token string) requestOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}
}

func withBearer(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withContentType(contentType string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Content-Type", contentType)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(t, method, path, bytes.NewReader(body), opts...)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// responseCookie digs a named cookie out of the recorded response.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	resp := http.Response{Header: rec.Header()}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// fakeUploader records calls and answers with a canned result, or a forced
// error, or a per-filename error for batch scenarios.
type fakeUploader struct {
	calls  []uploadCall
	err    error
	failOn map[string]error
}

type uploadCall struct {
	filename string
	opts     services.UploadOptions
	size     int
}

func (f *fakeUploader) Upload(ctx context.Context, file io.Reader, filename string, opts services.UploadOptions) (*services.UploadResult, error) {
	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, uploadCall{filename: filename, opts: opts, size: len(payload)})

	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.failOn[filename]; ok {
		return nil, err
	}

	return &services.UploadResult{
		PublicID: "portfolio/" + filename,
		URL:      "https://res.example.com/portfolio/" + filename,
		Width:    800,
		Height:   600,
		Format:   "webp",
		Bytes:    int64(len(payload)),
	}, nil
}

// fakeMailer records submissions and optionally fails.
type fakeMailer struct {
	sent []services.ContactMessage
	err  error
}

func (f *fakeMailer) SendContactEmail(ctx context.Context, msg services.ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type testFile struct {
	field       string
	name        string
	contentType string
	content     []byte
}

// multipartBody builds a multipart form with explicit per-part MIME types.
func multipartBody(t *testing.T, files []testFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		header.Set("Content-Type", f.contentType)

		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
