package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/models"
)

type testServer struct {
	t        *testing.T
	handler  http.Handler
	world    *world
	sessions *auth.InMemorySessionStore
	manager  *auth.Manager
	storage  *fakeStorage
	cleaner  *fakeCleaner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	w := newWorld()
	sessions := auth.NewInMemorySessionStore()
	manager := auth.NewManager(auth.NewSigner(config.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	}), sessions)
	storage := &fakeStorage{}
	cleaner := &fakeCleaner{}

	handler := NewRouter(Dependencies{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Users:         fakeUsers{w},
		Sessions:      manager,
		Tokens:        manager,
		Videos:        fakeVideos{w},
		Comments:      fakeComments{w},
		Likes:         fakeLikes{w},
		Subscriptions: fakeSubscriptions{w},
		Playlists:     fakePlaylists{w},
		Tweets:        fakeTweets{w},
		Uploads:       Uploader{Storage: storage, Cleaner: cleaner, MaxBytes: 1 << 20},
		DB:            fakePinger{},
	})

	return &testServer{t: t, handler: handler, world: w, sessions: sessions, manager: manager, storage: storage, cleaner: cleaner}
}

// user seeds an account with the password "secret" and returns it with a
// valid access token.
func (s *testServer) user(username string) (models.User, string) {
	s.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		s.t.Fatalf("hash password: %v", err)
	}
	u := s.world.seedUser(username, username+"@example.com", string(hash))
	tokens, err := s.manager.Issue(context.Background(), identityOf(u))
	if err != nil {
		s.t.Fatalf("issue tokens: %v", err)
	}
	return u, tokens.AccessToken
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// expect asserts the status and decodes the envelope data into dst when non-nil.
func expect(t *testing.T, rec *httptest.ResponseRecorder, status int, dst any) envelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d got %d: %s", status, rec.Code, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if env.StatusCode != status {
		t.Fatalf("envelope status %d does not match %d", env.StatusCode, status)
	}
	if env.Success != (status < 400) {
		t.Fatalf("unexpected success flag %v for status %d", env.Success, status)
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v (%s)", err, env.Data)
		}
	}
	return env
}

type formFile struct {
	field       string
	filename    string
	contentType string
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("payload")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *testServer) newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
