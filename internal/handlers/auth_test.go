package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

var avatarFile = formFile{field: "avatar", filename: "me.png", contentType: "image/png"}

func registerFields(username string) map[string]string {
	return map[string]string{
		"fullname": "Test User",
		"username": username,
		"email":    username + "@example.com",
		"password": "secret",
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, http.MethodPost, "/api/v1/users/register", registerFields("Alice"), avatarFile,
		formFile{field: "coverImage", filename: "cover.jpg", contentType: "image/jpeg"})
	var user models.User
	expect(t, s.send(req, ""), http.StatusCreated, &user)

	if user.Username != "alice" {
		t.Fatalf("expected lower-cased username got %q", user.Username)
	}
	if user.Avatar.StorageKey != "avatars/me.png" || user.CoverImage.StorageKey != "covers/cover.jpg" {
		t.Fatalf("unexpected stored media %+v %+v", user.Avatar, user.CoverImage)
	}

	rec := s.send(multipartRequest(t, http.MethodPost, "/api/v1/users/register", registerFields("bob"), avatarFile), "")
	expect(t, rec, http.StatusCreated, nil)
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("password leaked in register response")
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	s.user("taken")

	cases := []struct {
		name   string
		fields map[string]string
		files  []formFile
		want   int
	}{
		{"whitespace fullname", map[string]string{"fullname": "   ", "username": "x", "email": "x@example.com", "password": "p"}, []formFile{avatarFile}, http.StatusBadRequest},
		{"missing password", map[string]string{"fullname": "X", "username": "x", "email": "x@example.com"}, []formFile{avatarFile}, http.StatusBadRequest},
		{"bad email", map[string]string{"fullname": "X", "username": "x", "email": "nope", "password": "p"}, []formFile{avatarFile}, http.StatusBadRequest},
		{"missing avatar", registerFields("fresh"), nil, http.StatusBadRequest},
		{"avatar not an image", registerFields("fresh"), []formFile{{field: "avatar", filename: "a.txt", contentType: "text/plain"}}, http.StatusBadRequest},
		{"duplicate username", registerFields("taken"), []formFile{avatarFile}, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := multipartRequest(t, http.MethodPost, "/api/v1/users/register", tc.fields, tc.files...)
			expect(t, s.send(req, ""), tc.want, nil)
		})
	}

	if len(s.storage.uploads) != 0 {
		t.Fatalf("expected no uploads for rejected registrations, got %v", s.storage.uploads)
	}
}

func TestLoginAndRefreshRotation(t *testing.T) {
	s := newTestServer(t)
	s.user("carol")

	rec := s.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": "carol@example.com", "password": "secret"})
	var login loginResponse
	expect(t, rec, http.StatusOK, &login)
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", login)
	}

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	for _, name := range []string{auth.AccessCookie, auth.RefreshCookie} {
		c, ok := cookies[name]
		if !ok || !c.HttpOnly {
			t.Fatalf("expected http-only %s cookie, got %+v", name, c)
		}
	}

	var rotated tokenResponse
	expect(t, s.do(http.MethodPost, "/api/v1/users/refreshtoken", "", refreshRequest{RefreshToken: login.RefreshToken}), http.StatusOK, &rotated)
	if rotated.RefreshToken == login.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	expect(t, s.do(http.MethodPost, "/api/v1/users/refreshtoken", "", refreshRequest{RefreshToken: login.RefreshToken}), http.StatusUnauthorized, nil)

	// The refresh cookie is accepted as well.
	req := s.newRequest(http.MethodPost, "/api/v1/users/refreshtoken")
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookie, Value: rotated.RefreshToken})
	expect(t, s.send(req, ""), http.StatusOK, nil)
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.user("dave")

	expect(t, s.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "nobody", "password": "secret"}), http.StatusNotFound, nil)
	expect(t, s.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "dave", "password": "wrong"}), http.StatusUnauthorized, nil)
	expect(t, s.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"password": "secret"}), http.StatusBadRequest, nil)
}

func TestLogoutRevokesSession(t *testing.T) {
	s := newTestServer(t)
	user, token := s.user("erin")

	if !s.sessions.Has(user.ID.Hex()) {
		t.Fatal("expected a stored session")
	}
	rec := s.do(http.MethodPost, "/api/v1/users/logout", token, nil)
	expect(t, rec, http.StatusOK, nil)
	if s.sessions.Has(user.ID.Hex()) {
		t.Fatal("expected session to be revoked")
	}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Fatalf("expected cookie %s to be cleared", c.Name)
		}
	}
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("frank")

	expect(t, s.do(http.MethodPost, "/api/v1/users/change-password", token, changePasswordRequest{OldPassword: "wrong", NewPassword: "next"}), http.StatusBadRequest, nil)
	expect(t, s.do(http.MethodPost, "/api/v1/users/change-password", token, changePasswordRequest{OldPassword: "secret", NewPassword: "next"}), http.StatusOK, nil)
	expect(t, s.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "frank", "password": "next"}), http.StatusOK, nil)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	expect(t, s.do(http.MethodGet, "/api/v1/users/current-user", "", nil), http.StatusUnauthorized, nil)
	expect(t, s.do(http.MethodGet, "/api/v1/videos", "garbage", nil), http.StatusUnauthorized, nil)

	user, token := s.user("gina")
	var current models.User
	expect(t, s.do(http.MethodGet, "/api/v1/users/current-user", token, nil), http.StatusOK, &current)
	if current.ID != user.ID {
		t.Fatalf("expected %s got %s", user.ID.Hex(), current.ID.Hex())
	}
}

func TestUpdateAccountAndAvatar(t *testing.T) {
	s := newTestServer(t)
	s.user("henry")
	_, token := s.user("iris")

	expect(t, s.do(http.MethodPatch, "/api/v1/users/update-account", token, updateAccountRequest{Fullname: "Iris", Email: "henry@example.com"}), http.StatusConflict, nil)

	var updated models.User
	expect(t, s.do(http.MethodPatch, "/api/v1/users/update-account", token, updateAccountRequest{Fullname: " Iris I ", Email: "IRIS2@example.com"}), http.StatusOK, &updated)
	if updated.Fullname != "Iris I" || updated.Email != "iris2@example.com" {
		t.Fatalf("unexpected account %+v", updated)
	}

	req := multipartRequest(t, http.MethodPatch, "/api/v1/users/avatar", nil, formFile{field: "avatar", filename: "new.png", contentType: "image/png"})
	expect(t, s.send(req, token), http.StatusOK, &updated)
	if updated.Avatar.StorageKey != "avatars/new.png" {
		t.Fatalf("unexpected avatar %+v", updated.Avatar)
	}
	if keys := s.cleaner.Keys(); len(keys) != 1 || keys[0] != "avatars/iris.png" {
		t.Fatalf("expected previous avatar to be scheduled for removal, got %v", keys)
	}
}
