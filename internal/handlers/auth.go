package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// AuthHandler implements registration and the session lifecycle endpoints.
type AuthHandler struct {
	Users        UserStore
	Sessions     SessionManager
	Uploads      Uploader
	CookieSecure bool
}

// Register handles POST /api/v1/users/register.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := h.Uploads.parseForm(w, r); err != nil {
		return err
	}

	req := registerRequest{
		Fullname: strings.TrimSpace(r.FormValue("fullname")),
		Username: strings.ToLower(strings.TrimSpace(r.FormValue("username"))),
		Email:    strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		Password: r.FormValue("password"),
	}
	if blank(req.Fullname, req.Username, req.Email, req.Password) {
		return badRequest("fullname, username, email and password are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return badRequest("invalid email address")
	}

	taken, err := h.Users.Taken(ctx, req.Username, req.Email)
	if err != nil {
		return err
	}
	if taken {
		logger.Warn("register existing account", "username", req.Username, "email", req.Email)
		return conflict("user with email or username already exists")
	}

	avatar, err := h.Uploads.required(ctx, r, "avatar", "image", folderAvatars)
	if err != nil {
		return err
	}
	cover, err := h.Uploads.optional(ctx, r, "coverImage", "image", folderCovers)
	if err != nil {
		h.Uploads.discard(ctx, avatar)
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Uploads.discard(ctx, avatar, cover)
		return err
	}

	user := models.User{
		Username:   req.Username,
		Email:      req.Email,
		Fullname:   req.Fullname,
		Password:   string(hashed),
		Avatar:     avatar,
		CoverImage: cover,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		h.Uploads.discard(ctx, avatar, cover)
		if errors.Is(err, repositories.ErrConflict) {
			return conflict("user with email or username already exists")
		}
		return err
	}

	logger.Info("user registered", "userId", user.ID.Hex())
	response.Success(ctx, w, http.StatusCreated, user, "user registered successfully")
	return nil
}

// Login handles POST /api/v1/users/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	login := strings.TrimSpace(req.Username)
	if login == "" {
		login = strings.TrimSpace(req.Email)
	}
	if login == "" {
		return badRequest("username or email is required")
	}
	if req.Password == "" {
		return badRequest("password is required")
	}

	user, err := h.Users.FindByLogin(ctx, login)
	if err != nil {
		return orNotFound(err, "user does not exist")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID.Hex())
		return unauthorized("invalid user credentials")
	}

	tokens, err := h.Sessions.Issue(ctx, identityOf(user))
	if err != nil {
		return err
	}

	h.setSessionCookies(w, tokens)
	response.Success(ctx, w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "user logged in successfully")
	return nil
}

// Logout handles POST /api/v1/users/logout.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}

	if err := h.Sessions.Revoke(ctx, user.ID.Hex()); err != nil {
		return err
	}

	h.clearSessionCookies(w)
	response.Success(ctx, w, http.StatusOK, struct{}{}, "user logged out")
	return nil
}

// Refresh handles POST /api/v1/users/refreshtoken. The token is read from
// the refresh cookie or the JSON body.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	token := ""
	if c, err := r.Cookie(auth.RefreshCookie); err == nil {
		token = strings.TrimSpace(c.Value)
	}
	if token == "" {
		var req refreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return err
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		return unauthorized("unauthorized request")
	}

	tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		if auth.IsUnauthorized(err) {
			return &apiError{status: http.StatusUnauthorized, message: "refresh token is expired or used", cause: err}
		}
		return err
	}

	h.setSessionCookies(w, tokens)
	response.Success(ctx, w, http.StatusOK, tokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "access token refreshed")
	return nil
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	current, err := caller(r)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if blank(req.OldPassword, req.NewPassword) {
		return badRequest("old and new password are required")
	}

	user, err := h.Users.FindWithPassword(ctx, current.ID)
	if err != nil {
		return orNotFound(err, "user does not exist")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return badRequest("invalid old password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, struct{}{}, "password changed successfully")
	return nil
}

func (h AuthHandler) setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, h.cookie(auth.AccessCookie, tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(w, h.cookie(auth.RefreshCookie, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

func (h AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.AccessCookie, auth.RefreshCookie} {
		c := h.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h AuthHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func identityOf(user models.User) auth.Identity {
	return auth.Identity{
		UserID:   user.ID.Hex(),
		Email:    user.Email,
		Username: user.Username,
		Fullname: user.Fullname,
	}
}

type registerRequest struct {
	Fullname string
	Username string
	Email    string
	Password string
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
