package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go-videotube/internal/middleware"
	"go-videotube/internal/model"
)

type accountService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error)
	Logout(ctx context.Context, identity model.User) error
	Refresh(ctx context.Context, presented string) (model.TokenPair, error)
	ChangePassword(ctx context.Context, identity model.User, req model.ChangePasswordRequest) error
	CurrentUser(identity model.User) model.User
	UpdateAccount(ctx context.Context, identity model.User, req model.UpdateAccountRequest) (model.User, error)
	UpdateAvatar(ctx context.Context, identity model.User, upload *model.Upload) (model.User, error)
	UpdateCoverImage(ctx context.Context, identity model.User, upload *model.Upload) (model.User, error)
}

type AccountHandler struct {
	service       accountService
	cookies       CookieOptions
	maxUploadSize int64
}

func NewAccountHandler(service accountService, cookies CookieOptions, maxUploadSize int64) *AccountHandler {
	return &AccountHandler{service: service, cookies: cookies, maxUploadSize: maxUploadSize}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, h.requestLimit(2))
	defer cleanupMultipart(r)

	var req model.RegisterRequest
	if err := decodeFields(r, map[string]*string{
		"username": &req.Username,
		"fullName": &req.FullName,
		"email":    &req.Email,
		"password": &req.Password,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	if r.MultipartForm != nil {
		avatar, avatarCloser, err := formFile(r, "avatar")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if avatarCloser != nil {
			defer avatarCloser.Close()
		}

		cover, coverCloser, err := formFile(r, "coverImage")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if coverCloser != nil {
			defer coverCloser.Close()
		}

		req.Avatar, req.CoverImage = avatar, cover
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, "User registered successfully")
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, h.requestLimit(0))

	var req model.LoginRequest
	if err := decodeFields(r, map[string]*string{
		"username": &req.Username,
		"email":    &req.Email,
		"password": &req.Password,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.setTokens(w, result.AccessToken, result.RefreshToken)
	writeSuccess(w, http.StatusOK, result, "User logged in successfully")
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), identity); err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.clear(w)
	writeSuccess(w, http.StatusOK, nil, "User logged out")
}

func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var presented string
	if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		presented = strings.TrimSpace(cookie.Value)
	}
	if presented == "" {
		r.Body = http.MaxBytesReader(w, r.Body, h.requestLimit(0))
		if err := decodeFields(r, map[string]*string{"refreshToken": &presented}); err != nil {
			writeError(w, r, err)
			return
		}
	}

	pair, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.setPair(w, pair)
	writeSuccess(w, http.StatusOK, pair, "Access token refreshed")
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.requestLimit(0))

	var req model.ChangePasswordRequest
	if err := decodeFields(r, map[string]*string{
		"oldPassword": &req.OldPassword,
		"newPassword": &req.NewPassword,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity, req); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Password changed successfully")
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	writeSuccess(w, http.StatusOK, h.service.CurrentUser(identity), "Current user fetched successfully")
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.requestLimit(0))

	var req model.UpdateAccountRequest
	if err := decodeFields(r, map[string]*string{
		"fullName": &req.FullName,
		"email":    &req.Email,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.service.UpdateAccount(r.Context(), identity, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, "Account details updated successfully")
}

func (h *AccountHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.service.UpdateAvatar, "Avatar updated successfully")
}

func (h *AccountHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.service.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdater func(ctx context.Context, identity model.User, upload *model.Upload) (model.User, error)

func (h *AccountHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdater, message string) {
	defer r.Body.Close()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.requestLimit(1))
	defer cleanupMultipart(r)

	var upload *model.Upload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := parseForm(r); err != nil {
			writeError(w, r, err)
			return
		}

		var closer io.Closer
		var err error
		upload, closer, err = formFile(r, field)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if closer != nil {
			defer closer.Close()
		}
	}

	user, err := update(r.Context(), identity, upload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, message)
}

// requestLimit caps a body that carries the given number of files plus
// some room for the text fields.
func (h *AccountHandler) requestLimit(files int) int64 {
	const fieldAllowance = 64 << 10
	return int64(files)*h.maxUploadSize + fieldAllowance
}
