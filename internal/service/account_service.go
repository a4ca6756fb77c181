package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-videotube/internal/media"
	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

const minPasswordLength = 6

type accountStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username string, email string) (model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	UpdateAccount(ctx context.Context, id string, fullName string, email string) (model.User, error)
	UpdateAvatar(ctx context.Context, id string, avatarURL string) (model.User, error)
	UpdateCoverImage(ctx context.Context, id string, coverURL string) (model.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

type sessionTokens interface {
	IssueTokens(ctx context.Context, userID string) (model.TokenPair, error)
	RotateRefresh(ctx context.Context, presented string) (model.TokenPair, error)
	RevokeRefresh(ctx context.Context, userID string) error
}

type AccountService struct {
	users      accountStore
	tokens     sessionTokens
	media      media.Store
	bcryptCost int
	now        func() time.Time
}

func NewAccountService(users accountStore, tokens sessionTokens, store media.Store) *AccountService {
	return &AccountService{
		users:      users,
		tokens:     tokens,
		media:      store,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Register validates the request, uploads the avatar (and the cover when
// present) and creates the user. Nothing is written before validation passes.
func (s *AccountService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	username := strings.TrimSpace(req.Username)
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	password := req.Password

	if username == "" || fullName == "" || email == "" || strings.TrimSpace(password) == "" {
		return model.User{}, apierror.BadRequest("All fields are required")
	}
	if !strings.Contains(email, "@") {
		return model.User{}, apierror.BadRequest("Invalid email address", email)
	}
	if len(password) < minPasswordLength {
		return model.User{}, apierror.BadRequest("Password must be at least 6 characters long")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return model.User{}, apierror.BadRequest("Username cannot contain spaces", username)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return model.User{}, apierror.Internal(err, "Something went wrong while registering the user")
	}
	if exists {
		return model.User{}, apierror.Conflict("User with email or username already exists")
	}

	if req.Avatar == nil {
		return model.User{}, apierror.BadRequest("Avatar file is required")
	}
	if err := prepareImage(req.Avatar, "avatar"); err != nil {
		return model.User{}, err
	}
	if req.CoverImage != nil {
		if err := prepareImage(req.CoverImage, "coverImage"); err != nil {
			return model.User{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return model.User{}, apierror.Internal(err, "Something went wrong while registering the user")
	}

	avatar, err := s.media.Upload(ctx, media.FolderAvatars, *req.Avatar)
	if err != nil {
		return model.User{}, apierror.Internal(err, "Error uploading avatar")
	}

	var cover media.Asset
	if req.CoverImage != nil {
		cover, err = s.media.Upload(ctx, media.FolderCovers, *req.CoverImage)
		if err != nil {
			slog.WarnContext(ctx, "cover image upload failed", "username", username, "error", err)
			cover = media.Asset{}
		}
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     strings.ToLower(username),
		Email:        email,
		FullName:     fullName,
		Avatar:       avatar.URL,
		CoverImage:   cover.URL,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.discard(ctx, avatar.URL, cover.URL)
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.User{}, apierror.Conflict("User with email or username already exists")
		}
		return model.User{}, apierror.Internal(err, "Something went wrong while registering the user")
	}

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return model.User{}, apierror.Internal(err, "Something went wrong while registering the user")
	}

	slog.InfoContext(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return created.Public(), nil
}

func (s *AccountService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" && email == "" {
		return model.LoginResult{}, apierror.BadRequest("Username or email is required")
	}
	if req.Password == "" {
		return model.LoginResult{}, apierror.BadRequest("Password is required")
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.LoginResult{}, apierror.NotFound("User does not exist")
		}
		return model.LoginResult{}, apierror.Internal(err, "Something went wrong while logging in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.LoginResult{}, apierror.Unauthorized("Invalid password")
	}

	pair, err := s.tokens.IssueTokens(ctx, user.ID)
	if err != nil {
		return model.LoginResult{}, err
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return model.LoginResult{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the stored refresh token. A user deleted in the meantime has
// nothing left to revoke.
func (s *AccountService) Logout(ctx context.Context, identity model.User) error {
	if err := s.tokens.RevokeRefresh(ctx, identity.ID); err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return apierror.Internal(err, "Something went wrong while logging out")
	}
	return nil
}

func (s *AccountService) Refresh(ctx context.Context, presented string) (model.TokenPair, error) {
	return s.tokens.RotateRefresh(ctx, presented)
}

func (s *AccountService) ChangePassword(ctx context.Context, identity model.User, req model.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return apierror.BadRequest("Old and new password are required")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apierror.BadRequest("Password must be at least 6 characters long")
	}

	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.Unauthorized("Unauthorized access")
		}
		return apierror.Internal(err, "Something went wrong while changing the password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apierror.Unauthorized("Invalid password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return apierror.Internal(err, "Something went wrong while changing the password")
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return apierror.Internal(err, "Something went wrong while changing the password")
	}

	slog.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}

func (s *AccountService) CurrentUser(identity model.User) model.User {
	return identity.Public()
}

func (s *AccountService) UpdateAccount(ctx context.Context, identity model.User, req model.UpdateAccountRequest) (model.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)

	if fullName == "" || email == "" {
		return model.User{}, apierror.BadRequest("Full name and email are required")
	}
	if !strings.Contains(email, "@") {
		return model.User{}, apierror.BadRequest("Invalid email address", email)
	}

	updated, err := s.users.UpdateAccount(ctx, identity.ID, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserAlreadyExists):
			return model.User{}, apierror.Conflict("Email is already in use")
		case errors.Is(err, model.ErrUserNotFound):
			return model.User{}, apierror.Unauthorized("Unauthorized access")
		default:
			return model.User{}, apierror.Internal(err, "Something went wrong while updating the account")
		}
	}

	return updated.Public(), nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, identity model.User, upload *model.Upload) (model.User, error) {
	return s.replaceImage(ctx, identity, upload, imageSlot{
		field:   "avatar",
		folder:  media.FolderAvatars,
		current: identity.Avatar,
		update:  s.users.UpdateAvatar,
	})
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, identity model.User, upload *model.Upload) (model.User, error) {
	return s.replaceImage(ctx, identity, upload, imageSlot{
		field:   "coverImage",
		folder:  media.FolderCovers,
		current: identity.CoverImage,
		update:  s.users.UpdateCoverImage,
	})
}

type imageSlot struct {
	field   string
	folder  string
	current string
	update  func(ctx context.Context, id string, url string) (model.User, error)
}

func (s *AccountService) replaceImage(ctx context.Context, identity model.User, upload *model.Upload, slot imageSlot) (model.User, error) {
	if upload == nil {
		return model.User{}, apierror.BadRequest(slot.field + " file is missing")
	}
	if err := prepareImage(upload, slot.field); err != nil {
		return model.User{}, err
	}

	asset, err := s.media.Upload(ctx, slot.folder, *upload)
	if err != nil {
		return model.User{}, apierror.Internal(err, "Error while uploading "+slot.field)
	}

	updated, err := slot.update(ctx, identity.ID, asset.URL)
	if err != nil {
		s.discard(ctx, asset.URL)
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, apierror.Unauthorized("Unauthorized access")
		}
		return model.User{}, apierror.Internal(err, "Something went wrong while updating "+slot.field)
	}

	s.discard(ctx, slot.current)
	return updated.Public(), nil
}

// discard deletes blobs best-effort; failures are only logged.
func (s *AccountService) discard(ctx context.Context, urls ...string) {
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		if err := s.media.Delete(ctx, u); err != nil {
			slog.WarnContext(ctx, "media cleanup failed", "url", u, "error", err)
		}
	}
}

// prepareImage checks that an upload really is an image and records the
// sniffed content type on it.
func prepareImage(upload *model.Upload, field string) error {
	if upload.Body == nil {
		return apierror.BadRequest(field + " file is missing")
	}

	contentType, err := media.SniffContentType(upload.Body)
	if err != nil {
		return apierror.BadRequest("Could not read "+field+" file", err.Error())
	}
	if !media.IsImageMIME(contentType) {
		return apierror.BadRequest(field+" must be an image", contentType)
	}
	if _, err := media.InspectImage(upload.Body); err != nil {
		return apierror.BadRequest(field+" is not a valid image", err.Error())
	}

	upload.ContentType = contentType
	return nil
}
