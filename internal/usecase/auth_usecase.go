package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hamiddiallo/ecommerce/internal/domain/model"
	"github.com/hamiddiallo/ecommerce/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidatePasswordChange(ctx context.Context, current string, next string) error
}

type UserDTO struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
	IsActive     bool   `json:"is_active"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

type AuthUsecase struct {
	secret    []byte
	ttl       time.Duration
	users     repository.UserRepository
	validator AuthValidator
}

func NewAuthUsecase(secret string, ttl time.Duration, users repository.UserRepository, validator AuthValidator) *AuthUsecase {
	return &AuthUsecase{
		secret:    []byte(secret),
		ttl:       ttl,
		users:     users,
		validator: validator,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (UserDTO, error) {
	email := normalizeEmail(req.Email)
	if err := u.validator.ValidateRegister(ctx, email, req.Password); err != nil {
		return UserDTO{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, WrapHTTPError(http.StatusInternalServerError, "internal error", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return UserDTO{}, NewHTTPError(http.StatusConflict, "email already used")
		}
		return UserDTO{}, dbError(err)
	}
	return toUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (AuthLoginResponse, error) {
	email := normalizeEmail(req.Email)
	if err := u.validator.ValidateLogin(ctx, email, req.Password); err != nil {
		return AuthLoginResponse{}, err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthLoginResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AuthLoginResponse{}, dbError(err)
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return AuthLoginResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return AuthLoginResponse{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	//last_login更新（失敗してもログインは通す）
	now := time.Now()
	user.LastLoginAt = &now
	_ = u.users.TouchLastLogin(ctx, user.ID, now)

	accessToken, expiresIn, err := u.issueAccessToken(user, now)
	if err != nil {
		return AuthLoginResponse{}, WrapHTTPError(http.StatusInternalServerError, "internal error", err)
	}

	return AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return UserDTO{}, dbError(err)
	}
	if !user.IsActive {
		return UserDTO{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}
	return toUserDTO(user), nil
}

// パスワード変更。token_versionを上げて既存トークンを無効にする
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validator.ValidatePasswordChange(ctx, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return dbError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "internal error", err)
	}
	user.PasswordHash = string(pwHash)
	user.TokenVersion++
	if err := u.users.Update(ctx, user); err != nil {
		return dbError(err)
	}
	return nil
}

// 管理者による強制ログアウト
func (u *AuthUsecase) ForceLogout(ctx context.Context, targetUserID int64) (ForceLogoutResponse, error) {
	if targetUserID <= 0 {
		return ForceLogoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ForceLogoutResponse{}, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return ForceLogoutResponse{}, dbError(err)
	}

	//更新後を取得してnew_token_versionを返す
	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return ForceLogoutResponse{}, dbError(err)
	}
	return ForceLogoutResponse{UserID: user.ID, NewTokenVersion: user.TokenVersion}, nil
}

// 起動時の管理者作成。既存ユーザーならADMINに昇格する
func (u *AuthUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err == nil {
		if user.Role == model.RoleAdmin && user.IsActive {
			return nil
		}
		user.Role = model.RoleAdmin
		user.IsActive = true
		return u.users.Update(ctx, user)
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return u.users.Create(ctx, &model.User{
		Email:        email,
		PasswordHash: string(pwHash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	})
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User, now time.Time) (string, int, error) {
	exp := now.Add(u.ttl)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int(u.ttl.Seconds()), nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
	}
}
