package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/email"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/models"
	"rentshare_backend/internal/repositories"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	msgNoAccountForEmail = "No account found with this email address"
	msgIncorrectPassword = "Incorrect password"

	msgResetBothNotFound  = "Both email and phone number not found"
	msgResetPhoneNotFound = "Phone number not found"
	msgResetEmailNotFound = "Email not found"
)

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(db *gorm.DB, req *dto.TokenRequest) (*dto.TokenResponse, error)
	Refresh(db *gorm.DB, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	reviewRepo       repositories.ReviewRepository
	media            MediaService
	emailProvider    email.Provider
	inTx             Transactor
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	reviewRepo repositories.ReviewRepository,
	media MediaService,
	emailProvider email.Provider,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		reviewRepo:       reviewRepo,
		media:            media,
		emailProvider:    emailProvider,
		inTx:             GormTransactor,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := passwordError("password", req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		Username:     req.Username,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Biography:    req.Biography,
		Role:         models.UserRoleUser,
	}

	if req.Avatar != nil && s.media != nil {
		// the avatar path is keyed by user id, so the id is assigned up front
		user.ID = uuid.NewString()
		user.Avatar, user.AvatarKey, err = s.media.StoreAvatar(ctx, user.ID, req.Avatar)
		if err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if s.media != nil && user.AvatarKey != "" {
			s.media.Delete(ctx, []string{user.AvatarKey})
		}
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID)
	if s.emailProvider != nil {
		go s.sendMail(user, "Welcome to RentShare", email.TemplateWelcome, nil)
	}

	return dto.NewUserResponse(user, 0), nil
}

func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.TokenRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(db, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.FieldError("email", msgNoAccountForEmail)
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.FieldError("password", msgIncorrectPassword)
	}

	return s.issueTokens(db, user)
}

// Refresh rotates the refresh token: the presented jti is revoked and a new pair issued.
func (s *AuthServiceImpl) Refresh(db *gorm.DB, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := auth.ParseRefreshToken(req.Refresh)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	var resp *dto.TokenResponse
	err = s.inTx(db, func(tx *gorm.DB) error {
		stored, err := s.refreshTokenRepo.FindByJTI(tx, claims.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
				return apperrors.ErrInvalidToken
			}
			return err
		}
		if time.Now().After(stored.ExpiresAt) || stored.UserID != claims.UserID {
			return apperrors.ErrInvalidToken
		}

		if err := s.refreshTokenRepo.DeleteByJTI(tx, claims.ID); err != nil {
			if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
				return apperrors.ErrInvalidToken
			}
			return err
		}

		user, err := s.userRepo.FindByID(tx, stored.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrInvalidToken
			}
			return err
		}

		resp, err = s.issueTokens(tx, user)
		return err
	})
	if err != nil {
		return nil, handleRepoError(err)
	}
	return resp, nil
}

// Logout revokes a refresh token. Revoking an already revoked token is not an error.
func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	claims, err := auth.ParseRefreshToken(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidToken
	}
	if err := s.refreshTokenRepo.DeleteByJTI(db, claims.ID); err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error {
	user, err := s.resolveResetTarget(db, strings.TrimSpace(req.Email), strings.TrimSpace(req.PhoneNumber))
	if err != nil {
		return err
	}

	if err := passwordError("new_password", req.NewPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	err = s.inTx(db, func(tx *gorm.DB) error {
		if err := s.userRepo.UpdatePassword(tx, user.ID, hash); err != nil {
			return err
		}
		return s.refreshTokenRepo.DeleteByUserID(tx, user.ID)
	})
	if err != nil {
		return handleRepoError(err)
	}

	logger.CtxInfo(ctx, "password reset", "user_id", user.ID)
	if s.emailProvider != nil {
		go s.sendMail(user, "Your RentShare password was reset", email.TemplatePasswordReset, email.TemplateData{
			"ResetAt": time.Now().UTC().Format(time.RFC1123),
		})
	}
	return nil
}

// resolveResetTarget requires both the email and the phone number to belong to the same account.
// Phone numbers are not unique, so the phone is matched against the email's account.
func (s *AuthServiceImpl) resolveResetTarget(db *gorm.DB, emailAddr, phone string) (*models.User, error) {
	byEmail, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}
	if byEmail != nil {
		if byEmail.PhoneNumber != phone {
			return nil, apperrors.NonFieldError(msgResetPhoneNotFound)
		}
		return byEmail, nil
	}

	_, err = s.userRepo.FindByPhoneNumber(db, phone)
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return nil, apperrors.NonFieldError(msgResetBothNotFound)
	case err != nil:
		return nil, apperrors.InternalError(err)
	}
	return nil, apperrors.NonFieldError(msgResetEmailNotFound)
}

func (s *AuthServiceImpl) issueTokens(db *gorm.DB, user *models.User) (*dto.TokenResponse, error) {
	access, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, jti, expiresAt, err := auth.GenerateRefreshToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.refreshTokenRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	rating, err := s.reviewRepo.AverageRating(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.TokenResponse{
		Access:  access,
		Refresh: refresh,
		User:    dto.NewUserResponse(user, rating),
	}, nil
}

func (s *AuthServiceImpl) sendMail(user *models.User, subject, template string, data email.TemplateData) {
	if data == nil {
		data = email.TemplateData{}
	}
	data["Username"] = user.Username
	data["Email"] = user.Email

	if err := s.emailProvider.SendTemplate([]string{user.Email}, subject, template, data); err != nil {
		logger.WithError(err).Error("failed to send email", "template", template, "user_id", user.ID)
	}
}
