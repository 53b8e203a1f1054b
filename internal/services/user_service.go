package services

import (
	"context"
	"strings"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/repositories"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetUser(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ListUsers(db *gorm.DB, filter *dto.AdminUserFilter, page, pageSize int) (*dto.ListResponse[dto.UserResponse], error)
}

type UserServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	reviewRepo       repositories.ReviewRepository
	media            MediaService
	inTx             Transactor
}

func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	reviewRepo repositories.ReviewRepository,
	media MediaService,
) UserService {
	return &UserServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		reviewRepo:       reviewRepo,
		media:            media,
		inTx:             GormTransactor,
	}
}

func (s *UserServiceImpl) GetUser(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	if !validUUID(userID) {
		return nil, apperrors.ErrUserNotFound
	}
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	rating, err := s.reviewRepo.AverageRating(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user, rating), nil
}

// UpdateMe applies a partial profile update. A new password revokes every refresh token.
func (s *UserServiceImpl) UpdateMe(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Biography != nil {
		user.Biography = *req.Biography
	}

	var newHash string
	if req.NewPassword != nil {
		if err := passwordError("new_password", *req.NewPassword); err != nil {
			return nil, err
		}
		if newHash, err = auth.HashPassword(*req.NewPassword); err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.PasswordHash = newHash
	}

	oldAvatarKey := user.AvatarKey
	var newAvatarKey string
	if req.Avatar != nil && s.media != nil {
		if user.Avatar, newAvatarKey, err = s.media.StoreAvatar(ctx, user.ID, req.Avatar); err != nil {
			return nil, err
		}
		user.AvatarKey = newAvatarKey
	}

	err = s.inTx(db, func(tx *gorm.DB) error {
		if err := s.userRepo.Update(tx, user); err != nil {
			return err
		}
		if newHash != "" {
			return s.refreshTokenRepo.DeleteByUserID(tx, user.ID)
		}
		return nil
	})
	if err != nil {
		if newAvatarKey != "" {
			s.media.Delete(ctx, []string{newAvatarKey})
		}
		return nil, handleRepoError(err)
	}

	if newAvatarKey != "" && oldAvatarKey != "" {
		s.media.Delete(ctx, []string{oldAvatarKey})
	}
	if newHash != "" {
		logger.CtxInfo(ctx, "password changed, refresh tokens revoked", "user_id", user.ID)
	}

	return s.GetUser(db, user.ID)
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB, filter *dto.AdminUserFilter, page, pageSize int) (*dto.ListResponse[dto.UserResponse], error) {
	page, pageSize = repositories.NormalizePage(page, pageSize)
	users, total, err := s.userRepo.FindWithFilter(db, repositories.UserFilter{
		Role:     filter.Role,
		Search:   filter.Search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	ratings, err := s.reviewRepo.AverageRatings(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, *dto.NewUserResponse(&users[i], ratings[users[i].ID]))
	}
	return dto.NewListResponse(items, total, page, pageSize), nil
}
