package postgres

import (
	"context"

	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/repository"
	"slynk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

func (repo *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where(query, arg).Take(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

// ExistsByEmailOrUsername always reads from the primary; a lagging replica would let duplicates through to the insert.
func (repo *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	return repo.exists(ctx, "email = ? OR username = ?", email, username)
}

func (repo *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return repo.exists(ctx, "email = ?", email)
}

func (repo *userRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return repo.exists(ctx, "phone = ?", phone)
}

func (repo *userRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&model.UserModel{}).
		Where(query, args...).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "failed to check existing user")
	}

	return count > 0, nil
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	if userM.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate user id")
		}
		userM.ID = id
	}

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrAccountAlreadyExists.WrapMessage(err.Error())
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

func fromUserDomain(user *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:           user.ID,
		Name:         user.Name,
		Username:     user.Username,
		Email:        user.Email,
		Phone:        user.Phone,
		PasswordHash: user.PasswordHash,
		Role:         user.Role.String(),
		Verified:     user.Verified,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toUserDomain(userM *model.UserModel) *entity.User {
	return &entity.User{
		ID:           userM.ID,
		Name:         userM.Name,
		Username:     userM.Username,
		Email:        userM.Email,
		Phone:        userM.Phone,
		PasswordHash: userM.PasswordHash,
		Role:         entity.Role(userM.Role),
		Verified:     userM.Verified,
		CreatedAt:    userM.CreatedAt,
		UpdatedAt:    userM.UpdatedAt,
	}
}
