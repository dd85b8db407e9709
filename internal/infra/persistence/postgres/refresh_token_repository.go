// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/repository"
	"slynk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// refreshTokenRepository implements the domain.RefreshTokenRepository interface.
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository is the constructor for refreshTokenRepository.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (repo *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	tokenM := fromRefreshTokenDomain(token)
	if tokenM.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate refresh token id")
		}
		tokenM.ID = id
	}

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "refresh token hash collision")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "refresh token references a missing user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create refresh token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

func (repo *refreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	tokenM, err := repo.findByHash(repo.db.WithContext(ctx), tokenHash)
	if err != nil {
		return nil, err
	}

	return toRefreshTokenDomain(tokenM), nil
}

func (repo *refreshTokenRepository) findByHash(db *gorm.DB, tokenHash string) (*model.RefreshTokenModel, error) {
	var tokenM model.RefreshTokenModel
	if err := db.Clauses(dbresolver.Write).Where("token_hash = ?", tokenHash).Take(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find refresh token")
	}

	return &tokenM, nil
}

// ConsumeByHash reads the row and deletes it with a conditional DELETE. When two callers race,
// only the one whose DELETE affects the row gets it back; the other sees ErrRefreshTokenNotFound.
func (repo *refreshTokenRepository) ConsumeByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	db := repo.db.WithContext(ctx)

	tokenM, err := repo.findByHash(db, tokenHash)
	if err != nil {
		return nil, err
	}

	result := db.Where("id = ? AND token_hash = ?", tokenM.ID, tokenHash).Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to consume refresh token")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrRefreshTokenNotFound
	}

	return toRefreshTokenDomain(tokenM), nil
}

func (repo *refreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	err := repo.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&model.RefreshTokenModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete refresh token")
	}

	return nil
}

func (repo *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete expired refresh tokens")
	}

	return result.RowsAffected, nil
}

func fromRefreshTokenDomain(token *entity.RefreshToken) *model.RefreshTokenModel {
	return &model.RefreshTokenModel{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
}

func toRefreshTokenDomain(tokenM *model.RefreshTokenModel) *entity.RefreshToken {
	return &entity.RefreshToken{
		ID:        tokenM.ID,
		UserID:    tokenM.UserID,
		TokenHash: tokenM.TokenHash,
		ExpiresAt: tokenM.ExpiresAt,
		CreatedAt: tokenM.CreatedAt,
	}
}
