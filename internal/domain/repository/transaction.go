package repository

import "context"

// TransactionManager runs use case work inside one database transaction.
type TransactionManager interface {
	// Execute commits when fn returns nil and rolls back otherwise.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory hands out repositories bound to the current transaction.
type RepositoryFactory interface {
	UserRepo() UserRepository
	RefreshTokenRepo() RefreshTokenRepository
}
