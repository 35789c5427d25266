package repository

import (
	"context"

	"taskManagement/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TaskRepositoryI defines operations on Task entities.
// Mutating operations are scoped to the owning user; a task belonging to a
// different user is indistinguishable from a missing one.
type TaskRepositoryI interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Task, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Task, error)
	Update(ctx context.Context, id, userID int64, patch TaskPatch) (bool, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}
