package repository

import (
	"clearpath-signals/entities"
	"context"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *entities.User) error
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

func (r *repo) CreateUser(ctx context.Context, user *entities.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *repo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user := &entities.User{}
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(user).Error
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *repo) FindUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user := &entities.User{}
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(user).Error
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}
