package repository

import (
	"clearpath-signals/entities"
	"context"
	"errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrClosed    = errors.New("record closed")
)

type Repository interface {
	SessionRepository
	AlertRepository
	TrafficLogRepository
	UserRepository
	GetDB() *gorm.DB
	Migrate(ctx context.Context) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repo{
		db: db,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(entities.Models()...)
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
