package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store aggregates the repositories and lets callers run a group of
// operations inside one database transaction. The Store passed to the
// WithinTransaction callback is bound to that transaction; any error
// returned by the callback rolls the whole transaction back.
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository
	Users() UserRepository
	Payments() PaymentRepository
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}

// GormStore implements Store over a *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Products() ProductRepository { return NewGormProductRepository(s.db) }
func (s *GormStore) Orders() OrderRepository     { return NewGormOrderRepository(s.db) }
func (s *GormStore) Users() UserRepository       { return NewGormUserRepository(s.db) }
func (s *GormStore) Payments() PaymentRepository { return NewGormPaymentRepository(s.db) }

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
