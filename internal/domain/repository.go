package domain

import "context"

// PropertyRepository defines persistence for durable property listings.
// The transient generation pipeline never depends on it.
type PropertyRepository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, offset, limit int) ([]Property, error)
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id string) error
}

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
