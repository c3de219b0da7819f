package identity

import "context"

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByAddress(ctx context.Context, address string) (*User, error)
	ListByRole(ctx context.Context, role Role, limit, offset int) ([]*User, int, error)
}
