package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medledger/medledger/pkg/ethaddr"
)

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Register creates a user record. Validation happens entirely before the
// ledger is touched: a rejected registration leaves no trace. Registering
// an already-registered address fails with ErrDuplicateAddress and changes
// nothing.
func (s *Service) Register(ctx context.Context, u *User) (*Receipt, error) {
	addr, err := ethaddr.Normalize(u.Address)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	u.Address = addr

	if strings.TrimSpace(u.Name) == "" {
		return nil, ErrMissingName
	}
	if u.Role != RolePatient && u.Role != RoleDoctor {
		return nil, ErrInvalidRole
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return &Receipt{
		ID:          uuid.New(),
		Address:     u.Address,
		ConfirmedAt: u.CreatedAt,
	}, nil
}

// Get returns the user for an address.
func (s *Service) Get(ctx context.Context, address string) (*User, error) {
	addr, err := ethaddr.Normalize(address)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	return s.users.GetByAddress(ctx, addr)
}

// ListByRole returns all users holding the given role.
func (s *Service) ListByRole(ctx context.Context, role Role, limit, offset int) ([]*User, int, error) {
	if role != RolePatient && role != RoleDoctor {
		return nil, 0, ErrInvalidRole
	}
	return s.users.ListByRole(ctx, role, limit, offset)
}

// RoleOf reports the registered role of an address. Consumed by the
// permission service to verify both parties of a grant without importing
// this package's repositories.
func (s *Service) RoleOf(ctx context.Context, address string) (string, error) {
	u, err := s.Get(ctx, address)
	if err != nil {
		return "", err
	}
	return string(u.Role), nil
}
