package identity

import (
	"context"
	"testing"
	"time"
)

// -- Mock User Repository --

type mockUserRepo struct {
	users map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.users[u.Address]; ok {
		return ErrDuplicateAddress
	}
	u.Registered = true
	u.CreatedAt = time.Now()
	m.users[u.Address] = u
	return nil
}

func (m *mockUserRepo) GetByAddress(_ context.Context, address string) (*User, error) {
	u, ok := m.users[address]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role Role, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockUserRepo())
}

const (
	patientAddr = "0x1111111111111111111111111111111111111111"
	doctorAddr  = "0x2222222222222222222222222222222222222222"
)

func TestRegisterThenGet(t *testing.T) {
	svc := newTestService()

	receipt, err := svc.Register(context.Background(), &User{
		Address:     patientAddr,
		Name:        "John Doe",
		ContactInfo: "john@example.com",
		Role:        RolePatient,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Address != patientAddr {
		t.Errorf("expected %s, got %s", patientAddr, receipt.Address)
	}

	u, err := svc.Get(context.Background(), patientAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "John Doe" || u.ContactInfo != "john@example.com" || u.Role != RolePatient {
		t.Errorf("fields not preserved: %+v", u)
	}
	if !u.Registered {
		t.Error("expected registered = true")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), &User{Address: patientAddr, Name: "John", Role: RolePatient})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Register(context.Background(), &User{Address: patientAddr, Name: "Imposter", Role: RoleDoctor})
	if err != ErrDuplicateAddress {
		t.Errorf("expected ErrDuplicateAddress, got %v", err)
	}

	u, _ := svc.Get(context.Background(), patientAddr)
	if u.Name != "John" || u.Role != RolePatient {
		t.Errorf("state changed by failed duplicate register: %+v", u)
	}
}

func TestRegister_DuplicateDifferentCase(t *testing.T) {
	svc := newTestService()

	upper := "0x1111111111111111111111111111111111111111"
	_, err := svc.Register(context.Background(), &User{Address: upper, Name: "John", Role: RolePatient})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mixed := "0x1111111111111111111111111111111111111111"
	_, err = svc.Register(context.Background(), &User{Address: mixed, Name: "John", Role: RolePatient})
	if err != ErrDuplicateAddress {
		t.Errorf("expected ErrDuplicateAddress for same address, got %v", err)
	}
}

func TestRegister_InvalidAddress(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), &User{Address: "bogus", Name: "John", Role: RolePatient})
	if err != ErrInvalidAddress {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), &User{Address: patientAddr, Name: "John", Role: "admin"})
	if err != ErrInvalidRole {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRegister_MissingName(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), &User{Address: patientAddr, Name: "  ", Role: RolePatient})
	if err != ErrMissingName {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.Get(context.Background(), doctorAddr)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListByRole(t *testing.T) {
	svc := newTestService()

	svc.Register(context.Background(), &User{Address: patientAddr, Name: "P", Role: RolePatient})
	svc.Register(context.Background(), &User{Address: doctorAddr, Name: "D", Role: RoleDoctor})

	doctors, total, err := svc.ListByRole(context.Background(), RoleDoctor, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(doctors) != 1 {
		t.Fatalf("expected 1 doctor, got %d", len(doctors))
	}
	if doctors[0].Address != doctorAddr {
		t.Errorf("expected %s, got %s", doctorAddr, doctors[0].Address)
	}
}

func TestListByRole_InvalidRole(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.ListByRole(context.Background(), "admin", 20, 0)
	if err != ErrInvalidRole {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRoleOf(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), &User{Address: doctorAddr, Name: "D", Role: RoleDoctor})

	role, err := svc.RoleOf(context.Background(), doctorAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != "doctor" {
		t.Errorf("expected doctor, got %s", role)
	}
}
