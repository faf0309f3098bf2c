package store

import (
	"testing"

	"crm_backend/pkg/apperr"
)

func TestRegisterUserNormalizesEmail(t *testing.T) {
	db := newTestDB(t)

	user, err := RegisterUser(db, "  Agent@Example.COM ", "password123", "Jo", "Doe")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "agent@example.com" {
		t.Errorf("email = %q, want lowercased and trimmed", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "password123" {
		t.Error("password should be stored as a hash")
	}
}

func TestRegisterUserValidation(t *testing.T) {
	db := newTestDB(t)

	if _, err := RegisterUser(db, "not-an-email", "password123", "", ""); !apperr.Is(err, apperr.Validation) {
		t.Errorf("bad email: got %v, want validation error", err)
	}
	if _, err := RegisterUser(db, "a@example.com", "short", "", ""); !apperr.Is(err, apperr.Validation) {
		t.Errorf("short password: got %v, want validation error", err)
	}
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	if _, err := RegisterUser(db, "agent@example.com", "password123", "Jo", "Doe"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	// Case differences collapse to the same account.
	if _, err := RegisterUser(db, "AGENT@example.com", "password123", "Jo", "Doe"); !apperr.Is(err, apperr.Validation) {
		t.Errorf("duplicate register: got %v, want validation error", err)
	}
}

func TestAuthenticateUser(t *testing.T) {
	db := newTestDB(t)

	if _, err := RegisterUser(db, "agent@example.com", "password123", "Jo", "Doe"); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := AuthenticateUser(db, "Agent@Example.com", "password123")
	if err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}
	if user.Email != "agent@example.com" {
		t.Errorf("email = %q", user.Email)
	}

	// Wrong password and unknown email return the same generic error.
	_, wrongPass := AuthenticateUser(db, "agent@example.com", "nope")
	_, unknown := AuthenticateUser(db, "ghost@example.com", "password123")
	if !apperr.Is(wrongPass, apperr.Authentication) || !apperr.Is(unknown, apperr.Authentication) {
		t.Errorf("errors = %v / %v, want authentication for both", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPass.Error(), unknown.Error())
	}
}
