package crypto

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("portal-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "portal-secret" {
		t.Fatalf("hash must not be the plain password")
	}
	if err := CheckPassword(hash, "portal-secret"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
}

func TestPasswordMismatches(t *testing.T) {
	hash, err := HashPassword("portal-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "portal-secrets"); err == nil {
		t.Fatalf("expected near-miss password to fail")
	}
	if err := CheckPassword(hash, ""); err == nil {
		t.Fatalf("expected empty password to fail")
	}

	other, err := HashPassword("another-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(other, "portal-secret"); err == nil {
		t.Fatalf("expected hash of a different password to fail")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	first, err := HashPassword("portal-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	second, err := HashPassword("portal-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of one password must differ")
	}
	if err := CheckPassword(second, "portal-secret"); err != nil {
		t.Fatalf("expected second hash to verify: %v", err)
	}
}
