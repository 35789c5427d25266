package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw1" {
		t.Fatalf("password stored verbatim")
	}
	if !CheckPassword(hash, "pw1") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "pw2") {
		t.Fatalf("wrong password accepted")
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected salted hashes to differ")
	}
}
