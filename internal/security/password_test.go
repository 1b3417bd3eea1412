package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if hash == "hunter2" {
		t.Fatal("hash equals the plaintext")
	}

	if err := CheckPassword(hash, "hunter2"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestIsHash(t *testing.T) {
	hash, err := HashPassword("hunter2")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !IsHash(hash) {
		t.Fatal("bcrypt output not recognized as a hash")
	}

	for _, plain := range []string{"", "admin", "hunter2", "pbkdf2:sha256:junk"} {
		if IsHash(plain) {
			t.Fatalf("%q wrongly recognized as a hash", plain)
		}
	}
}
