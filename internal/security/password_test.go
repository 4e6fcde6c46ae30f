package security

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correctpw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := VerifyPassword("correctpw", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password did not verify")
	}
}

func TestVerifyPasswordMismatch(t *testing.T) {
	hash, err := HashPassword("correctpw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := VerifyPassword("wrongpw", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	malformed := [][]byte{
		[]byte(""),
		[]byte("not-a-hash"),
		[]byte("$argon2id$v=19$t=3,m=65536,p=2$onlysalt"),
		[]byte("$bcrypt$v=19$t=3,m=65536,p=2$c2FsdA==$aGFzaA=="),
	}
	for _, h := range malformed {
		if _, err := VerifyPassword("pw", h); err == nil {
			t.Fatalf("expected error for hash %q", h)
		}
	}
}
