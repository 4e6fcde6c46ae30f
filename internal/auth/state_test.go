package auth

import "testing"

func TestStateTokenRoundTrip(t *testing.T) {
	state, err := NewStateToken("signing-key")
	if err != nil {
		t.Fatalf("mint state: %v", err)
	}

	if err := VerifyStateToken("signing-key", state); err != nil {
		t.Fatalf("verify state: %v", err)
	}
}

func TestStateTokenRejectsTampering(t *testing.T) {
	state, err := NewStateToken("signing-key")
	if err != nil {
		t.Fatalf("mint state: %v", err)
	}

	if err := VerifyStateToken("other-key", state); err == nil {
		t.Fatal("state accepted under a different key")
	}
	if err := VerifyStateToken("signing-key", state+"x"); err == nil {
		t.Fatal("tampered state accepted")
	}
	if err := VerifyStateToken("signing-key", "not-a-token"); err == nil {
		t.Fatal("garbage state accepted")
	}
}
