package security

import "testing"

func TestSignAndVerifySessionID(t *testing.T) {
	signed := SignSessionID("signing-key", "sid-1")

	sid, ok := VerifySessionID("signing-key", signed)
	if !ok {
		t.Fatal("valid signature rejected")
	}
	if sid != "sid-1" {
		t.Fatalf("wrong sid %q", sid)
	}
}

func TestVerifySessionIDRejectsTampering(t *testing.T) {
	signed := SignSessionID("signing-key", "sid-1")

	cases := map[string]string{
		"forged sid":   "sid-2." + signed[len("sid-1."):],
		"wrong key":    SignSessionID("other-key", "sid-1"),
		"no separator": "sid-1",
		"empty":        "",
		"bare mac":     "." + signed[len("sid-1."):],
	}
	for name, value := range cases {
		if _, ok := VerifySessionID("signing-key", value); ok {
			t.Fatalf("%s accepted", name)
		}
	}
}
