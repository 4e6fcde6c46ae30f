package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignSessionID binds a session id to the signing key so a tampered cookie is
// rejected before the store is consulted. The cookie value is "<sid>.<mac>".
func SignSessionID(secret string, sid string) string {
	return sid + "." + computeMAC(secret, sid)
}

// VerifySessionID validates a signed cookie value and returns the embedded
// session id. ok is false for malformed or tampered values.
func VerifySessionID(secret string, value string) (sid string, ok bool) {
	sid, mac, found := strings.Cut(value, ".")
	if !found || sid == "" {
		return "", false
	}
	if !hmac.Equal([]byte(mac), []byte(computeMAC(secret, sid))) {
		return "", false
	}
	return sid, true
}

func computeMAC(secret string, sid string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sid))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
