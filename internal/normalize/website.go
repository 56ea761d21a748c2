package normalize

import "strings"

// Website canonicalizes a website candidate: the scheme is stripped and a
// "www." prefix enforced, so values from different sources compare equal.
// The empty string never normalizes.
func Website(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return "", false
	}
	if !strings.HasPrefix(s, "www.") {
		s = "www." + s
	}
	return s, true
}

// MessengerLink canonicalizes a messaging-app deep link. Unlike Website it
// keeps the host verbatim: "www.wa.me" is not a real host.
func MessengerLink(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return "", false
	}
	return s, true
}
