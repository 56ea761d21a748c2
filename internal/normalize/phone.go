package normalize

import "strings"

// Phone canonicalizes a raw phone candidate for the given country profile.
// It strips all non-digits, removes an international (00- or bare dial code)
// or trunk prefix, and renders the subscriber number in the profile's
// grouping, e.g. "+41 44 123 45 67". The second return is false when the
// candidate does not carry enough digits, a normalization rejection.
func Phone(raw string, p CountryProfile) (string, bool) {
	digits := digitsOnly(raw)

	switch {
	case strings.HasPrefix(digits, "00"+p.DialCode):
		digits = digits[2+len(p.DialCode):]
	case strings.HasPrefix(digits, p.DialCode):
		digits = digits[len(p.DialCode):]
	case p.TrunkPrefix != "" && strings.HasPrefix(digits, p.TrunkPrefix):
		digits = digits[len(p.TrunkPrefix):]
	}

	if len(digits) < p.SubscriberLen {
		return "", false
	}
	digits = digits[:p.SubscriberLen]

	var b strings.Builder
	b.Grow(2 + len(p.DialCode) + p.SubscriberLen + len(p.Groups))
	b.WriteByte('+')
	b.WriteString(p.DialCode)
	i := 0
	for _, g := range p.Groups {
		b.WriteByte(' ')
		b.WriteString(digits[i : i+g])
		i += g
	}
	return b.String(), true
}

// Denormalize strips all formatting from a canonical phone string, leaving
// only digits. normalize(denormalize(p)) == p holds for canonical p.
func Denormalize(phone string) string {
	return digitsOnly(phone)
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
