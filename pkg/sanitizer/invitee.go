package sanitizer

import (
	"fmt"
	"net/mail"
	"strings"
)

// NormalizeInvitee accepts "Name <email>", "<email>" or a bare email and
// returns "Name <email>" or "email" with the address lowercased. Anything
// that is not an address is returned whitespace-normalized as a plain name.
func NormalizeInvitee(input string) string {
	s := TrimAndNormalize(input)
	if s == "" {
		return ""
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return s
	}

	email := strings.ToLower(addr.Address)
	name := TrimAndNormalize(addr.Name)
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

func NormalizeInvitees(invitees []string) []string {
	return NormalizeStringSlice(invitees, NormalizeInvitee)
}

// SplitInviteText splits the free-text invite field on commas, semicolons
// and newlines into normalized invitees.
func SplitInviteText(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	return NormalizeInvitees(parts)
}
