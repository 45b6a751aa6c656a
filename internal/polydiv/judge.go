package polydiv

import (
	"strings"

	"polyguard/internal/passcode"
)

// Tokens are the header lines of a judge answer.
type Tokens struct {
	Secure    string `yaml:"secure"`
	NotSecure string `yaml:"not_secure"`
}

// DefaultTokens returns the tokens used by the reference answers.
func DefaultTokens() Tokens {
	return Tokens{Secure: "secure", NotSecure: "not secure"}
}

// withDefaults fills empty tokens so a partially configured value still
// renders a well-formed answer.
func (t Tokens) withDefaults() Tokens {
	def := DefaultTokens()
	if t.Secure == "" {
		t.Secure = def.Secure
	}
	if t.NotSecure == "" {
		t.NotSecure = def.NotSecure
	}
	return t
}

// InsecureCodes returns the codes the decider rejects, in input order.
func InsecureCodes(d Decider, codes []passcode.Passcode) []passcode.Passcode {
	var bad []passcode.Passcode
	for _, c := range codes {
		if !d.Decide(c).IsSecure() {
			bad = append(bad, c)
		}
	}
	return bad
}

// Judge renders the expected answer for a batch: the secure token alone, or
// the not-secure token followed by every insecure code in original order.
// The result always ends with a newline.
func Judge(d Decider, codes []passcode.Passcode, tokens Tokens) string {
	tokens = tokens.withDefaults()
	bad := InsecureCodes(d, codes)
	if len(bad) == 0 {
		return tokens.Secure + "\n"
	}

	var b strings.Builder
	b.WriteString(tokens.NotSecure)
	b.WriteByte('\n')
	for _, c := range bad {
		b.WriteString(string(c))
		b.WriteByte('\n')
	}
	return b.String()
}
