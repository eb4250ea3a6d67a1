package preview

import (
	"strings"

	"recruit-automation/internal/common/errors"
)

var reservedTLDs = []string{".test", ".example", ".invalid", ".localhost"}

// Guard refuses test runs whose recipient is blank or sample data.
type Guard struct {
	domains []string
}

// NewGuard matches each domain and its subdomains, case-insensitively.
func NewGuard(placeholderDomains []string) Guard {
	g := Guard{}
	for _, d := range placeholderDomains {
		d = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(d, "@")))
		if d != "" {
			g.domains = append(g.domains, d)
		}
	}
	return g
}

// Check returns a GUARD_REFUSAL error when recipient must not be used.
// Only addresses containing @ are checked against domains.
func (g Guard) Check(recipient string) error {
	r := strings.TrimSpace(recipient)
	if r == "" {
		return errors.NewGuardRefusalError(recipient, "no recipient resolved from the selected sample data")
	}

	at := strings.LastIndex(r, "@")
	if at < 0 {
		return nil
	}
	domain := strings.ToLower(strings.TrimSuffix(r[at+1:], "."))
	if domain == "" {
		return errors.NewGuardRefusalError(recipient, "recipient address has no domain")
	}

	for _, d := range g.domains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return errors.NewGuardRefusalError(recipient, "recipient uses placeholder domain "+d)
		}
	}
	for _, tld := range reservedTLDs {
		if strings.HasSuffix(domain, tld) {
			return errors.NewGuardRefusalError(recipient, "recipient uses reserved top-level domain "+tld)
		}
	}
	return nil
}
