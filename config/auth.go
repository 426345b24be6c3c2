package config

import "strings"

// AuthConfig holds client-side registration rules.
type AuthConfig struct {
	// InstitutionDomain, when set, restricts registration and login e-mails to
	// addresses whose registrable domain matches (e.g. "utec.edu.pe").
	InstitutionDomain string `env:"AUTH_INSTITUTION_DOMAIN"`
}

// Sanitize normalizes the domain to lower case without a leading "@".
func (c *AuthConfig) Sanitize() {
	c.InstitutionDomain = strings.ToLower(strings.TrimPrefix(trimmed(c.InstitutionDomain), "@"))
}
