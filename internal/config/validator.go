package config

import "strings"

// Warnings returns non-fatal findings about a loaded configuration, such as
// insecure or likely unintended settings.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.FeedAPIKey == "" {
		warnings = append(warnings, "FEED_API_KEY is empty - the feed may reject the connection")
	}

	if c.HTTPEnabled() && c.APIKey == "" {
		warnings = append(warnings, "API_KEY is empty - control routes on the HTTP surface are unauthenticated")
	}

	if c.APIKey == "generate_with_openssl_rand_hex_32" {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}

	if c.DatabaseURL != "" && strings.Contains(c.DatabaseURL, "change_this_secure_password") {
		warnings = append(warnings, "DATABASE_URL appears to be using the example password")
	}

	return warnings
}
