package store

import "strings"

// orgPlaceholder is the token in TableTemplate replaced by the tenant slug.
const orgPlaceholder = "org_name"

// Config holds configuration for the Store.
type Config struct {
	// Table is the single-table name used when no per-tenant template is
	// configured.
	// Default: "marquee"
	Table string

	// TableTemplate names per-tenant tables; the literal token "org_name"
	// is replaced by the organisation slug. When empty, Table is used for
	// every tenant.
	TableTemplate string
}

// DefaultConfig returns sensible defaults for a single shared table.
func DefaultConfig() Config {
	return Config{
		Table: "marquee",
	}
}

// TableForOrganisation resolves the table name for a tenant.
func (c Config) TableForOrganisation(slug string) string {
	if c.TableTemplate == "" {
		return c.Table
	}
	return strings.ReplaceAll(c.TableTemplate, orgPlaceholder, slug)
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "marquee"
	}
}
