// internal/config/database.go
package config

import (
	"fmt"
	"strings"
)

func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// IsEphemeral reports whether the database lives only as long as the process.
func (d *DatabaseConfig) IsEphemeral() bool {
	if d.Driver != "sqlite" {
		return false
	}
	return d.SQLitePath == ":memory:" ||
		strings.Contains(d.SQLitePath, "mode=memory") ||
		strings.HasPrefix(d.SQLitePath, "file::memory:")
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}
