// Package config provides configuration management for tripkeeper.
//
// # Configuration Sources
//
// Values are layered, later sources winning:
//
//   - Built-in defaults
//   - $TRIPKEEPER_CONFIG_PATH/tripkeeper.yml (default /etc/tripkeeper)
//   - TRIPKEEPER_* environment variables
//
// The source of every attribute is tracked and shown by
// "tripctl configuration show".
//
// # Key Configuration Options
//
//   - TRIPKEEPER_STORE: postgres or memory
//   - TRIPKEEPER_TOKEN_TTL: session token lifetime in seconds
//   - TRIPKEEPER_FETCH_LIMIT_MAX: maximum documents per search
//   - TRIPKEEPER_AUDIT_ENABLED: audit log switch
//   - DATABASE_URL: database connection (read by package db)
package config
