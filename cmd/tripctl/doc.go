// Command tripctl runs and operates the tripkeeper server.
//
// tripkeeper stores users and the trips they create as documents. Users
// register with a username and password; every other endpoint requires
// HTTP Basic authentication or a session token obtained from
// POST /authn/login.
//
// # Quick Start
//
//	# Run database migrations
//	tripctl db migrate
//
//	# Create a user
//	tripctl user create doge
//
//	# Start the server
//	tripctl server
//
//	# Or run without PostgreSQL
//	tripctl server --store memory
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - TRIPKEEPER_TOKEN_KEY: HMAC key for session tokens (tokens are disabled without it)
//   - TRIPKEEPER_CONFIG_PATH: Directory holding tripkeeper.yml
//   - TRIPKEEPER_LOG_LEVEL: Set to "debug" for SQL query logging
//   - AUDIT_DATABASE_URL: Optional database for the audit_events table
//   - PORT: Server port (default: 8000)
package main
