package sqlite

// Config holds SQLite connection settings
type Config struct {
	// DSN is the go-sqlite3 data source name, e.g. "tourney.db?_journal_mode=WAL"
	DSN string
}

// DefaultConfig returns sensible defaults for SQLite configuration
func DefaultConfig() Config {
	return Config{
		DSN: "tourney.db?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate",
	}
}

// MemoryConfig returns a configuration for a private in-memory database
func MemoryConfig() Config {
	return Config{
		DSN: "file::memory:",
	}
}
