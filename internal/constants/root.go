package constants

const (
	AppName            = "habitlit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitlit"
	DefaultDBPath      = "~/.config/habitlit/habitlit.db"
	DefaultConfigFile  = "~/.config/habitlit/config.toml"
	Version            = "v0.1.0"

	// DateFormat is the ISO-8601 calendar date format used at every boundary (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitlit-"
	BackupFileSuffix = ".db"

	// MemoryDSN selects the in-process store instead of a database file
	MemoryDSN = ":memory:"

	// DBConnectionEnv holds a PostgreSQL connection string that may carry a password
	DBConnectionEnv = "HABITLIT_DB_CONNECTION"
)
