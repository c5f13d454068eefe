package config

const (
	// Config errors
	ErrReadConfigFmt         = "failed to read config file: %w"
	ErrInvalidValueFmt       = "invalid value for %s: %v"
	ErrWriteConfigContentFmt = "Failed to write config content: %v"

	// Local state errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrOpenStoreFmt          = "Failed to open credential store: %v"

	// Session errors
	ErrVerifySessionFmt = "failed to verify session: %w"
	ErrLoginFmt         = "login failed: %w"
)
