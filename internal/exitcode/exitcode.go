package exitcode

// A run where some properties failed still exits with Success; failures are
// reported in the log and the run summary.
const (
	Success        = 0
	UsageError     = 1
	AuthError      = 2
	DBConnError    = 3
	MigrationError = 4
)
