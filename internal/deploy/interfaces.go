package deploy

// SystemInstaller abstracts the privileged host mutations performed
// during deployment and removal. The real implementation escalates
// each operation through sudo; tests substitute a mock. Operations
// that overwrite existing state must be idempotent: repeating an
// already-applied operation succeeds.
type SystemInstaller interface {
	// CreateDir creates path and any missing parents.
	CreateDir(path string) error

	// CopyFile copies src to dst, overwriting dst if present.
	CopyFile(src, dst string) error

	// SetExecutable grants execute permission on path.
	SetExecutable(path string) error

	// ReloadUnits reloads the service manager's unit definitions.
	ReloadUnits() error

	// StartService starts the named service.
	StartService(service string) error

	// EnableService enables the named service for boot-time activation.
	EnableService(service string) error

	// StopService stops the named service.
	StopService(service string) error

	// DisableService disables the named service from boot-time activation.
	DisableService(service string) error

	// RemovePath removes the file at path. Returns nil if absent.
	RemovePath(path string) error

	// RemoveTree removes path and everything beneath it.
	RemoveTree(path string) error
}

// PrivilegeChecker abstracts effective-identity inspection for testability.
type PrivilegeChecker interface {
	// IsRoot reports whether the process runs with the superuser identity.
	IsRoot() bool
}
