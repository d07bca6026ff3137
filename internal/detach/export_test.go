package detach

// Export internal symbols for testing.
// This file is only compiled during tests (suffix _test.go).

// ProcessStarter exports processStarter for testing.
type ProcessStarter = processStarter

// DefaultShell exports defaultShell for testing.
const DefaultShell = defaultShell
