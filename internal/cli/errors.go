package cli

import "errors"

// CLI-specific sentinel errors.
// These cover validation and usage failures that don't belong to a domain
// package. Wrap them with %w so callers can classify via errors.Is.

var (
	// ErrAPIKeyMissing indicates the OPENAI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrInvalidDuration indicates a duration or timestamp string could not be parsed.
	ErrInvalidDuration = errors.New("invalid duration format")

	// ErrUnsupportedFormat indicates an audio file has an unsupported extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileNotFound indicates the input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")
)
