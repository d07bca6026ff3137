package audio

import "errors"

// ErrProbeFailed indicates the media inspection tool could not read or parse
// the file.
var ErrProbeFailed = errors.New("audio probe failed")

// ErrTranscodeFailed indicates segment extraction failed in the external
// transcoder.
var ErrTranscodeFailed = errors.New("audio transcode failed")

// ErrSpawnFailed indicates a capture or playback process could not be
// started.
var ErrSpawnFailed = errors.New("process spawn failed")

// ErrPlaybackFailed indicates the playback process exited abnormally.
var ErrPlaybackFailed = errors.New("audio playback failed")

// ErrInvalidOverlap indicates a chunk overlap at least as long as the chunk
// itself, which would stall iteration.
var ErrInvalidOverlap = errors.New("overlap must be smaller than chunk duration")

// ErrInvalidSegmentBounds indicates a segment whose start lies after its end
// or before zero.
var ErrInvalidSegmentBounds = errors.New("invalid segment bounds")

// ErrNoAudioDevice indicates no audio input device was found or detected.
var ErrNoAudioDevice = errors.New("no audio input device found")
