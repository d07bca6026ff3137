package audio

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/earhorn/earhorn/internal/tools"
)

// Compile-time interface implementation check.
var _ DeviceLister = (*FFmpegDeviceLister)(nil)

// Device is an audio input device as reported by avfoundation.
// ID is the ":index" form accepted as a capture source; pass Name via the
// AUDIODEV environment variable to make sox record from it.
type Device struct {
	ID   string
	Name string
}

// DeviceLister lists available audio input devices.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]Device, error)
}

// FFmpegDeviceLister discovers input devices by asking ffmpeg's
// avfoundation backend to enumerate them.
type FFmpegDeviceLister struct {
	ffmpegPath string

	// Injectable dependency (defaults to OS implementation).
	cmd commandRunner
}

// FFmpegDeviceListerOption configures an FFmpegDeviceLister.
type FFmpegDeviceListerOption func(*FFmpegDeviceLister)

// WithDeviceListerCommandRunner sets the command runner for FFmpegDeviceLister.
func WithDeviceListerCommandRunner(r commandRunner) FFmpegDeviceListerOption {
	return func(l *FFmpegDeviceLister) {
		l.cmd = r
	}
}

// NewFFmpegDeviceLister creates a device lister backed by the ffmpeg binary
// at ffmpegPath.
func NewFFmpegDeviceLister(ffmpegPath string, opts ...FFmpegDeviceListerOption) (*FFmpegDeviceLister, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpeg path cannot be empty: %w", tools.ErrToolNotFound)
	}

	l := &FFmpegDeviceLister{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// ListDevices returns the audio input devices avfoundation knows about,
// real microphones first and virtual capture devices last.
func (l *FFmpegDeviceLister) ListDevices(ctx context.Context) ([]Device, error) {
	args := []string{"-f", "avfoundation", "-list_devices", "true", "-i", ""}

	output, err := l.cmd.CombinedOutput(ctx, l.ffmpegPath, args)
	// ffmpeg -list_devices always exits non-zero (there is no input to
	// process), but stderr carries the listing. Only treat as failure when
	// nothing came back at all.
	if err != nil && len(output) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoAudioDevice, err)
	}

	devices := parseAVFoundationDevices(string(output))
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: check that a microphone is connected and enabled", ErrNoAudioDevice)
	}

	return devices, nil
}

// virtualAudioDevices lists known virtual audio devices to deprioritize.
// These serve screen sharing and loopback setups, not microphone input.
var virtualAudioDevices = []string{
	"AirBeamTV",
	"ZoomAudioDevice",
	"Microsoft Teams Audio",
	"BlackHole",
	"Soundflower",
	"Loopback Audio",
}

// isVirtualAudioDevice checks if a device name matches a known virtual audio device.
func isVirtualAudioDevice(name string) bool {
	nameLower := strings.ToLower(name)
	for _, virtual := range virtualAudioDevices {
		if strings.Contains(nameLower, strings.ToLower(virtual)) {
			return true
		}
	}
	return false
}

// isMicrophoneDevice checks if a device name looks like a real microphone.
func isMicrophoneDevice(name string) bool {
	nameLower := strings.ToLower(name)
	return strings.Contains(nameLower, "micro") ||
		strings.Contains(nameLower, "input") ||
		strings.Contains(nameLower, "headset") ||
		strings.Contains(nameLower, "usb audio")
}

// parseAVFoundationDevices parses the avfoundation device listing.
// Returns devices sorted with real microphones first, virtual devices last.
// Example output:
//
//	[AVFoundation indev @ 0x...] AVFoundation video devices:
//	[AVFoundation indev @ 0x...] [0] FaceTime HD Camera
//	[AVFoundation indev @ 0x...] AVFoundation audio devices:
//	[AVFoundation indev @ 0x...] [0] ZoomAudioDevice
//	[AVFoundation indev @ 0x...] [1] MacBook Pro Microphone
func parseAVFoundationDevices(stderr string) []Device {
	var allDevices []Device
	inAudioSection := false

	// Pattern: [0] Device Name
	devicePattern := regexp.MustCompile(`\[(\d+)\]\s+(.+)$`)

	for line := range strings.SplitSeq(stderr, "\n") {
		if strings.Contains(line, "AVFoundation audio devices:") {
			inAudioSection = true
			continue
		}
		if strings.Contains(line, "AVFoundation video devices:") {
			inAudioSection = false
			continue
		}
		if inAudioSection {
			if matches := devicePattern.FindStringSubmatch(line); matches != nil {
				allDevices = append(allDevices, Device{
					ID:   ":" + matches[1],
					Name: matches[2],
				})
			}
		}
	}

	// Sort devices: real microphones first, then unknown, then virtual devices.
	var microphones, unknown, virtual []Device
	for _, d := range allDevices {
		switch {
		case isVirtualAudioDevice(d.Name):
			virtual = append(virtual, d)
		case isMicrophoneDevice(d.Name):
			microphones = append(microphones, d)
		default:
			unknown = append(unknown, d)
		}
	}

	var result []Device
	result = append(result, microphones...)
	result = append(result, unknown...)
	result = append(result, virtual...)
	return result
}
