package audio

import (
	"context"
	"fmt"

	"github.com/earhorn/earhorn/internal/tools"
)

// Player plays audio files through the macOS afplay CLI.
type Player struct {
	afplayPath string
	silencer   Silencer

	// Injectable dependency (defaults to OS implementation).
	starter captureStarter
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithPlayerSilencer sets a Silencer invoked right before playback starts.
func WithPlayerSilencer(s Silencer) PlayerOption {
	return func(p *Player) {
		p.silencer = s
	}
}

// WithPlayerStarter sets the process starter for Player.
func WithPlayerStarter(s captureStarter) PlayerOption {
	return func(p *Player) {
		p.starter = s
	}
}

// NewPlayer creates a Player backed by the afplay binary at afplayPath.
func NewPlayer(afplayPath string, opts ...PlayerOption) (*Player, error) {
	if afplayPath == "" {
		return nil, fmt.Errorf("afplay path cannot be empty: %w", tools.ErrToolNotFound)
	}

	p := &Player{
		afplayPath: afplayPath,
		starter:    osCaptureStarter{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Play silences other applications, then plays the file at path to
// completion. Canceling ctx kills playback and returns the context error.
func (p *Player) Play(ctx context.Context, path string) error {
	if p.silencer != nil {
		p.silencer.Pause(ctx)
	}

	proc, err := p.starter.Start(p.afplayPath, []string{path})
	if err != nil {
		return fmt.Errorf("%w: afplay: %v", ErrSpawnFailed, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- proc.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: afplay %s: %v", ErrPlaybackFailed, path, err)
		}
		return nil
	case <-ctx.Done():
		_ = proc.Kill()
		<-done
		return ctx.Err()
	}
}
