package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/earhorn/earhorn/internal/audio"
	"github.com/earhorn/earhorn/internal/config"
	"github.com/earhorn/earhorn/internal/format"
	"github.com/earhorn/earhorn/internal/tag"
	"github.com/earhorn/earhorn/internal/tools"
)

type recordOptions struct {
	output   string
	duration time.Duration
	title    string
	monitor  bool
}

// RecordCmd creates the record command.
func RecordCmd(env *Env) *cobra.Command {
	var (
		output      string
		durationStr string
		title       string
		monitor     bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record the microphone to an MP3 file",
		Long: `Record microphone audio until interrupted or until -d elapses.

Media already playing (browser video tabs, the music player) is paused
first so the recording stays clean. sox picks the input device; set
AUDIODEV to record from something other than the system default.`,
		Example: `  earhorn record
  earhorn record -d 30m -o standup.mp3
  earhorn record --monitor --title "Weekly sync"
  AUDIODEV="MacBook Pro Microphone" earhorn record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var duration time.Duration
			if durationStr != "" {
				var err error
				duration, err = time.ParseDuration(durationStr)
				if err != nil {
					return fmt.Errorf("invalid duration %q: %w (use format like 2h, 30m, 1h30m)",
						durationStr, ErrInvalidDuration)
				}
				if duration <= 0 {
					return fmt.Errorf("duration must be positive, got %q: %w",
						durationStr, ErrInvalidDuration)
				}
			}
			opts := recordOptions{
				output:   output,
				duration: duration,
				title:    title,
				monitor:  monitor,
			}
			return runRecord(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: recording_<timestamp>.mp3)")
	cmd.Flags().StringVarP(&durationStr, "duration", "d", "", "Stop automatically after this long (e.g. 2h, 30m)")
	cmd.Flags().StringVar(&title, "title", "", "ID3 title written to the finished recording")
	cmd.Flags().BoolVar(&monitor, "monitor", false, "Show the interactive recording monitor")

	return cmd
}

func runRecord(ctx context.Context, env *Env, opts recordOptions) error {
	// === VALIDATION (fail-fast) ===

	// 1. Resolve the output path against the configured output directory
	cfg := loadConfig(env)
	outPath := config.ResolveOutputPath(opts.output, cfg.OutputDir, defaultRecordingName(env.Now()))

	// 2. Output must not already exist
	if err := checkOutputPath(outPath); err != nil {
		return err
	}

	// 3. Capture tool present
	resolver := env.Tools.NewResolver(cfg.Tools)
	recPath, err := resolver.Resolve(tools.Rec)
	if err != nil {
		return err
	}

	// === SETUP ===

	// Missing osascript or pgrep only costs the pause-other-media step.
	silencer := optionalSilencer(env, resolver, cfg.Silence)

	recOpts := []audio.RecorderOption{
		audio.WithSampleRate(cfg.Recording.SampleRate),
		audio.WithChannels(cfg.Recording.Channels),
		audio.WithRecorderWarnFunc(func(msg string, args ...any) {
			fmt.Fprintf(env.Stderr, "Warning: "+msg+"\n", args...)
		}),
	}
	if silencer != nil {
		recOpts = append(recOpts, audio.WithSilencer(silencer))
	}

	recorder, err := env.Recorders.NewRecorder(recPath, recOpts...)
	if err != nil {
		return err
	}

	// === CAPTURE ===

	recording, err := recorder.Start(ctx, outPath)
	if err != nil {
		return err
	}

	// Interrupts stop the capture; the encoder still gets to flush.
	go func() {
		select {
		case <-ctx.Done():
			if !opts.monitor {
				fmt.Fprintln(env.Stderr, "Interrupted, finalizing...")
			}
			recording.Stop()
		case <-recording.Done():
		}
	}()

	if opts.duration > 0 {
		timer := time.AfterFunc(opts.duration, recording.Stop)
		defer timer.Stop()
	}

	if opts.monitor {
		if err := env.Monitor.Run(recording); err != nil {
			recording.Stop()
			<-recording.Done()
			return err
		}
	} else {
		fmt.Fprintf(env.Stderr, "Recording to %s... (press Ctrl+C to stop)\n", outPath)
		if opts.duration > 0 {
			fmt.Fprintf(env.Stderr, "Stopping automatically after %s\n", opts.duration)
		}
		<-recording.Done()
	}

	// === FINALIZE ===

	// A nonzero exit after a stop signal is normal for sox; the warn hook
	// already reported it. The flushed file is what matters.
	size, err := fileSize(outPath)
	if err != nil {
		if recErr := recording.Err(); recErr != nil {
			return fmt.Errorf("recording produced no output: %w", recErr)
		}
		return fmt.Errorf("recording produced no output: %w", err)
	}

	fmt.Fprintf(env.Stderr, "Recording complete: %s (%s)\n", outPath, format.Size(size))

	if opts.title != "" {
		if err := env.Tags.Write(outPath, tag.Info{Title: opts.title}); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Tagged title: %s\n", opts.title)
	}

	return nil
}

// defaultRecordingName generates a timestamped output filename.
// Format: recording_20260125_143052.mp3
func defaultRecordingName(now time.Time) string {
	return fmt.Sprintf("recording_%s.mp3", now.Format("20060102_150405"))
}
