package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
)

// DefaultPlayer is the player binary used when none is configured.
const DefaultPlayer = "mpg321"

// ExecPlayer plays audio by running a player binary (mpg321, mpg123) as a
// child process. Stop kills the child; completion is the process exiting.
type ExecPlayer struct {
	command string

	mu     sync.Mutex
	cancel context.CancelFunc // active playback, nil when idle
}

// NewExecPlayer creates a player that runs the given command.
func NewExecPlayer(command string) *ExecPlayer {
	if command == "" {
		command = DefaultPlayer
	}
	return &ExecPlayer{command: command}
}

// playerArgs builds the player invocation: quiet, gain, file.
// mpg321 and mpg123 both accept this shape.
func playerArgs(path string, volume float64) []string {
	return []string{"-q", "-g", strconv.Itoa(Gain(volume)), path}
}

// Play starts the player process. The done channel receives cmd.Wait's
// result: nil when the track played to the end, an error when the process
// failed or was killed by Stop.
func (p *ExecPlayer) Play(path string, volume float64) (<-chan error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return nil, errors.New("audio: playback already active")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, p.command, playerArgs(path, volume)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", p.command, err)
	}
	p.cancel = cancel

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
		cancel()
		done <- err
	}()

	return done, nil
}

// Stop kills the active player process, if any.
func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// Close stops playback.
func (p *ExecPlayer) Close() error {
	return p.Stop()
}
