package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// SimpleSpinner draws bubbles spinner frames on the current line until
// stopped. It does not need a bubbletea program.
type SimpleSpinner struct {
	message string
	spinner spinner.Spinner
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewConnectionSpinner is used while dialing the server.
func NewConnectionSpinner(message string) *SimpleSpinner {
	return &SimpleSpinner{message: message, spinner: spinner.Globe, done: make(chan struct{})}
}

// NewWaitingSpinner is used while waiting on other peers.
func NewWaitingSpinner(message string) *SimpleSpinner {
	return &SimpleSpinner{message: message, spinner: spinner.Points, done: make(chan struct{})}
}

func (s *SimpleSpinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.spinner.FPS)
		defer ticker.Stop()

		frames := s.spinner.Frames
		for i := 0; ; i++ {
			frame := SpinnerStyle.Render(frames[i%len(frames)])
			fmt.Printf("\r%s %s", frame, s.message)

			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the spinner and clears its line. It is safe to call twice.
func (s *SimpleSpinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		fmt.Print("\r\033[K")
	})
}

// RunConnectionSpinner starts a connection spinner and returns a stop function
func RunConnectionSpinner(message string) func() {
	sp := NewConnectionSpinner(message)
	sp.Start()
	return sp.Stop
}

// RunWaitingSpinner starts a waiting spinner and returns a stop function
func RunWaitingSpinner(message string) func() {
	sp := NewWaitingSpinner(message)
	sp.Start()
	return sp.Stop
}
