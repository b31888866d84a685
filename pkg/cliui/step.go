package cliui

import (
	"fmt"
	"io"
	"time"
)

var spinnerFrames = []rune("⣾⣽⣻⢿⡿⣟⣯⣷")

const spinnerInterval = 80 * time.Millisecond

// Step runs fn while animating a spinner in front of msg on w, then
// overwrites the line with the result mark and the elapsed time. fn's error
// is returned unchanged.
func Step(w io.Writer, msg string, fn func() error) error {
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go spin(w, msg, stop, stopped)

	start := time.Now()
	err := fn()
	took := time.Since(start)

	close(stop)
	<-stopped

	fmt.Fprintf(w, "\r  %s %s %s\n", Mark(err), msg, elapsedStyle.Render("("+FormatDuration(took)+")"))
	return err
}

func spin(w io.Writer, msg string, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		frame := string(spinnerFrames[i%len(spinnerFrames)])
		fmt.Fprintf(w, "\r  %s %s", spinnerStyle.Render(frame), msg)

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// FormatDuration prints sub-second durations in milliseconds and longer
// ones in seconds with one decimal ("12ms", "3.2s").
func FormatDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
