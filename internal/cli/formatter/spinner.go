package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// clearLine returns the cursor to column zero and erases the line.
const clearLine = "\r\033[K"

// StartSpinner animates message on w until the returned stop function is
// called. Stop blocks until the line is cleared and may be called more than
// once.
func StartSpinner(w io.Writer, message string) (stop func()) {
	return startSpinner(w, message, spinner.MiniDot)
}

func startSpinner(w io.Writer, message string, style spinner.Spinner) func() {
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(style.FPS)
		defer ticker.Stop()
		for frame := 0; ; frame++ {
			fmt.Fprintf(w, "\r  %s %s\033[K", StylePurple.Render(style.Frames[frame%len(style.Frames)]), Dim(message))
			select {
			case <-quit:
				fmt.Fprint(w, clearLine)
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(quit) })
		<-done
	}
}
