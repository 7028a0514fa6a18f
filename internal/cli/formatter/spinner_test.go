package formatter

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DrawsThenClears(t *testing.T) {
	var out lockedBuffer
	style := spinner.Spinner{Frames: []string{"a", "b"}, FPS: time.Millisecond}

	stop := startSpinner(&out, "Reading the conversation...", style)
	time.Sleep(10 * time.Millisecond)
	stop()
	stop()

	got := stripANSI(out.String())
	assert.Contains(t, got, "Reading the conversation...")
	assert.Contains(t, got, "a ")
	assert.Contains(t, out.String(), clearLine)
}
