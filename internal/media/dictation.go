package media

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

const deviceMicrophone = "microphone"

// Transcriber streams recognized speech fragments. Listen fails fast with
// ErrUnsupported when the host has no recognizer. The channel is closed
// when ctx is done or recognition ends.
type Transcriber interface {
	Listen(ctx context.Context) (<-chan string, error)
}

// InputBuffer is the composer text that dictation appends to.
type InputBuffer struct {
	mu   sync.Mutex
	text string
}

// Append adds a fragment, separated from existing text by one space.
func (b *InputBuffer) Append(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.text == "" {
		b.text = fragment
		return
	}
	b.text += " " + fragment
}

func (b *InputBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Take returns the buffered text and clears it.
func (b *InputBuffer) Take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.text
	b.text = ""
	return s
}

// Dictation feeds a Transcriber into an InputBuffer. At most one
// recognition runs at a time.
type Dictation struct {
	buf *InputBuffer

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewDictation(buf *InputBuffer) *Dictation {
	if buf == nil {
		buf = &InputBuffer{}
	}
	return &Dictation{buf: buf}
}

func (d *Dictation) Buffer() *InputBuffer { return d.buf }

// Active reports whether a recognition is running.
func (d *Dictation) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done != nil
}

// Start begins recognition. Starting while active is a no-op. Recognizer
// failures are returned as *DeviceError.
func (d *Dictation) Start(ctx context.Context, t Transcriber) error {
	if t == nil {
		return deviceErr(deviceMicrophone, "listen", ErrUnsupported)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	fragments, err := t.Listen(ctx)
	if err != nil {
		cancel()
		return deviceErr(deviceMicrophone, "listen", err)
	}

	done := make(chan struct{})
	d.cancel, d.done = cancel, done
	go d.pump(ctx, fragments, cancel, done)
	return nil
}

func (d *Dictation) pump(ctx context.Context, fragments <-chan string, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()
loop:
	for {
		select {
		case f, ok := <-fragments:
			if !ok {
				break loop
			}
			d.buf.Append(f)
		case <-ctx.Done():
			break loop
		}
	}
	d.mu.Lock()
	if d.done == done {
		d.cancel, d.done = nil, nil
	}
	d.mu.Unlock()
}

// Wait blocks until the running recognition ends on its own or ctx is
// done. It returns immediately when nothing is running.
func (d *Dictation) Wait(ctx context.Context) {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Stop ends recognition and waits until no more fragments are appended. It
// is safe to call without an active recognition and more than once.
func (d *Dictation) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
}

// ReaderTranscriber treats each non-empty line of R as a recognized
// fragment. Useful for piping pre-transcribed speech into the CLI.
type ReaderTranscriber struct {
	R io.Reader
}

func (t ReaderTranscriber) Listen(ctx context.Context) (<-chan string, error) {
	if t.R == nil {
		return nil, ErrUnsupported
	}
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(t.R)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
