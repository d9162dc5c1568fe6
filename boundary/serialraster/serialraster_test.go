package serialraster

import (
	"io"
	"testing"
	"time"
)

// pipePort adapts the read end of an io.Pipe to serial.Port for tests; the
// adapter only ever calls Read on it.
type pipePort struct {
	r *io.PipeReader
}

func (p *pipePort) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipePort) Write(b []byte) (int, error) { return 0, io.ErrClosedPipe }
func (p *pipePort) Close() error                { return p.r.Close() }
func (p *pipePort) Flush() error                { return nil }

func newPipeAdapter() (*Adapter, io.WriteCloser) {
	r, w := io.Pipe()
	a := NewAdapter(&pipePort{r})
	return a, w
}

func TestAdapterReadByteDeliversBufferedBytes(t *testing.T) {
	a, w := newPipeAdapter()
	defer w.Close()

	go w.Write([]byte{10, 20, 30})

	var got []byte
	deadline := time.Now().Add(time.Second)
	for len(got) < 3 && time.Now().Before(deadline) {
		if b, ok := a.ReadByte(); ok {
			got = append(got, b)
		} else {
			time.Sleep(time.Millisecond)
		}
	}

	if len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Fatalf("expected [10 20 30], got %v", got)
	}
}

func TestAdapterStopDropsIncomingData(t *testing.T) {
	a, w := newPipeAdapter()
	defer w.Close()

	a.Stop()
	go w.Write([]byte{1, 2, 3})
	time.Sleep(20 * time.Millisecond)

	if _, ok := a.ReadByte(); ok {
		t.Error("expected no bytes buffered after Stop")
	}
}

func TestAdapterConsumeRemainingDrainsBuffer(t *testing.T) {
	a, w := newPipeAdapter()
	defer w.Close()

	go w.Write([]byte{1, 2, 3, 4, 5})
	time.Sleep(20 * time.Millisecond)

	a.ConsumeRemaining()

	if _, ok := a.ReadByte(); ok {
		t.Error("expected ConsumeRemaining to drain all buffered bytes")
	}
}

func TestAdapterResumeReacceptsData(t *testing.T) {
	a, w := newPipeAdapter()
	defer w.Close()

	a.Stop()
	go w.Write([]byte{1})
	time.Sleep(20 * time.Millisecond)
	a.Resume()
	go w.Write([]byte{2})
	time.Sleep(20 * time.Millisecond)

	if b, ok := a.ReadByte(); !ok || b != 2 {
		t.Errorf("expected byte 2 accepted after Resume, got %v ok=%v", b, ok)
	}
}
