package heartbeat

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakePin struct {
	mu    sync.Mutex
	trace []bool
}

func (p *fakePin) Set(on bool) {
	p.mu.Lock()
	p.trace = append(p.trace, on)
	p.mu.Unlock()
}

func (p *fakePin) snapshot() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.trace...)
}

func waitLen(t *testing.T, p *fakePin, n int) []bool {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if tr := p.snapshot(); len(tr) >= n {
			return tr
		}
		select {
		case <-deadline:
			t.Fatalf("timeout: pin trace %v", p.snapshot())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestPatternRepeats(t *testing.T) {
	pin := &fakePin{}
	pat := Pattern{{true, 2 * time.Millisecond}, {false, 2 * time.Millisecond}, {false, 2 * time.Millisecond}}
	s := New(pin, pat)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = s.Start(ctx)

	tr := waitLen(t, pin, 7)
	want := []bool{true, false, false, true, false, false, true}
	for i, w := range want {
		if tr[i] != w {
			t.Fatalf("trace %v, want prefix %v", tr, want)
		}
	}
}

func TestSetPatternRestarts(t *testing.T) {
	pin := &fakePin{}
	s := New(pin, Pattern{{false, time.Hour}})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = s.Start(ctx)
	waitLen(t, pin, 1)

	s.SetPattern(Pattern{{true, time.Hour}})
	tr := waitLen(t, pin, 2)
	if !tr[1] {
		t.Fatalf("new pattern not applied: %v", tr)
	}
}

func TestStopTurnsPinOff(t *testing.T) {
	pin := &fakePin{}
	s := New(pin, Pattern{{true, time.Hour}})
	ctx, cancel := context.WithCancel(context.Background())
	_ = s.Start(ctx)
	waitLen(t, pin, 1)
	cancel()
	tr := waitLen(t, pin, 2)
	if tr[1] {
		t.Fatalf("pin left on after stop: %v", tr)
	}
}

func TestBuiltinPatterns(t *testing.T) {
	for name, p := range map[string]Pattern{"normal": Normal, "degraded": Degraded, "fatal": Fatal} {
		if len(p) == 0 {
			t.Fatalf("%s is empty", name)
		}
		for _, st := range p {
			if st.D <= 0 {
				t.Fatalf("%s has a non-positive step", name)
			}
		}
	}
}
