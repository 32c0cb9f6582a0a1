package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"ledtree-go/errcode"
	"ledtree-go/types"
)

type fakeEngine struct {
	brt     [][2]uint32
	full    bool
	sets    map[int]uint8
	kicked  []int
	kickErr error
}

func (f *fakeEngine) SetBrightness(v, full uint32) bool {
	if f.full {
		return false
	}
	f.brt = append(f.brt, [2]uint32{v, full})
	return true
}

func (f *fakeEngine) SetValue(ch int, v uint8) error {
	if ch >= 5 {
		return errcode.InvalidChannel
	}
	if f.sets == nil {
		f.sets = map[int]uint8{}
	}
	f.sets[ch] = v
	return nil
}

func (f *fakeEngine) Kick(ch int) error {
	f.kicked = append(f.kicked, ch)
	return f.kickErr
}

func (f *fakeEngine) Stats() types.EngineStats {
	return types.EngineStats{Ticks: 1234, Requests: 9, Drops: 1, Installs: []uint32{2, 3}, Brightness: 0.5}
}

func (f *fakeEngine) Snapshot(dst []types.ChannelState) []types.ChannelState {
	return append(dst,
		types.ChannelState{ID: 0, Stage: types.StageRising, Level: 120, Duty: 900, Remaining: 1500},
		types.ChannelState{ID: 1, Stage: types.StageWaiting, Level: 7, Duty: 3, Stalled: true},
	)
}

func run(s *Shell, line string) string {
	var out bytes.Buffer
	s.Exec(&out, line)
	return out.String()
}

func TestCommands(t *testing.T) {
	eng := &fakeEngine{}
	s := New(eng, Info{App: "ledtree", Build: "2026-10-14"})
	cases := []struct{ in, want string }{
		{"Ping", "ok\r\n"},
		{"PING", "ok\r\n"},
		{"Version", "ledtree 2026-10-14\r\n"},
		{"brt 50", "ok\r\n"},
		{"brt 32768 65535", "ok\r\n"},
		{"brt 5 0", "err invalid_params\r\n"},
		{"brt", "err invalid_params\r\n"},
		{"set 2 200", "ok\r\n"},
		{"set 9 1", "err invalid_channel\r\n"},
		{"set 2 300", "err invalid_params\r\n"},
		{"set two 1", "err invalid_params\r\n"},
		{"kick 1", "ok\r\n"},
		{"blink", "err unknown_command\r\n"},
		{`set "1`, "err invalid_params\r\n"},
		{"stats", "ticks 1234 requests 9 drops 1 brt 50% installs 2,3\r\n"},
		{"state", "ch 0 rising lvl 120 duty 900 left 1500\r\nch 1 waiting lvl 7 duty 3 left 0 stalled\r\n"},
	}
	for _, tc := range cases {
		if got := run(s, tc.in); got != tc.want {
			t.Errorf("%q: got %q want %q", tc.in, got, tc.want)
		}
	}
	if len(eng.brt) != 2 || eng.brt[0] != [2]uint32{50, DefaultFull} || eng.brt[1] != [2]uint32{32768, 65535} {
		t.Fatalf("brightness calls = %v", eng.brt)
	}
	if eng.sets[2] != 200 {
		t.Fatalf("set calls = %v", eng.sets)
	}
}

func TestErrorsCarryEngineCode(t *testing.T) {
	eng := &fakeEngine{full: true, kickErr: errcode.NotStalled}
	s := New(eng, Info{})
	if got := run(s, "brt 10"); got != "err queue_full\r\n" {
		t.Fatalf("brt on full queue = %q", got)
	}
	if got := run(s, "kick 0"); got != "err not_stalled\r\n" {
		t.Fatalf("kick = %q", got)
	}
}

func TestMemReports(t *testing.T) {
	s := New(&fakeEngine{}, Info{})
	if got := run(s, "mem"); !strings.HasPrefix(got, "heap ") || !strings.Contains(got, " gc ") {
		t.Fatalf("mem = %q", got)
	}
}

type pipe struct {
	in  *strings.Reader
	out bytes.Buffer
}

func (p *pipe) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *pipe) Write(b []byte) (int, error) { return p.out.Write(b) }

func TestServeLines(t *testing.T) {
	p := &pipe{in: strings.NewReader("ping\r\n\r\nset 0 10\nnope\n")}
	s := New(&fakeEngine{}, Info{})
	if err := s.Serve(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	want := "ok\r\nok\r\nerr unknown_command\r\n"
	if got := p.out.String(); got != want {
		t.Fatalf("serve output %q want %q", got, want)
	}
}
