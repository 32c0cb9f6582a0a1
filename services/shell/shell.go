// Package shell is the operator's line-command interface.
//
// Commands are case-insensitive; arguments are split shell-style. Every
// command answers with one or more lines, failures as "err <code>".
package shell

import (
	"bufio"
	"context"
	"io"
	"runtime"
	"strings"

	"github.com/google/shlex"

	"ledtree-go/errcode"
	"ledtree-go/types"
	"ledtree-go/x/strconvx"
)

// Engine is the part of the breathing engine the shell drives.
type Engine interface {
	SetBrightness(value, full uint32) bool
	SetValue(ch int, value uint8) error
	Kick(ch int) error
	Stats() types.EngineStats
	Snapshot(dst []types.ChannelState) []types.ChannelState
}

// Info identifies the firmware for the Version command.
type Info struct {
	App   string
	Build string
}

// DefaultFull is the brightness range "brt" assumes without an explicit one.
const DefaultFull = 100

type Shell struct {
	eng  Engine
	info Info
	buf  []byte
	st   []types.ChannelState
}

func New(eng Engine, info Info) *Shell {
	return &Shell{eng: eng, info: info, buf: make([]byte, 0, 96)}
}

// Serve reads commands from rw line by line and writes the replies back
// until the reader ends or ctx is cancelled.
func (s *Shell) Serve(ctx context.Context, rw io.ReadWriter) error {
	sc := bufio.NewScanner(rw)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		s.Exec(rw, line)
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

// Exec runs one command line and writes its reply to w.
func (s *Shell) Exec(w io.Writer, line string) {
	args, err := shlex.Split(line)
	if err != nil {
		s.fail(w, errcode.InvalidParams)
		return
	}
	if len(args) == 0 {
		return
	}
	name, args := strings.ToLower(args[0]), args[1:]
	switch name {
	case "ping":
		s.ok(w)
	case "version":
		s.line(w, s.info.App+" "+s.info.Build)
	case "mem":
		s.mem(w)
	case "brt":
		s.brightness(w, args)
	case "set":
		s.set(w, args)
	case "kick":
		s.kick(w, args)
	case "stats":
		s.stats(w)
	case "state":
		s.state(w)
	default:
		s.fail(w, errcode.UnknownCommand)
	}
}

func (s *Shell) brightness(w io.Writer, args []string) {
	if len(args) < 1 || len(args) > 2 {
		s.fail(w, errcode.InvalidParams)
		return
	}
	v, ok := uarg(args[0])
	full := uint32(DefaultFull)
	if len(args) == 2 {
		var okFull bool
		full, okFull = uarg(args[1])
		ok = ok && okFull && full > 0
	}
	if !ok {
		s.fail(w, errcode.InvalidParams)
		return
	}
	if !s.eng.SetBrightness(v, full) {
		s.fail(w, errcode.QueueFull)
		return
	}
	s.ok(w)
}

func (s *Shell) set(w io.Writer, args []string) {
	if len(args) != 2 {
		s.fail(w, errcode.InvalidParams)
		return
	}
	ch, ok1 := uarg(args[0])
	v, ok2 := uarg(args[1])
	if !ok1 || !ok2 || v > 255 {
		s.fail(w, errcode.InvalidParams)
		return
	}
	s.result(w, s.eng.SetValue(int(ch), uint8(v)))
}

func (s *Shell) kick(w io.Writer, args []string) {
	if len(args) != 1 {
		s.fail(w, errcode.InvalidParams)
		return
	}
	ch, ok := uarg(args[0])
	if !ok {
		s.fail(w, errcode.InvalidParams)
		return
	}
	s.result(w, s.eng.Kick(int(ch)))
}

func (s *Shell) stats(w io.Writer) {
	st := s.eng.Stats()
	b := append(s.buf[:0], "ticks "...)
	b = strconvx.AppendInt(b, int64(st.Ticks), 10)
	b = append(b, " requests "...)
	b = strconvx.AppendInt(b, int64(st.Requests), 10)
	b = append(b, " drops "...)
	b = strconvx.AppendInt(b, int64(st.Drops), 10)
	b = append(b, " brt "...)
	b = strconvx.AppendInt(b, int64(st.Brightness*100+0.5), 10)
	b = append(b, "% installs"...)
	for i, n := range st.Installs {
		if i == 0 {
			b = append(b, ' ')
		} else {
			b = append(b, ',')
		}
		b = strconvx.AppendInt(b, int64(n), 10)
	}
	s.buf = b
	s.bytes(w, b)
}

func (s *Shell) state(w io.Writer) {
	s.st = s.eng.Snapshot(s.st[:0])
	for _, c := range s.st {
		b := append(s.buf[:0], "ch "...)
		b = strconvx.AppendInt(b, int64(c.ID), 10)
		b = append(b, ' ')
		b = append(b, c.Stage.String()...)
		b = append(b, " lvl "...)
		b = strconvx.AppendInt(b, int64(c.Level), 10)
		b = append(b, " duty "...)
		b = strconvx.AppendInt(b, int64(c.Duty), 10)
		b = append(b, " left "...)
		b = strconvx.AppendInt(b, int64(c.Remaining), 10)
		if c.Stalled {
			b = append(b, " stalled"...)
		}
		s.buf = b
		s.bytes(w, b)
	}
}

func (s *Shell) mem(w io.Writer) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	b := append(s.buf[:0], "heap "...)
	b = strconvx.AppendInt(b, int64(ms.HeapAlloc), 10)
	b = append(b, " sys "...)
	b = strconvx.AppendInt(b, int64(ms.Sys), 10)
	b = append(b, " gc "...)
	b = strconvx.AppendInt(b, int64(ms.NumGC), 10)
	s.buf = b
	s.bytes(w, b)
}

func (s *Shell) result(w io.Writer, err error) {
	if err != nil {
		s.fail(w, errcode.Of(err))
		return
	}
	s.ok(w)
}

func (s *Shell) ok(w io.Writer) { s.line(w, "ok") }

func (s *Shell) fail(w io.Writer, c errcode.Code) { s.line(w, "err "+string(c)) }

func (s *Shell) line(w io.Writer, msg string) {
	s.buf = append(s.buf[:0], msg...)
	s.bytes(w, s.buf)
}

func (s *Shell) bytes(w io.Writer, b []byte) {
	_, _ = w.Write(append(b, '\r', '\n'))
}

func uarg(a string) (uint32, bool) {
	v, err := strconvx.ParseInt(a, 0, 64)
	if err != nil || v < 0 || v > 1<<32-1 {
		return 0, false
	}
	return uint32(v), true
}
