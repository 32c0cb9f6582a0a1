// Package settings loads the breathing limits from a small INI file.
//
// Only the [Common] section is read. Each group of related keys is validated
// on its own; a group that fails keeps its compiled-in defaults and the
// loader reports errcode.BadValue so the caller can signal a degraded start.
package settings

import (
	"bufio"
	"io"
	"strings"

	"ledtree-go/errcode"
	"ledtree-go/services/leds"
	"ledtree-go/x/mathx"
	"ledtree-go/x/strconvx"
)

const Section = "Common"

// Settings are the validated values, periods and pause in milliseconds.
type Settings struct {
	TurnOnMaxPause int32
	MinValue       int32
	MaxValue       int32
	MinPeriod      int32
	MaxPeriod      int32
}

func Defaults() Settings {
	return Settings{
		TurnOnMaxPause: 0,
		MinValue:       7,
		MaxValue:       255,
		MinPeriod:      1800,
		MaxPeriod:      3600,
	}
}

// Limits converts to the engine's view.
func (s Settings) Limits() leds.Limits {
	return leds.Limits{
		MinValue:       uint8(s.MinValue),
		MaxValue:       uint8(s.MaxValue),
		MinPeriod:      uint32(s.MinPeriod),
		MaxPeriod:      uint32(s.MaxPeriod),
		TurnOnMaxPause: uint32(s.TurnOnMaxPause),
	}
}

// bound is one key and its allowed range.
type bound struct {
	key    string
	lo, hi int32
	dst    func(*Settings) *int32
}

// group is validated as a unit; ordered groups also require the first value
// not to exceed the second.
type group struct {
	keys    []bound
	ordered bool
}

var groups = []group{
	{keys: []bound{
		{"MinValue", 0, 255, func(s *Settings) *int32 { return &s.MinValue }},
		{"MaxValue", 0, 255, func(s *Settings) *int32 { return &s.MaxValue }},
	}, ordered: true},
	{keys: []bound{
		{"MinPeriod", 500, 55000, func(s *Settings) *int32 { return &s.MinPeriod }},
		{"MaxPeriod", 500, 60000, func(s *Settings) *int32 { return &s.MaxPeriod }},
	}, ordered: true},
	{keys: []bound{
		{"TurnOnMaxPause", 0, 60000, func(s *Settings) *int32 { return &s.TurnOnMaxPause }},
	}},
}

// Parse reads INI text and returns validated settings. The returned settings
// are always usable; a non-nil error carries errcode.BadValue naming the
// rejected keys, or the read error.
func Parse(r io.Reader) (Settings, error) {
	s := Defaults()
	kv, err := readSection(r, Section)
	if err != nil {
		return s, errcode.Wrap(errcode.Error, "settings.Parse", err)
	}
	var bad []string
	for _, g := range groups {
		if !apply(&s, g, kv) {
			for _, b := range g.keys {
				bad = append(bad, b.key)
			}
		}
	}
	if len(bad) > 0 {
		return s, &errcode.E{C: errcode.BadValue, Op: "settings.Parse", Msg: strings.Join(bad, ",")}
	}
	return s, nil
}

// apply validates one group against a scratch copy and commits it only if
// every present key parses and lies in range.
func apply(s *Settings, g group, kv map[string]string) bool {
	tmp := *s
	for _, b := range g.keys {
		raw, ok := kv[strings.ToLower(b.key)]
		if !ok {
			continue
		}
		v, err := strconvx.Atoi(raw)
		if err != nil || v != int(int32(v)) || !mathx.Between(int32(v), b.lo, b.hi) {
			return false
		}
		*b.dst(&tmp) = int32(v)
	}
	if g.ordered && *g.keys[0].dst(&tmp) > *g.keys[1].dst(&tmp) {
		return false
	}
	*s = tmp
	return true
}

// readSection returns the keys of one section, lower-cased. Lines are
// "key = value" or "key: value"; '#' and ';' start comments.
func readSection(r io.Reader, want string) (map[string]string, error) {
	kv := make(map[string]string)
	sc := bufio.NewScanner(r)
	in := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.IndexAny(line, "#;"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			in = strings.EqualFold(strings.TrimSpace(line[1:len(line)-1]), want)
			continue
		}
		if !in {
			continue
		}
		i := strings.IndexAny(line, "=:")
		if i <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:i]))
		kv[key] = strings.TrimSpace(line[i+1:])
	}
	return kv, sc.Err()
}
