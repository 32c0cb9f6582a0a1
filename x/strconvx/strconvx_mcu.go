//go:build rp2040

package strconvx

// Minimal decimal/hex helpers with strconv signatures. Only bases 10 and 16
// (plus 0 for auto-detect of a 0x prefix) are accepted; settings values and
// shell arguments never need more.

type parseError struct{}

func (parseError) Error() string { return "invalid syntax" }

type rangeError struct{}

func (rangeError) Error() string { return "value out of range" }

func Itoa(i int) string { return string(AppendInt(nil, int64(i), 10)) }

func Atoi(s string) (int, error) {
	v, err := ParseInt(s, 10, 0)
	return int(v), err
}

// AppendInt appends the text form of i to dst without an intermediate string.
func AppendInt(dst []byte, i int64, base int) []byte {
	if base != 16 {
		base = 10
	}
	const digits = "0123456789abcdef"
	var buf [20]byte
	n := len(buf)
	u := uint64(i)
	if i < 0 {
		u = uint64(-i)
	}
	if u == 0 {
		n--
		buf[n] = '0'
	}
	for u > 0 {
		n--
		buf[n] = digits[u%uint64(base)]
		u /= uint64(base)
	}
	if i < 0 {
		n--
		buf[n] = '-'
	}
	return append(dst, buf[n:]...)
}

// ParseInt accepts an optional sign; bitSize 0 means 32 bits on rp2040.
func ParseInt(s string, base, bitSize int) (int64, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if base == 0 {
		base = 10
		if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			base, s = 16, s[2:]
		}
	}
	if (base != 10 && base != 16) || len(s) == 0 {
		return 0, parseError{}
	}
	if bitSize <= 0 || bitSize > 64 {
		bitSize = 32
	}
	limit := uint64(1) << uint(bitSize-1)
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint64
		switch {
		case '0' <= c && c <= '9':
			d = uint64(c - '0')
		case base == 16 && 'a' <= c && c <= 'f':
			d = uint64(c-'a') + 10
		case base == 16 && 'A' <= c && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return 0, parseError{}
		}
		v = v*uint64(base) + d
		if v > limit {
			return 0, rangeError{}
		}
	}
	if neg {
		return -int64(v), nil
	}
	if v == limit {
		return 0, rangeError{}
	}
	return int64(v), nil
}
