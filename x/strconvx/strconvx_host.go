//go:build !rp2040

package strconvx

import "strconv"

// Signature parity with strconv; host builds delegate straight through.

func Itoa(i int) string                                   { return strconv.Itoa(i) }
func Atoi(s string) (int, error)                          { return strconv.Atoi(s) }
func ParseInt(s string, base, bitSize int) (int64, error) { return strconv.ParseInt(s, base, bitSize) }
func AppendInt(dst []byte, i int64, base int) []byte      { return strconv.AppendInt(dst, i, base) }
