package utils

import (
	"os"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

///////////////////////////////////////////////////////////////////////////////
// Decimal Formatting — Used by cold-path diagnostics
///////////////////////////////////////////////////////////////////////////////

// Utoa renders an unsigned integer in base 10 with a single allocation.
//
//go:inline
func Utoa(n uint64) string {
	var buf [20]byte
	i := len(buf)
	for n >= 10 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	i--
	buf[i] = byte('0' + n)
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Decimal Scanning — Input line parsing
///////////////////////////////////////////////////////////////////////////////

// ParseDecU64 reads the run of ASCII digits at the start of b.
// It returns the value, the number of bytes consumed, and ok=false when b
// does not start with a digit or the value overflows uint64.
func ParseDecU64(b []byte) (v uint64, n int, ok bool) {
	for n < len(b) {
		c := b[n] - '0'
		if c > 9 {
			break
		}
		if v > (^uint64(0)-uint64(c))/10 {
			return 0, n, false
		}
		v = v*10 + uint64(c)
		n++
	}
	return v, n, n > 0
}

// NextDigit returns the index of the first ASCII digit at or after i, or -1.
//
//go:nosplit
//go:inline
func NextDigit(b []byte, i int) int {
	for ; i < len(b); i++ {
		if b[i]-'0' <= 9 {
			return i
		}
	}
	return -1
}

///////////////////////////////////////////////////////////////////////////////
// Stderr Output — No fmt, no interfaces on the call path
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg to stderr as-is. Write errors are dropped: there
// is nowhere left to report them.
//
//go:inline
func PrintWarning(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = os.Stderr.Write(unsafe.Slice(unsafe.StringData(msg), len(msg)))
}
