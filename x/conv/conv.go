// Package conv formats integers without fmt or strconv, for TinyGo images
// that cannot afford either.
package conv

// Utoa writes n in base 10 at the end of buf and returns that tail. A buf
// of 20 bytes holds any uint64; a shorter one keeps the low digits.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	for i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return buf[i:]
}

// Itoa is Utoa with a leading '-' for negative n. buf needs 21 bytes for
// any int64.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	if len(buf) < 2 {
		return buf[:0]
	}
	d := Utoa(buf[1:], uint64(-(n+1))+1)
	start := len(buf) - len(d) - 1
	buf[start] = '-'
	return buf[start:]
}

// U32 is the allocating convenience form of Utoa.
func U32(n uint32) string {
	var b [10]byte
	return string(Utoa(b[:], uint64(n)))
}
