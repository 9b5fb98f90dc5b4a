package perfecterr

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID parses the running goroutine's id out of a runtime.Stack
// trace. This is a stdlib-only fallback: none of the example repos need
// goroutine-local storage (the teacher's search and storage packages pass
// state explicitly through call parameters), so there is no corpus library
// to ground this on. See DESIGN.md.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}
