package vm

import (
	"runtime"
)

// goroutineID extracts the current goroutine's id from the runtime stack
// header ("goroutine N [running]:"). It is consulted on the class closure
// path and by the goroutine-keyed domain stack behind EnterDomain and
// CurrentDomain.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	const prefix = "goroutine "
	var id uint64
	for i := len(prefix); i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
