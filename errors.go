package cachalot

import "fmt"

// mustNotFail treats any non-nil environmental error as fatal, matching
// spec §7: "the core panics on path-probe failure, read error mid-stream,
// write error, and blocking-task join failure." This mirrors the
// teacher's own willingness to panic on conditions it considers
// unrecoverable bugs in the environment (see dcache.unmap: "we're going
// to panic here... if we encounter this we've got a terrible bug").
func mustNotFail(err error, op string) {
	if err != nil {
		panic(fmt.Sprintf("cachalot: fatal environmental failure during %s: %v", op, err))
	}
}
