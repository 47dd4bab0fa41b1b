// Package errs holds the ambient panic/error helpers shared by the
// colkernel packages, in the style of kvdb/utils's Err/Panic/CondPanic.
package errs

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
)

// Panic panics if err is non-nil.
func Panic(err error) {
	if err != nil {
		panic(err)
	}
}

// CondPanic panics with err if condition is true.
func CondPanic(condition bool, err error) {
	if condition {
		Panic(err)
	}
}

func location(deep int) string {
	_, file, line, ok := runtime.Caller(deep)
	if !ok {
		file = "???"
		line = 0
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// Err logs err with its caller location and returns it unchanged, mirroring
// kvdb/utils.Err. It is a no-op for a nil error.
func Err(err error) error {
	if err != nil {
		fmt.Printf("%s %s\n", location(2), err)
	}
	return err
}
