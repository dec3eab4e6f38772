package biz_test

import (
	"io"

	"github.com/go-kratos/kratos/v2/log"
)

var testLogger = log.NewStdLogger(io.Discard)

// sequence returns a key source that hands out keys in order and then repeats the last one.
func sequence(keys ...string) func(string, int) (string, error) {
	i := 0
	return func(string, int) (string, error) {
		k := keys[i]
		if i < len(keys)-1 {
			i++
		}
		return k, nil
	}
}
