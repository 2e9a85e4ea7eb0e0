package common

import (
	"math/rand"
	"time"
)

type stop struct {
	error
}

// Retry tries a function multiple times with exponential backoff and jitter.
// Wrapping the returned error in a stop aborts the remaining attempts.
func Retry(attempts int, sleep time.Duration, f func() error) error {
	var err error
	for ; attempts > 0; attempts-- {
		if err = f(); err == nil {
			return nil
		}

		if s, ok := err.(stop); ok {
			// return the original error for later checking
			return s.error
		}

		if attempts > 1 {
			jitter := time.Duration(rand.Int63n(int64(sleep)))
			time.Sleep(sleep + jitter/2)
			sleep = 2 * sleep
		}
	}

	return err
}
