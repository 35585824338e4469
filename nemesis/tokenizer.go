package nemesis

import (
	"errors"
	"io"
)

// tokenizeRuns reads nybbles from src, grouping consecutive equal values
// into (value, length) runs capped at maxRunLength, and invokes emit for
// each run in order. The final run at end of input is emitted too. emit is
// the caller's action — a counting closure during planning, a code-writing
// closure during the final encode pass (spec §4.3, §9 "function pointer
// callbacks with state").
func tokenizeRuns(src *nybbleSource, emit func(value, length uint8) error) error {
	var haveCurrent bool
	var curValue, curLen uint8

	for {
		v, err := src.nextNybble()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if haveCurrent {
					return emit(curValue, curLen)
				}
				return nil
			}
			return err
		}

		if !haveCurrent {
			haveCurrent = true
			curValue = v
			curLen = 1
			continue
		}

		if v == curValue && curLen < maxRunLength {
			curLen++
			continue
		}

		if err := emit(curValue, curLen); err != nil {
			return err
		}
		curValue = v
		curLen = 1
	}
}
