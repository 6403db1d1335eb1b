package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInput marks user text that could not be turned into a command.
var ErrInvalidInput = errors.New("invalid input")

// ParseHandle reads a window handle written in hexadecimal, with or without
// a 0x prefix.
func ParseHandle(text string) (uint64, error) {
	digits := strings.TrimSpace(text)
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: empty window handle", ErrInvalidInput)
	}

	handle, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: window handle %q exceeds 64 bits", ErrInvalidInput, strings.TrimSpace(text))
		}
		return 0, fmt.Errorf("%w: window handle %q is not hexadecimal", ErrInvalidInput, strings.TrimSpace(text))
	}
	return handle, nil
}
