package utils

import "fmt"

type Mode int

const (
	Transmit Mode = iota
	Receive
)

func (m Mode) String() string {
	switch m {
	case Transmit:
		return "tx"
	case Receive:
		return "rx"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps the first CLI argument to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "tx":
		return Transmit, nil
	case "rx":
		return Receive, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}
