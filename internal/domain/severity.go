package domain

import (
	"fmt"
	"strings"
)

// Severity classifies issues and rule violations. The zero value is HINT.
type Severity int

const (
	SeverityHint Severity = iota
	SeverityWarning
	SeverityError
)

// AllSeverities lists every severity from lowest to highest.
var AllSeverities = []Severity{SeverityHint, SeverityWarning, SeverityError}

func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "HINT"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s >= other
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HINT":
		return SeverityHint, nil
	case "WARNING":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	default:
		return SeverityError, fmt.Errorf("unknown severity %q (valid: HINT, WARNING, ERROR)", raw)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityHint || s > SeverityError {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
