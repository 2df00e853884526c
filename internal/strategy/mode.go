package strategy

import (
	"fmt"
	"strings"
)

// Mode selects which strategies run and whether failures fall through.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeAPI      Mode = API
	ModeOffline  Mode = Offline
	ModeRegex    Mode = Regex
	ModeLlamaCpp Mode = LlamaCpp
)

// Modes lists the accepted mode values.
var Modes = []Mode{ModeAuto, ModeAPI, ModeOffline, ModeRegex, ModeLlamaCpp}

var autoPlan = []string{API, LlamaCpp, Offline, Regex}

// ParseMode accepts a mode name case-insensitively. Empty means auto.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown analyzer mode %q", s)
}

// Pinned reports whether the mode restricts analysis to a single strategy.
func (m Mode) Pinned() bool {
	return m != ModeAuto
}

// Plan returns the strategy names to try, in order.
func (m Mode) Plan() []string {
	if m == ModeAuto {
		plan := make([]string, len(autoPlan))
		copy(plan, autoPlan)
		return plan
	}
	return []string{string(m)}
}
