package main

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// uiMode is the --ui flag of gen. It implements pflag.Value so cobra
// rejects unknown modes while parsing.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = []uiMode{uiModeAuto, uiModeOn, uiModeOff}

func readUIMode(value string) (uiMode, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return uiModeAuto, nil
	}
	for _, m := range uiModes {
		if string(m) == value {
			return m, nil
		}
	}
	return "", errors.Newf("invalid --ui value %q (expected auto|on|off)", value)
}

func (m *uiMode) String() string { return string(*m) }

func (m *uiMode) Set(value string) error {
	parsed, err := readUIMode(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m *uiMode) Type() string { return "mode" }

// progressUI decides whether gen renders the live file list. Dry runs print
// code to stdout and watch mode prints its own log, so both stay plain.
func progressUI(f genFlags) bool {
	if f.dryRun || f.watch {
		return false
	}
	return shouldUseTUI(f.ui)
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	// прогресс рисуется в stdout
	return isTerminal(os.Stdout)
}
