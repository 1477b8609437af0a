package kcgx

import "os"

// EnvironProvider supplies the process environment to the ingester. The
// default, OSEnviron, reads the real process environment; tests inject a
// StaticEnviron instead of touching global state.
type EnvironProvider interface {
	Environ() []string
}

// OSEnviron reads the real process environment via os.Environ.
type OSEnviron struct{}

func (OSEnviron) Environ() []string { return os.Environ() }

// StaticEnviron is a fixed, caller-supplied environment list, for tests and
// for FastCGI mode (where "the environment" is synthesized from PARAMS
// records rather than read from the OS).
type StaticEnviron []string

func (s StaticEnviron) Environ() []string { return []string(s) }
