// Package app defines the CLI options contract used by the application
// bootstrapper.
package app

import "github.com/spf13/pflag"

// NamedFlagSets groups flag sets by section name, preserving registration
// order for help output.
type NamedFlagSets struct {
	// Order is the order in which the sections were registered.
	Order []string
	// FlagSets maps section name to its flag set.
	FlagSets map[string]*pflag.FlagSet
}

// FlagSet returns the flag set for the given section, creating it on first
// use.
func (f *NamedFlagSets) FlagSet(name string) *pflag.FlagSet {
	if f.FlagSets == nil {
		f.FlagSets = make(map[string]*pflag.FlagSet)
	}
	if _, ok := f.FlagSets[name]; !ok {
		f.FlagSets[name] = pflag.NewFlagSet(name, pflag.ExitOnError)
		f.Order = append(f.Order, name)
	}
	return f.FlagSets[name]
}

// CliOptions is the interface server option structs implement to plug into
// the application bootstrapper.
type CliOptions interface {
	// Flags returns the flags grouped by section.
	Flags() NamedFlagSets
	// Complete fills in defaults that depend on other options.
	Complete() error
	// Validate checks the options.
	Validate() error
}
