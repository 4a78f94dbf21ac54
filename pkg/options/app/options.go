// Package app defines the options contract between the application
// bootstrapper and concrete server option structs.
package app

import (
	cliflag "github.com/kart-io/docuchat/pkg/app/cliflag"
)

// CliOptions is the interface for CLI options.
// Any options struct implementing this interface can be used with App.
type CliOptions interface {
	// Flags returns the flags grouped into named flag sets.
	Flags() cliflag.NamedFlagSets
	// Complete completes the options with defaults.
	Complete() error
	// Validate validates the options.
	Validate() error
}
