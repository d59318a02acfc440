// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package verbose provides opt-in progress logging, enabled by the --verbose
// flag that RegisterVerboseFlags adds to a kingpin app.
package verbose

import (
	"log"

	"github.com/attic-labs/kingpin"
)

var (
	verbose bool
	quiet   bool
)

// RegisterVerboseFlags registers --verbose and --quiet with the given app.
func RegisterVerboseFlags(app *kingpin.Application) {
	app.Flag("verbose", "show more").Short('v').BoolVar(&verbose)
	app.Flag("quiet", "show less").Short('q').BoolVar(&quiet)
}

// Verbose returns True if the verbose flag was set.
func Verbose() bool {
	return verbose
}

func SetVerbose(v bool) {
	verbose = v
}

// Quiet returns True if the quiet flag was set.
func Quiet() bool {
	return quiet
}

func SetQuiet(q bool) {
	quiet = q
}

// Log calls Printf(format, args...) iff Verbose() returns true.
func Log(format string, args ...interface{}) {
	if Verbose() {
		if len(args) > 0 {
			log.Printf(format+"\n", args...)
		} else {
			log.Println(format)
		}
	}
}
