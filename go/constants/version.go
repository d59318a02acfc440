// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package constants collects release and protocol constants shared by the
// client, the remote handlers, and the CLI.
package constants

// SiltVersion is the version of the chunk protocol and the serialization
// format. Both sides of every remote interaction must agree on it.
const SiltVersion = "3.1"

// SiltVersionHeader carries SiltVersion on every remote request and response.
const SiltVersionHeader = "x-silt-vers"

const (
	RootPath       = "/root/"
	GetRefsPath    = "/getRefs/"
	HasRefsPath    = "/hasRefs/"
	WriteValuePath = "/writeValue/"
)
