// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	localSpec  = memSpec
	remoteSpec = httpSpec
	testDs     = "testds"
	testObject = "#pckdvpvr9br1fie6c3pjudrlthe7na18"
)

type testData struct {
	input    string
	expected string
}

var (
	rtestConfig = &Config{
		"",
		map[string]DbConfig{
			DefaultDbAlias: {localSpec},
			remoteAlias:    {remoteSpec},
		},
	}

	dbTestsNoAliases = []testData{
		{localSpec, localSpec},
		{remoteSpec, remoteSpec},
	}

	dbTestsWithAliases = []testData{
		{"", localSpec},
		{remoteAlias, remoteSpec},
	}

	pathTestsNoAliases = []testData{
		{remoteSpec + "::" + testDs, remoteSpec + "::" + testDs},
		{remoteSpec + "::" + testObject, remoteSpec + "::" + testObject},
	}

	pathTestsWithAliases = []testData{
		{testDs, localSpec + "::" + testDs},
		{remoteAlias + "::" + testDs, remoteSpec + "::" + testDs},
		{testObject, localSpec + "::" + testObject},
		{remoteAlias + "::" + testObject, remoteSpec + "::" + testObject},
	}
)

func TestResolveDbSpec(t *testing.T) {
	assert := assert.New(t)

	withConfig := &Resolver{rtestConfig}
	for _, d := range append(dbTestsNoAliases, dbTestsWithAliases...) {
		assert.Equal(d.expected, withConfig.ResolveDbSpec(d.input), d.input)
	}

	noConfig := &Resolver{}
	for _, d := range dbTestsNoAliases {
		assert.Equal(d.expected, noConfig.ResolveDbSpec(d.input), d.input)
	}
	// Without a config, aliases pass through untouched.
	assert.Equal(remoteAlias, noConfig.ResolveDbSpec(remoteAlias))
}

func TestResolvePathSpec(t *testing.T) {
	assert := assert.New(t)

	withConfig := &Resolver{rtestConfig}
	for _, d := range append(pathTestsNoAliases, pathTestsWithAliases...) {
		assert.Equal(d.expected, withConfig.ResolvePathSpec(d.input), d.input)
	}

	noConfig := &Resolver{}
	for _, d := range pathTestsNoAliases {
		assert.Equal(d.expected, noConfig.ResolvePathSpec(d.input), d.input)
	}
}

func TestResolveDestinations(t *testing.T) {
	assert := assert.New(t)

	r := &Resolver{rtestConfig}
	sp, err := r.GetDatabase("")
	assert.NoError(err)
	assert.Equal("mem", sp.Protocol)

	dsSp, err := r.GetDataset(testDs)
	assert.NoError(err)
	assert.Equal(testDs, dsSp.Path.Dataset)

	pathSp, err := r.GetPath(testDs + ".value")
	assert.NoError(err)
	assert.Equal(testDs, pathSp.Path.Dataset)
	assert.False(pathSp.Path.Path.IsEmpty())
}
