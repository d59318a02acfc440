// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	memSpec     = "mem"
	httpSpec    = "http://test.com:8080/foo"
	remoteAlias = "origin"
)

func writeConfig(assert *assert.Assertions, dir string) string {
	file := filepath.Join(dir, SiltConfigFile)
	contents := `
[db.db]
url = "` + memSpec + `"

[db.origin]
url = "` + httpSpec + `"
`
	assert.NoError(ioutil.WriteFile(file, []byte(contents), 0644))
	return file
}

func TestReadConfig(t *testing.T) {
	assert := assert.New(t)

	dir, err := ioutil.TempDir("", "siltconfig")
	assert.NoError(err)
	defer os.RemoveAll(dir)
	file := writeConfig(assert, dir)

	c, err := ReadConfig(file)
	assert.NoError(err)
	assert.Equal(file, c.File)
	assert.Equal(memSpec, c.Db[DefaultDbAlias].Url)
	assert.Equal(httpSpec, c.Db[remoteAlias].Url)
}

func TestFindSiltConfigWalksUp(t *testing.T) {
	assert := assert.New(t)

	dir, err := ioutil.TempDir("", "siltconfig")
	assert.NoError(err)
	defer os.RemoveAll(dir)
	file := writeConfig(assert, dir)

	nested := filepath.Join(dir, "a", "b", "c")
	assert.NoError(os.MkdirAll(nested, 0755))

	c, err := FindSiltConfig(nested)
	assert.NoError(err)
	assert.Equal(file, c.File)
}

func TestFindSiltConfigMissing(t *testing.T) {
	assert := assert.New(t)

	dir, err := ioutil.TempDir("", "noconfig")
	assert.NoError(err)
	defer os.RemoveAll(dir)

	// No config anywhere up the tree from a fresh temp dir... unless the
	// machine has one at / or in the temp root; tolerate only ErrNoConfig
	// or a config that isn't inside dir.
	c, err := FindSiltConfig(dir)
	if err == nil {
		assert.NotContains(c.File, dir)
	} else {
		assert.Equal(ErrNoConfig, err)
	}
}

func TestConfigString(t *testing.T) {
	assert := assert.New(t)

	c := &Config{
		File: "/tmp/.siltconfig",
		Db: map[string]DbConfig{
			DefaultDbAlias: {memSpec},
		},
	}
	s := c.String()
	assert.Contains(s, "/tmp/.siltconfig")
	assert.Contains(s, memSpec)
}
