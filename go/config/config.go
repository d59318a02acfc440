// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package config reads .siltconfig files, which give short aliases to
// database specs, and resolves those aliases in specs given to the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the parsed representation of a .siltconfig file.
type Config struct {
	File string
	Db   map[string]DbConfig
}

// DbConfig is one database alias entry.
type DbConfig struct {
	Url string
}

const (
	// SiltConfigFile is the name searched for in the working directory and
	// its ancestors.
	SiltConfigFile = ".siltconfig"

	// DefaultDbAlias is the alias applied when a spec names no database.
	DefaultDbAlias = "db"
)

var ErrNoConfig = errors.New("no " + SiltConfigFile + " found")

// FindSiltConfig looks for a .siltconfig file in dir and each of its
// ancestors, returning the parsed config from the nearest one.
func FindSiltConfig(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		file := filepath.Join(abs, SiltConfigFile)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return ReadConfig(file)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return nil, ErrNoConfig
		}
		abs = parent
	}
}

// ReadConfig parses the config in file.
func ReadConfig(file string) (*Config, error) {
	var c Config
	if _, err := toml.DecodeFile(file, &c); err != nil {
		return nil, err
	}
	c.File = file
	return &c, nil
}

func (c *Config) String() string {
	s := fmt.Sprintf("file = %q\n", c.File)
	for alias, db := range c.Db {
		s += fmt.Sprintf("[db.%s]\nurl = %q\n", alias, db.Url)
	}
	return s
}
