// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package chost

import (
	"strconv"
	"time"

	"github.com/yourbase/ctxtree/envvar"
	"github.com/yourbase/ctxtree/ini"
)

// Config holds the tunables loaded by Load: a default timeout, applied by
// ctxtree.Root via DefaultTimeoutProvider, and whether uncaught listener
// exceptions should be treated as fatal (see StrictSink).
type Config struct {
	DefaultTimeout time.Duration
	StrictUncaught bool
}

const (
	defaultTimeoutKey = "default_timeout_ms"
	strictUncaughtKey = "strict_uncaught"
	hostSection       = "host"

	envDefaultTimeout = "CTXTREE_DEFAULT_TIMEOUT_MS"
	envStrictUncaught = "CTXTREE_STRICT_UNCAUGHT"
)

// defaultConfig is used when neither an ini file nor environment variables
// override a setting.
var defaultConfig = Config{
	DefaultTimeout: 30 * time.Second,
	StrictUncaught: false,
}

// Load builds a Config, starting from defaultConfig, applying any values
// found in files' [host] section (files is searched in descending order of
// precedence, e.g. a project config before a user config, per
// ini.FileSet.Get), then applying environment variable overrides (which
// always win over every file). files may be nil or empty, in which case
// only environment variables and the defaults apply.
func Load(files ini.FileSet) Config {
	cfg := defaultConfig

	if v := files.Get(hostSection, defaultTimeoutKey); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.DefaultTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := files.Get(hostSection, strictUncaughtKey); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictUncaught = b
		}
	}

	if v := envvar.Get(envDefaultTimeout, ""); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.DefaultTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := envvar.Get(envStrictUncaught, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictUncaught = b
		}
	}

	return cfg
}

// LoadFiles parses paths as INI (see ini.ParseFiles) in descending order of
// precedence and loads a Config from the result. A missing file is treated
// as empty, not an error, matching ini.ParseFiles.
func LoadFiles(paths ...string) (Config, error) {
	fset, err := ini.ParseFiles(nil, paths...)
	if err != nil {
		return defaultConfig, err
	}
	return Load(fset), nil
}

// StrictSink returns an uncaught-exception sink that panics instead of
// logging, for use with Config.StrictUncaught during development and
// testing.
func (c Config) StrictSink(fallback func(error)) func(error) {
	if !c.StrictUncaught {
		return fallback
	}
	return func(err error) { panic(err) }
}
