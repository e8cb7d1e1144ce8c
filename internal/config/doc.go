// Package config provides configuration structures and utilities for benchdist.
// It defines the request, cache and report options and loads the optional
// .benchdist YAML file that holds source overrides and display aliases.
package config
