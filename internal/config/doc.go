// Package config provides configuration structures and utilities for the
// data cleaner. It defines the oracle connection settings, the cleaning
// thresholds and the output preferences, and loads overrides from an
// optional YAML file.
package config
