// Package config loads photobatch settings. Values come from the embedded
// defaults, then the user's TOML file, then PHOTOBATCH_* environment
// variables, each layer overriding the previous one.
package config
