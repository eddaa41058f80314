// Package file stores configuration in config.toml.
//
// Keys are flat dot paths over the TOML tables. Any key can be overridden
// for a single process through the environment; see EnvVar.
package file
