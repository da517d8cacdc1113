// Package config centralizes process configuration: storage locations, the
// mock/live tool mode switch, external provider credentials and the optional
// completion provider selection. Settings load from an optional YAML file and
// are always overridable from the environment.
package config
