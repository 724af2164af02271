// Package config manages the Arena server configuration file.
//
// Configuration lives in a YAML file under the OS-appropriate config
// directory (~/.config/arena/config.yaml on Linux/macOS). A missing file is
// not an error; Load returns defaults so the server runs out of the box.
//
// Saves are atomic (temp file + rename) so a crash mid-write never leaves a
// corrupt config behind.
package config
