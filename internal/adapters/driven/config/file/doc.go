// Package file keeps settings in ~/.coursemate/config.toml and the editable
// system prompt under ~/.coursemate/prompts.
package file
