// Package file keeps coursemate's config.toml and prompt overrides under
// ~/.coursemate. Missing files are not an error: the store starts empty and
// the prompt store falls back to its embedded defaults.
package file
