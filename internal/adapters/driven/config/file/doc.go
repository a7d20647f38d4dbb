// Package file provides TOML-based configuration loading and the
// user-editable prompt store.
package file
