// Package file provides file-backed configuration adapters: the TOML
// application config, the grant program catalog, user-editable prompt
// templates, and JSON session persistence. All live under ~/.grantrag/
// by default and are created lazily with sensible defaults.
package file
