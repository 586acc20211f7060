// Package file provides file-based configuration and template storage.
// Configuration lives in a TOML file under the countersign config
// directory; message templates are plain text files the user can edit.
package file
