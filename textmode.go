package ftp

import "strings"

// textExtensions is the closed set of filename extensions treated as ASCII
// text when a caller has not already pinned a transfer mode via Type.
// Everything else is treated as binary.
var textExtensions = map[string]struct{}{
	"txt":  {},
	"md":   {},
	"html": {},
	"htm":  {},
	"css":  {},
	"js":   {},
	"json": {},
	"xml":  {},
	"csv":  {},
	"log":  {},
	"ini":  {},
	"conf": {},
	"cfg":  {},
	"py":   {},
	"java": {},
	"c":    {},
	"cpp":  {},
	"h":    {},
	"sh":   {},
	"bat":  {},
	"yaml": {},
	"yml":  {},
	"toml": {},
}

// isBinaryFile reports whether name should be transferred in binary (TYPE I)
// mode, based on its extension. Anything not in the closed text-extension
// set is treated as binary.
func isBinaryFile(name string) bool {
	ext := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		ext = name[i+1:]
	} else {
		return true
	}
	_, isText := textExtensions[strings.ToLower(ext)]
	return !isText
}

// autoType sets the transfer type for remotePath, auto-selecting ASCII or
// binary from its extension unless the caller has already pinned a mode
// via an explicit Type call (currentType already set).
func (c *Session) autoType(remotePath string) error {
	if c.currentType != "" {
		return nil
	}
	mode := "I"
	if !isBinaryFile(remotePath) {
		mode = "A"
	}
	return c.Type(mode)
}
