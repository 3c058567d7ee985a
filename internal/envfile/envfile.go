// Package envfile is a line-preserving codec for flat KEY=VALUE config
// files. Unlike a straight parse/serialize round trip, edits touch only
// the targeted assignment line; every other byte of the file survives
// unchanged, including comments, blank lines, and line order.
package envfile

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"

	"github.com/termfx/confx/internal/model"
)

type line struct {
	raw string
	key string // empty for comments, blanks, and non-assignment lines
}

// File is an ordered sequence of raw lines parsed from a config file.
type File struct {
	lines           []line
	trailingNewline bool
}

// Parse splits data into lines, classifying assignments by key. An
// assignment is a line whose first '=' is preceded by a bare identifier
// starting at column zero; anything else is carried through verbatim.
func Parse(data []byte) *File {
	text := string(data)
	trailing := strings.HasSuffix(text, "\n")
	if trailing {
		text = text[:len(text)-1]
	}

	f := &File{trailingNewline: trailing}
	if text == "" && !trailing {
		return f
	}

	for _, raw := range strings.Split(text, "\n") {
		f.lines = append(f.lines, line{raw: raw, key: assignmentKey(raw)})
	}
	return f
}

// assignmentKey returns the key of a KEY=VALUE line, or "" if the line
// is not an assignment.
func assignmentKey(raw string) string {
	eq := strings.IndexByte(raw, '=')
	if eq <= 0 {
		return ""
	}
	key := raw[:eq]
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return ""
		}
	}
	return key
}

// Has reports whether key has at least one assignment line.
func (f *File) Has(key string) bool {
	return f.count(key) > 0
}

func (f *File) count(key string) int {
	n := 0
	for _, l := range f.lines {
		if l.key == key {
			n++
		}
	}
	return n
}

// SetKey rewrites the single `key=` line to `key=value`. It fails with
// model.ErrKeyNotFound when no line carries the key and with
// model.ErrDuplicateKey when more than one does, so a malformed file is
// never half-edited.
func (f *File) SetKey(key, value string) error {
	switch n := f.count(key); {
	case n == 0:
		return fmt.Errorf("%w: %s", model.ErrKeyNotFound, key)
	case n > 1:
		return fmt.Errorf("%w: %s (%d occurrences)", model.ErrDuplicateKey, key, n)
	}

	for i := range f.lines {
		if f.lines[i].key == key {
			f.lines[i].raw = key + "=" + value
			return nil
		}
	}
	return fmt.Errorf("%w: %s", model.ErrKeyNotFound, key)
}

// AppendKey adds a `key=value` line at the end of the file.
func (f *File) AppendKey(key, value string) {
	f.lines = append(f.lines, line{raw: key + "=" + value, key: key})
	f.trailingNewline = true
}

// Render reassembles the file. Rendering an unmodified File reproduces
// the parsed input byte-for-byte.
func (f *File) Render() []byte {
	if len(f.lines) == 0 {
		if f.trailingNewline {
			return []byte("\n")
		}
		return nil
	}

	raws := make([]string, len(f.lines))
	for i, l := range f.lines {
		raws[i] = l.raw
	}
	out := strings.Join(raws, "\n")
	if f.trailingNewline {
		out += "\n"
	}
	return []byte(out)
}

// Lookup resolves a key's effective value using dotenv semantics
// (quoting and escapes included), which is what the downstream consumer
// of the file will see.
func (f *File) Lookup(key string) (string, bool) {
	env, err := godotenv.Unmarshal(string(f.Render()))
	if err != nil {
		return "", false
	}
	v, ok := env[key]
	return v, ok
}
