// Package shortcuts extracts non-Steam shortcuts from the binary shortcuts.vdf blob.
//
// The format is undocumented. Extraction is best-effort pattern matching on
// field markers and is never guaranteed to find every record: callers must
// treat the result as a hint list, not as a faithful decode.
package shortcuts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultLookahead bounds how far after a name the executable marker is searched.
	DefaultLookahead = 512

	// DefaultSuffix is the executable suffix accepted for shortcut targets.
	DefaultSuffix = ".exe"

	typeString byte = 0x01
	terminator byte = 0x00

	nameField = "AppName"
	exeField  = "Exe"
)

// ErrTruncatedRecord is matched by errors reporting a field that overruns the buffer.
var ErrTruncatedRecord = errors.New("truncated shortcut record")

// TruncatedError reports the offset of the first record whose field overran the buffer.
type TruncatedError struct {
	Offset int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("shortcuts: record truncated at offset %d", e.Offset)
}

// Unwrap lets errors.Is(err, ErrTruncatedRecord) match.
func (e *TruncatedError) Unwrap() error {
	return ErrTruncatedRecord
}

// Shortcut is one accepted (name, executable) pair.
type Shortcut struct {
	Name string
	Exe  string

	// Offset of the name marker inside the parsed buffer.
	Offset int
}

// Parser holds the heuristics used to accept a candidate pair.
type Parser struct {
	// Exists filters out false positives from marker collisions.
	Exists func(path string) bool

	Suffix    string
	Lookahead int
}

// New returns a parser with default limits that checks executables on disk.
func New() *Parser {
	return &Parser{
		Suffix:    DefaultSuffix,
		Lookahead: DefaultLookahead,
		Exists:    fileExists,
	}
}

// decoder reads a string value starting at offset at. ok is false when no
// plausible value starts there; overrun is true when a declared length runs
// past the end of the buffer.
type decoder func(buf []byte, at int) (value string, next int, ok, overrun bool)

// Length-prefixed values are tried first, NUL-terminated ones second.
var decoders = []decoder{decodePrefixed, decodeCString}

// Parse scans buf and returns every accepted pair in buffer order.
//
// A non-nil error never discards results: it is a *TruncatedError naming the
// first offset where a field overran the buffer, or where extraction had to
// stop on an unexpected fault.
func (p *Parser) Parse(buf []byte) (found []Shortcut, err error) {
	pos := 0

	defer func() {
		if r := recover(); r != nil {
			err = &TruncatedError{Offset: pos}
		}
	}()

	for pos < len(buf) {
		start := findMarker(buf, pos, len(buf), nameField)
		if start < 0 {
			break
		}

		sc, next, overrun := p.candidate(buf, start)
		switch {
		case sc != nil:
			found = append(found, *sc)
			pos = next
		case overrun:
			if err == nil {
				err = &TruncatedError{Offset: start}
			}
			pos = start + 1
		default:
			pos = next
		}
	}

	return found, err
}

// candidate tries every decoder for the name marker at start and returns the
// first accepted pair and the offset to resume from. Overrun is only reported
// when no decoder could read both fields.
func (p *Parser) candidate(buf []byte, start int) (*Shortcut, int, bool) {
	valueAt := start + markerLen(nameField)
	overrun, decoded := false, false

	for _, decode := range decoders {
		name, afterName, ok, over := decode(buf, valueAt)
		overrun = overrun || over
		if !ok {
			continue
		}

		limit := min(afterName+p.lookahead(), len(buf))
		exeAt := findMarker(buf, afterName, limit, exeField)
		if exeAt < 0 {
			continue
		}

		exe, afterExe, ok, over := decode(buf, exeAt+markerLen(exeField))
		overrun = overrun || over
		if !ok {
			continue
		}

		decoded = true

		exe = strings.Trim(exe, `"`)
		if p.accept(exe) {
			return &Shortcut{Name: name, Exe: exe, Offset: start}, afterExe, false
		}
	}

	return nil, valueAt, overrun && !decoded
}

func (p *Parser) accept(exe string) bool {
	suffix := p.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}

	if exe == "" || !strings.HasSuffix(strings.ToLower(exe), strings.ToLower(suffix)) {
		return false
	}

	exists := p.Exists
	if exists == nil {
		exists = fileExists
	}

	return exists(exe)
}

func (p *Parser) lookahead() int {
	if p.Lookahead <= 0 {
		return DefaultLookahead
	}

	return p.Lookahead
}

// findMarker returns the offset of the first `0x01 <field> 0x00` sequence
// starting in [from, to), comparing the field name case-insensitively.
func findMarker(buf []byte, from, to int, field string) int {
	n := markerLen(field)
	for i := from; i < to; {
		j := bytes.IndexByte(buf[i:to], typeString)
		if j < 0 {
			return -1
		}
		i += j

		end := i + n
		if end <= len(buf) &&
			buf[end-1] == terminator &&
			strings.EqualFold(string(buf[i+1:end-1]), field) {
			return i
		}
		i++
	}

	return -1
}

func markerLen(field string) int {
	return len(field) + 2
}

func decodePrefixed(buf []byte, at int) (string, int, bool, bool) {
	if at >= len(buf) {
		return "", at, false, true
	}

	end := at + 1 + int(buf[at])
	if end > len(buf) {
		return "", at, false, true
	}

	raw := buf[at+1 : end]
	// a NUL inside means this is not a length-prefixed value
	if bytes.IndexByte(raw, terminator) >= 0 {
		return "", at, false, false
	}

	return text(raw), end, true, false
}

func decodeCString(buf []byte, at int) (string, int, bool, bool) {
	if at >= len(buf) {
		return "", at, false, false
	}

	i := bytes.IndexByte(buf[at:], terminator)
	if i < 0 {
		return "", at, false, false
	}

	return text(buf[at : at+i]), at + i + 1, true, false
}

// text decodes loosely: invalid UTF-8 is replaced rather than rejected.
func text(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
