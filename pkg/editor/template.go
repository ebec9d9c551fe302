package editor

import (
	"path/filepath"
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokFile
	tokFileList
	tokDest
	tokWorkDir
)

type token struct {
	kind tokenKind
	text string
}

// Template is a parsed command template
type Template struct {
	raw    string
	tokens []token
	flags  OperationalFlags
}

// ParseTemplate parses a command template. The returned Failure is zero on
// success.
func ParseTemplate(raw string) (*Template, Failure) {
	if strings.TrimSpace(raw) == "" {
		return nil, FailEmpty
	}

	t := &Template{raw: raw}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			t.tokens = append(t.tokens, token{kind: tokText, text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '%' {
			text.WriteByte(c)
			continue
		}
		if i+1 >= len(raw) {
			return nil, FailSyntax
		}
		i++
		switch raw[i] {
		case '%':
			text.WriteByte('%')
		case 'f':
			flush()
			t.tokens = append(t.tokens, token{kind: tokFile})
			t.flags |= FlagForEach
		case 'F':
			flush()
			t.tokens = append(t.tokens, token{kind: tokFileList})
			t.flags |= FlagFileList
		case 'd':
			flush()
			t.tokens = append(t.tokens, token{kind: tokDest})
			t.flags |= FlagDest
		case 'p':
			flush()
			t.tokens = append(t.tokens, token{kind: tokWorkDir})
			t.flags |= FlagWorkDir
		default:
			return nil, FailSyntax
		}
	}
	flush()

	if t.flags.Has(FlagForEach) && t.flags.Has(FlagFileList) {
		return nil, FailIncompatible
	}
	return t, 0
}

// Flags returns the operational flags implied by the placeholders
func (t *Template) Flags() OperationalFlags {
	return t.flags
}

// String returns the raw template
func (t *Template) String() string {
	return t.raw
}

// Render expands the template into a shell command line. files holds one
// file in for-each mode and the whole list otherwise.
func (t *Template) Render(files []string, dest string) string {
	var b strings.Builder
	for _, tok := range t.tokens {
		switch tok.kind {
		case tokText:
			b.WriteString(tok.text)
		case tokFile:
			if len(files) > 0 {
				b.WriteString(shellQuote(files[0]))
			}
		case tokFileList:
			for i, f := range files {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(shellQuote(f))
			}
		case tokDest:
			b.WriteString(shellQuote(dest))
		case tokWorkDir:
			b.WriteString(shellQuote(workDir(files)))
		}
	}
	return b.String()
}

func workDir(files []string) string {
	if len(files) == 0 {
		return "."
	}
	return filepath.Dir(files[0])
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
