// Package tsfmt normalizes generated TypeScript source: two-space
// indentation derived from bracket depth, blank runs collapsed, no blank
// lines hugging braces, trimmed line ends, one trailing newline. It is not
// a parser; it tracks just enough lexical state (strings, template
// literals, comments) to keep literal content out of the depth count.
// Substitutions inside template literals are not understood, which is fine
// for generated code that never emits them.
package tsfmt

import (
	"fmt"
	"strings"
)

const indentUnit = "  "

type line struct {
	text    string // trimmed content, or the raw line when verbatim
	blank   bool
	raw     bool // inside a template literal, emit untouched
	indent  int
	comment bool // block-comment continuation, aligned one space deeper
}

type scanner struct {
	inComment  bool
	inTemplate bool
}

// scanLine advances the lexical state across one line and reports the net
// bracket delta plus the number of closers before any other token. Plain
// string literals never span lines, so an unterminated one just ends.
func (s *scanner) scanLine(text string) (delta, leading int) {
	var inString byte
	leadingDone := s.inComment || s.inTemplate
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case s.inComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				s.inComment = false
				i++
			}
		case s.inTemplate:
			if c == '\\' {
				i++
			} else if c == '`' {
				s.inTemplate = false
			}
		case inString != 0:
			if c == '\\' {
				i++
			} else if c == inString {
				inString = 0
			}
		default:
			switch c {
			case '/':
				if i+1 < len(text) {
					if text[i+1] == '/' {
						return delta, leading
					}
					if text[i+1] == '*' {
						s.inComment = true
						i++
					}
				}
			case '\'', '"':
				inString = c
			case '`':
				s.inTemplate = true
			case '(', '[', '{':
				delta++
				leadingDone = true
			case ')', ']', '}':
				delta--
				if !leadingDone {
					leading++
				}
			default:
				if c != ' ' && c != '\t' {
					leadingDone = true
				}
			}
		}
	}
	return delta, leading
}

// Format reindents and tidies src. Malformed input (unbalanced brackets,
// an unterminated comment or template literal) is an error; callers fall
// back to the unformatted source.
func Format(src string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tsfmt: %v", r)
		}
	}()

	sc := &scanner{}
	depth := 0
	rawLines := strings.Split(src, "\n")
	lines := make([]line, 0, len(rawLines))
	for _, raw := range rawLines {
		if sc.inTemplate {
			sc.scanLine(raw)
			lines = append(lines, line{text: raw, raw: true})
			continue
		}
		text := strings.TrimSpace(raw)
		if text == "" {
			lines = append(lines, line{blank: true})
			continue
		}
		startsInComment := sc.inComment
		delta, leading := sc.scanLine(text)
		indent := depth - leading
		if indent < 0 {
			indent = 0
		}
		lines = append(lines, line{
			text:    text,
			indent:  indent,
			comment: startsInComment && text[0] == '*',
		})
		depth += delta
		if depth < 0 {
			depth = 0
		}
	}
	if depth != 0 {
		return "", fmt.Errorf("tsfmt: unbalanced brackets (depth %d at end of input)", depth)
	}
	if sc.inComment {
		return "", fmt.Errorf("tsfmt: unterminated block comment")
	}
	if sc.inTemplate {
		return "", fmt.Errorf("tsfmt: unterminated template literal")
	}

	var b strings.Builder
	wrote := false
	pendingBlank := false
	prevOpens := false
	for _, l := range lines {
		if l.blank {
			pendingBlank = wrote
			continue
		}
		if l.raw {
			if pendingBlank {
				b.WriteString("\n")
			}
			b.WriteString(l.text)
			b.WriteString("\n")
			wrote, pendingBlank, prevOpens = true, false, false
			continue
		}
		closes := strings.IndexByte(")]}", l.text[0]) >= 0
		if pendingBlank && !prevOpens && !closes {
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat(indentUnit, l.indent))
		if l.comment {
			b.WriteString(" ")
		}
		b.WriteString(l.text)
		b.WriteString("\n")
		last := l.text[len(l.text)-1]
		wrote, pendingBlank, prevOpens = true, false, strings.IndexByte("([{", last) >= 0
	}
	return b.String(), nil
}
