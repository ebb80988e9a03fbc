package generator

import (
	"regexp"
	"strings"
)

// docWidth is the wrap column for generated JSDoc bodies.
const docWidth = 96

var (
	docLinkRe    = regexp.MustCompile(`\[[a-z_]+@([^\]]+)\]`)
	docConstRe   = regexp.MustCompile(`%([A-Z0-9_]+)`)
	docSymbolRe  = regexp.MustCompile(`[#@]([A-Za-z0-9_:.]+)`)
	docMarkupRe  = regexp.MustCompile(`<!--.*?-->`)
	docConstants = map[string]string{"TRUE": "true", "FALSE": "false", "NULL": "null"}
)

// sanitizeDoc converts gtk-doc markup into plain JSDoc-safe text, wrapped
// at docWidth. Fenced code blocks are dropped: they are C samples with no
// meaning on the binding surface. An empty result means no doc comment.
func sanitizeDoc(doc string) []string {
	if strings.TrimSpace(doc) == "" {
		return nil
	}

	var kept []string
	inFence := false
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "|["):
			inFence = true
			continue
		case strings.HasPrefix(trimmed, "]|"):
			inFence = false
			continue
		case strings.HasPrefix(trimmed, "```"):
			inFence = !inFence
			continue
		case inFence:
			continue
		}
		kept = append(kept, trimmed)
	}

	text := strings.Join(kept, "\n")
	text = docMarkupRe.ReplaceAllString(text, "")
	text = docLinkRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := docLinkRe.FindStringSubmatch(m)[1]
		if i := strings.LastIndexByte(inner, '.'); i >= 0 {
			return inner[i+1:]
		}
		return inner
	})
	text = docConstRe.ReplaceAllStringFunc(text, func(m string) string {
		name := docConstRe.FindStringSubmatch(m)[1]
		if lit, ok := docConstants[name]; ok {
			return lit
		}
		return name
	})
	text = docSymbolRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "*/", "*\\/")

	var lines []string
	for _, para := range splitParagraphs(text) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, wrap(para, docWidth)...)
	}
	return lines
}

func splitParagraphs(text string) []string {
	var paras []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, " "))
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return paras
}

func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}
