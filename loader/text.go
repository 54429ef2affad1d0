package loader

import (
	"bufio"
	"strings"
)

// parseText splits the section text format into a document:
//
//	# comment
//	$States
//	q0
//	q1   # trailing comment
//	$Rules
//	q0 > a > q1
//
// Section headers start with '$' and are case-insensitive. Everything after
// '#' is a comment, so '#' cannot be a symbol. Likewise any line starting
// with '$' is a header, so a stack symbol written as "$" opens an unknown
// section that swallows the lines up to the next header; the bottom marker
// is a stack symbol without being listed. Lines before the first header and
// lines of unknown sections are reported to warn.
func parseText(text string, warn func(line int, msg string)) *document {
	doc := newDocument()
	current := ""
	skipping := false

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), maxDescriptionSize) //nolint:mnd

	for num := 1; scanner.Scan(); num++ {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "$") {
			name := strings.TrimSpace(line[1:])

			canon, ok := canonicalSection(name)
			if !ok {
				warn(num, "ignoring unknown section $"+name)

				current, skipping = "", true

				continue
			}

			current, skipping = canon, false
			doc.declare(canon, num)

			continue
		}

		switch {
		case skipping:
		case current == "":
			warn(num, "ignoring line outside of any section")
		default:
			doc.add(current, num, line)
		}
	}

	return doc
}
