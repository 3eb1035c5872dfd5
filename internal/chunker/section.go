package chunker

import (
	"regexp"
	"strings"
)

// UntitledHeading is the heading assigned to content that appears before any
// heading line, and to documents without headings.
const UntitledHeading = "untitled"

// Section is a heading-delimited span of a document before size-based
// splitting. Path holds the heading texts from outermost to innermost; the
// section's own heading line is not part of Content.
type Section struct {
	Path    []string
	Level   int
	Content string
}

// HeadingText returns the innermost heading of the section.
func (s Section) HeadingText() string {
	if len(s.Path) == 0 {
		return ""
	}
	return s.Path[len(s.Path)-1]
}

// RenderPath formats the section path the way search results display it,
// e.g. "# Setup > ## Install".
func RenderPath(path []string) string {
	parts := make([]string, len(path))
	for i, h := range path {
		parts[i] = strings.Repeat("#", i+1) + " " + h
	}
	return strings.Join(parts, " > ")
}

var headingLine = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// ParseHierarchy scans a markdown-like document line by line and returns its
// sections in document order. A heading at level L truncates the heading
// stack to L-1 entries and becomes entry L; the section path is the stack up
// to L. Content lines before the first heading fall into an implicit
// "untitled" level-1 section. A heading immediately followed by another
// heading produces no section; a heading followed only by blank lines
// produces a section with empty content.
func ParseHierarchy(text string) []Section {
	var sections []Section
	var stack []string
	var contentLines []string

	var current *Section
	flush := func() {
		if current != nil && len(contentLines) > 0 {
			current.Content = strings.TrimSpace(strings.Join(contentLines, "\n"))
			sections = append(sections, *current)
		}
		contentLines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if m := headingLine.FindStringSubmatch(line); m != nil {
			flush()
			level := len(m[1])
			heading := strings.TrimSpace(m[2])

			if len(stack) > level-1 {
				stack = stack[:level-1]
			}
			for len(stack) < level-1 {
				stack = append(stack, "")
			}
			stack = append(stack, heading)

			path := make([]string, level)
			copy(path, stack[:level])
			current = &Section{Path: path, Level: level}
			continue
		}

		if current == nil && strings.TrimSpace(line) != "" {
			stack = append(stack[:0], UntitledHeading)
			current = &Section{Path: []string{UntitledHeading}, Level: 1}
		}
		if current != nil {
			contentLines = append(contentLines, line)
		}
	}
	flush()

	return sections
}
