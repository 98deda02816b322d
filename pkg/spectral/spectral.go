// Package spectral scores markdown-like text for structural density and
// extracts the link labels ("resonance threads") it references.
//
// Analysis is line based: every line is classified independently as a
// heading, a link line and/or a tag line, and the counts are folded into a
// single per-line score:
//
//	frequency = (2*headings + links + 0.5*tags) / lines
package spectral

import (
	"regexp"
	"slices"
	"strings"
)

const (
	headingWeight = 2.0
	linkWeight    = 1.0
	tagWeight     = 0.5
)

var (
	wikiLinkPattern   = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	inlineLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// Analysis is the structural profile of a block of text.
type Analysis struct {
	LineCount    int `json:"line_count"`
	HeadingCount int `json:"heading_count"`
	LinkCount    int `json:"link_count"`
	TagCount     int `json:"tag_count"`

	// SpectralFrequency is the weighted structural element count per line.
	SpectralFrequency float64 `json:"spectral_frequency"`

	// ResonanceThreads are the distinct wiki-link targets and inline-link
	// labels found in the text, sorted ascending.
	ResonanceThreads []string `json:"resonance_threads"`

	StructuralDepth   int     `json:"structural_depth"`
	ConnectionDensity float64 `json:"connection_density"`
}

// Analyze computes the structural profile of content. Empty content has
// zero lines and yields a zero Analysis with an empty thread set.
func Analyze(content string) Analysis {
	a := Analysis{
		ResonanceThreads: []string{},
	}

	if content == "" {
		return a
	}

	lines := strings.Split(content, "\n")
	a.LineCount = len(lines)

	seen := make(map[string]struct{})
	for _, line := range lines {
		if IsHeading(line) {
			a.HeadingCount++
		}
		if IsLinkLine(line) {
			a.LinkCount++
		}
		if IsTagLine(line) {
			a.TagCount++
		}

		for _, thread := range ExtractThreads(line) {
			seen[thread] = struct{}{}
		}
	}

	for thread := range seen {
		a.ResonanceThreads = append(a.ResonanceThreads, thread)
	}
	slices.Sort(a.ResonanceThreads)

	score := float64(a.HeadingCount)*headingWeight +
		float64(a.LinkCount)*linkWeight +
		float64(a.TagCount)*tagWeight

	a.SpectralFrequency = score / float64(a.LineCount)
	a.ConnectionDensity = float64(a.LinkCount) / float64(a.LineCount)
	a.StructuralDepth = a.HeadingCount

	return a
}

// IsHeading reports whether line is an ATX style heading: it starts with a
// run of '#' that is followed by whitespace or the end of the line.
// "#tag" is a hashtag, not a heading.
func IsHeading(line string) bool {
	marker := headingMarkerLen(line)
	if marker == 0 {
		return false
	}
	if marker == len(line) {
		return true
	}

	switch line[marker] {
	case ' ', '\t', '\r':
		return true
	}
	return false
}

// IsLinkLine reports whether line contains a wiki-link opener "[[" or an
// inline-link joint "](". A line carrying both still counts once.
func IsLinkLine(line string) bool {
	return strings.Contains(line, "[[") || strings.Contains(line, "](")
}

// IsTagLine reports whether line carries a '#' that is not part of its
// heading marker. "# Title #go" is both a heading and a tag line, "## Sub"
// is only a heading and "#tag here" is only a tag line.
func IsTagLine(line string) bool {
	start := 0
	if IsHeading(line) {
		start = headingMarkerLen(line)
	}
	return strings.IndexByte(line[start:], '#') >= 0
}

// ExtractThreads returns the wiki-link targets and inline-link labels of a
// single line in order of appearance. Duplicates are kept.
func ExtractThreads(line string) []string {
	var threads []string
	for _, m := range wikiLinkPattern.FindAllStringSubmatch(line, -1) {
		threads = append(threads, m[1])
	}
	for _, m := range inlineLinkPattern.FindAllStringSubmatch(line, -1) {
		threads = append(threads, m[1])
	}
	return threads
}

// headingMarkerLen returns the length of the leading run of '#' in line.
func headingMarkerLen(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n
}
