package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "target", "props", "types", "clear", "quit"}

// typeArgCommands are control commands whose argument is a type name.
var typeArgCommands = []string{"target", "props"}

// isWordBoundary reports whether r delimits words for completion: whitespace,
// YAML flow punctuation, quotes, and the parentheses and dot of an attached
// property path.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'{', '}', '[', ']', ',', ':',
		'"', '\'',
		'(', ')', '.':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte offsets in input. The
// word is empty when cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// ownerName returns the type name qualifying the word starting at
// wordStart, as in "(Grid.Ro" where the owner of "Ro" is "Grid". It returns
// "" when the word is not preceded by a dot.
func ownerName(input string, wordStart int) string {
	prefix := input[:wordStart]

	prefix, ok := strings.CutSuffix(prefix, ".")
	if !ok {
		return ""
	}

	word, _, _ := wordBounds(prefix, len(prefix))

	return word
}

// evalCandidates returns the names that may complete a word in eval mode.
// Words qualified by an owner complete against that type's properties, all
// others against the setter keys, the target's properties and type names.
func (s *Session) evalCandidates(owner string) []string {
	if owner != "" {
		typ := s.Type(owner)
		if typ == nil {
			return nil
		}

		var names []string
		for _, p := range s.Properties(typ) {
			names = append(names, p.Name)
		}

		return names
	}

	names := append([]string(nil), setterKeys...)
	for _, p := range s.Properties(nil) {
		names = append(names, p.Name)
	}

	return append(names, s.TypeNames()...)
}

// ctrlCandidates returns the names that may complete a word in control
// mode: command names for the first word and type names for the argument
// of a command taking one.
func (s *Session) ctrlCandidates(input string, wordStart int) []string {
	fields := strings.Fields(input[:wordStart])

	switch {
	case len(fields) == 0:
		return ctrlCommands
	case len(fields) == 1 && slices.Contains(typeArgCommands, fields[0]):
		return s.TypeNames()
	}

	return nil
}

// computeMatches ranks the candidates for the word at the cursor, best
// first. An empty word only lists candidates after an owner's dot so that
// the hint line stays visible otherwise.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	if m.mode == modeCtrl {
		candidates = m.session.ctrlCandidates(input, wordStart)
		if word == "" && !strings.HasSuffix(input[:wordStart], " ") {
			return nil, wordStart, wordEnd
		}
	} else {
		owner := ownerName(input, wordStart)
		candidates = m.session.evalCandidates(owner)

		if word == "" && owner == "" {
			return nil, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar renders matches on one line no wider than width,
// ending in an ellipsis when they do not all fit.
func renderCandidateBar(matches fuzzy.Matches, selected int, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && i < len(matches)-1 && used+w > room {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched runes highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
