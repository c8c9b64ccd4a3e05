// Package patch inserts fixed text blocks into documents at anchor points.
//
// A document is an opaque string. A Rule locates the first occurrence of its
// anchor, a literal substring or a regular expression, and splices the rule's
// insertion block immediately after (or before) the match. Nothing in this
// package touches the file system.
package patch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrAnchorNotFound reports that a rule's anchor has no match in the document.
var ErrAnchorNotFound = errors.New("anchor not found")

// Placement selects which side of the matched anchor receives the insertion.
type Placement string

const (
	After  Placement = "after"
	Before Placement = "before"
)

// Rule pairs an anchor with its insertion block. Exactly one of Anchor or
// Pattern must be set. Anchor is matched as a literal substring (newlines and
// all); Pattern is a regular expression. Only the first match is patched.
type Rule struct {
	Name    string
	Anchor  string
	Pattern string
	Insert  string
	Where   Placement
}

// Validate reports whether the rule is well formed, independent of any
// particular document.
func (r Rule) Validate() error {
	if r.Anchor == "" && r.Pattern == "" {
		return fmt.Errorf("rule %q: either anchor or pattern is required", r.Name)
	}
	if r.Anchor != "" && r.Pattern != "" {
		return fmt.Errorf("rule %q: anchor and pattern are mutually exclusive", r.Name)
	}
	if r.Pattern != "" {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("rule %q: %w", r.Name, err)
		}
	}
	if r.Insert == "" {
		return fmt.Errorf("rule %q: insert must not be empty", r.Name)
	}
	switch r.Where {
	case "", After, Before:
	default:
		return fmt.Errorf("rule %q: unknown placement %q", r.Name, r.Where)
	}
	return nil
}

// locate returns the [start, end) bounds of the rule's first match in doc.
func (r Rule) locate(doc string) (start, end int, err error) {
	if r.Anchor != "" {
		i := strings.Index(doc, r.Anchor)
		if i < 0 {
			return 0, 0, ErrAnchorNotFound
		}
		return i, i + len(r.Anchor), nil
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return 0, 0, fmt.Errorf("rule %q: %w", r.Name, err)
	}
	loc := re.FindStringIndex(doc)
	if loc == nil {
		return 0, 0, ErrAnchorNotFound
	}
	return loc[0], loc[1], nil
}

// Options control how Apply treats rules whose anchor has no match.
type Options struct {
	// Strict makes a missing anchor an error. The default records the rule as
	// not applied and leaves the document unchanged for that rule.
	Strict bool
}

// Outcome reports what a single rule did to the document.
type Outcome struct {
	Rule    string
	Applied bool
	Offset  int // byte offset of the inserted block, -1 when not applied
}

// Apply runs each rule in order against the output of the previous one and
// returns the patched document alongside per-rule outcomes. Malformed rules
// fail regardless of Options.Strict.
//
// Apply is not idempotent: re-running it on its own output re-inserts every
// block whose anchor still matches.
func Apply(doc string, rules []Rule, opts Options) (string, []Outcome, error) {
	outcomes := make([]Outcome, 0, len(rules))
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return "", outcomes, err
		}
		start, end, err := rule.locate(doc)
		if err != nil {
			if !errors.Is(err, ErrAnchorNotFound) {
				return "", outcomes, err
			}
			if opts.Strict {
				return "", outcomes, fmt.Errorf("rule %q: %w", rule.Name, err)
			}
			outcomes = append(outcomes, Outcome{Rule: rule.Name, Offset: -1})
			continue
		}
		at := end
		if rule.Where == Before {
			at = start
		}
		doc = doc[:at] + rule.Insert + doc[at:]
		outcomes = append(outcomes, Outcome{Rule: rule.Name, Applied: true, Offset: at})
	}
	return doc, outcomes, nil
}
