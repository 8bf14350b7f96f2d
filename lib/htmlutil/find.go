package htmlutil

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AttrFilter matches a single attribute. Exactly one of Value or Pattern is
// used, Pattern wins when set.
type AttrFilter struct {
	Key     string
	Value   string
	Pattern *regexp.Regexp
}

func (f AttrFilter) matchValue(value string) bool {
	if f.Pattern != nil {
		return f.Pattern.MatchString(value)
	}
	return value == f.Value
}

func (f AttrFilter) match(s *goquery.Selection) bool {
	value, exists := s.Attr(f.Key)
	if !exists {
		return false
	}
	if f.matchValue(value) {
		return true
	}
	// class is a token list, any single class may satisfy the filter.
	if f.Key == "class" {
		for _, class := range strings.Fields(value) {
			if f.matchValue(class) {
				return true
			}
		}
	}
	return false
}

func (f AttrFilter) String() string {
	if f.Pattern != nil {
		return fmt.Sprintf("%s~=/%s/", f.Key, f.Pattern.String())
	}
	return fmt.Sprintf("%s=%q", f.Key, f.Value)
}

// Query describes an element by tag name and attribute filters.
type Query struct {
	Tag   string
	Attrs []AttrFilter
}

func Tag(name string) Query {
	return Query{Tag: name}
}

// Attr returns a copy of q that also requires key to equal value.
func (q Query) Attr(key, value string) Query {
	attrs := append([]AttrFilter{}, q.Attrs...)
	q.Attrs = append(attrs, AttrFilter{Key: key, Value: value})
	return q
}

// AttrPattern returns a copy of q that also requires key to match pattern.
func (q Query) AttrPattern(key string, pattern *regexp.Regexp) Query {
	attrs := append([]AttrFilter{}, q.Attrs...)
	q.Attrs = append(attrs, AttrFilter{Key: key, Pattern: pattern})
	return q
}

func (q Query) String() string {
	if len(q.Attrs) == 0 {
		return q.Tag
	}
	filters := make([]string, len(q.Attrs))
	for i, f := range q.Attrs {
		filters[i] = f.String()
	}
	return fmt.Sprintf("%s[%s]", q.Tag, strings.Join(filters, " "))
}

func (q Query) matches(s *goquery.Selection) bool {
	for _, f := range q.Attrs {
		if !f.match(s) {
			return false
		}
	}
	return true
}

// ParsingError means an expected element is missing, the page no longer has
// the structure it is parsed for.
type ParsingError struct {
	Query Query
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("tag not found: %s", e.Query)
}

// FindAll returns every descendant of sel matching q in document order.
func FindAll(sel *goquery.Selection, q Query) *goquery.Selection {
	return sel.Find(q.Tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return q.matches(s)
	})
}

// Find returns the first descendant of sel matching q or a *ParsingError.
func Find(sel *goquery.Selection, q Query) (*goquery.Selection, error) {
	found := FindAll(sel, q).First()
	if found.Length() == 0 {
		return nil, &ParsingError{Query: q}
	}
	return found, nil
}
