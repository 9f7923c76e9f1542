package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxPasses = 3

// Sanitizer strips HTML from free-text input before it is persisted.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New returns a Sanitizer that removes every tag.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text returns s without markup. Entities are decoded so "a & b" and
// "a < b" are stored as typed. Decoding can surface escaped tags, so the
// input is stripped again until it stops changing. Input still changing after
// the last pass is left in the policy's escaped form.
func (s *Sanitizer) Text(in string) string {
	out := in
	settled := false
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			settled = true
			break
		}
		out = next
	}
	if !settled {
		out = s.policy.Sanitize(out)
	}
	return strings.TrimSpace(out)
}

// Ptr sanitizes an optional value. nil stays nil and a value that ends up empty
// becomes nil.
func (s *Sanitizer) Ptr(in *string) *string {
	if in == nil {
		return nil
	}
	out := s.Text(*in)
	if out == "" {
		return nil
	}
	return &out
}
