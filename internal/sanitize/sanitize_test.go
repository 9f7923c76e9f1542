package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text untouched", in: "replace the pump", want: "replace the pump"},
		{name: "tags stripped", in: "<b>broken</b> screen", want: "broken screen"},
		{name: "script removed", in: "ok<script>alert(1)</script>", want: "ok"},
		{name: "ampersand kept", in: "oil & filter", want: "oil & filter"},
		{name: "bare angle brackets kept", in: "a < b", want: "a < b"},
		{name: "comparison kept", in: "pressure > 3 & temp < 90", want: "pressure > 3 & temp < 90"},
		{name: "escaped tag stripped", in: "&lt;i&gt;x&lt;/i&gt;", want: "x"},
		{name: "whitespace trimmed", in: "  note  ", want: "note"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Text(tt.in))
		})
	}
}

func TestPtr(t *testing.T) {
	s := New()

	assert.Nil(t, s.Ptr(nil))

	blank := "<p></p>"
	assert.Nil(t, s.Ptr(&blank))

	ref := " <em>REF-1</em> "
	got := s.Ptr(&ref)
	if assert.NotNil(t, got) {
		assert.Equal(t, "REF-1", *got)
	}
}

func TestTextDeeplyEncodedMarkup(t *testing.T) {
	s := New()

	got := s.Text("&amp;amp;amp;lt;script&amp;amp;amp;gt;alert(1)")
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
}
