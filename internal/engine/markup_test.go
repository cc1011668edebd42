package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDescription(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "hello", "hello"},
		{"Bold", "a **b** c", "a <strong>b</strong> c"},
		{"Italic", "a *b* c", "a <em>b</em> c"},
		{"Both", "**x** and *y*", "<strong>x</strong> and <em>y</em>"},
		{"Newlines", "line1\nline2\r\nline3", "line1<br>line2<br>line3"},
		{"Escapes HTML", "<script>**x**</script>", "&lt;script&gt;<strong>x</strong>&lt;/script&gt;"},
		{"Empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RenderDescription(tc.in))
		})
	}
}
