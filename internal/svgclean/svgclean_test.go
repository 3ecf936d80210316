package svgclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKeepsDrawing(t *testing.T) {
	in := `<svg viewBox="0 0 200 100" width="200"><line x1="0" y1="0" x2="100" y2="0" stroke="black" stroke-width="2"></line><text x="10" y="20" font-family="sans-serif">单位 4</text></svg>`
	out, err := Sanitize(in)
	require.NoError(t, err)
	assert.Contains(t, out, `viewBox="0 0 200 100"`)
	assert.Contains(t, out, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, out, `stroke-width="2"`)
	assert.Contains(t, out, "单位 4")
	assert.Contains(t, out, "<line")
}

func TestSanitizeStripsScripts(t *testing.T) {
	in := `<svg xmlns="http://www.w3.org/2000/svg" onload="alert(1)">
<script>alert(2)</script>
<foreignObject width="10" height="10"><div>html</div></foreignObject>
<a href=" JaVaScRiPt:alert(3)"><rect width="5" height="5" onclick="alert(4)" fill="white"></rect></a>
<a href="https://example.com/ref"><circle r="3"></circle></a>
</svg>`
	out, err := Sanitize(in)
	require.NoError(t, err)
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "foreignObject")
	assert.NotContains(t, out, "html</div>")
	assert.Contains(t, out, `fill="white"`)
	assert.Contains(t, out, `href="https://example.com/ref"`)
}

func TestSanitizeStripsAnimatedLinks(t *testing.T) {
	cases := map[string]string{
		"animate values": `<svg><a><animate attributeName="href" values="#a;javascript:alert(1)"/><text>x</text></a></svg>`,
		"set to":         `<svg><a><set attributeName="href" to="javascript:alert(1)"/><text>x</text></a></svg>`,
		"xlink target":   `<svg><a><set attributeName="xlink:href" to="#safe"/><text>x</text></a></svg>`,
		"from on other":  `<svg><a><animate attributeName="fill" from=" javascript:alert(1)" to="red"/><text>x</text></a></svg>`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := Sanitize(in)
			require.NoError(t, err)
			assert.NotContains(t, out, "javascript")
			assert.NotContains(t, out, `attributeName="href"`)
			assert.NotContains(t, out, `attributeName="xlink:href"`)
			assert.Contains(t, out, "<text>x</text>")
		})
	}
}

func TestSanitizeKeepsHarmlessAnimation(t *testing.T) {
	out, err := Sanitize(`<svg><circle r="2"><animate attributeName="r" values="2;4;2" dur="1s"></animate></circle></svg>`)
	require.NoError(t, err)
	assert.Contains(t, out, `values="2;4;2"`)
}

func TestSanitizeDeclaresXLinkNamespace(t *testing.T) {
	out, err := Sanitize(`<svg><defs><path id="p" d="M0 0L1 1"/></defs><use xlink:href="#p"/></svg>`)
	require.NoError(t, err)
	assert.Contains(t, out, `xlink:href="#p"`)
	assert.Contains(t, out, `xmlns:xlink="http://www.w3.org/1999/xlink"`)

	out, err = Sanitize(`<svg xmlns:xlink="http://www.w3.org/1999/xlink"><use xlink:href="#p"/></svg>`)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "xmlns:xlink"))

	out, err = Sanitize(`<svg><rect width="1" height="1"/></svg>`)
	require.NoError(t, err)
	assert.NotContains(t, out, "xlink")
}

func TestSanitizeDropsSurroundingMarkup(t *testing.T) {
	in := `<?xml version="1.0"?><p>Here is the diagram</p><svg viewBox="0 0 1 1"><rect width="1" height="1"></rect></svg><svg id="second"></svg>`
	out, err := Sanitize(in)
	require.NoError(t, err)
	assert.NotContains(t, out, "Here is the diagram")
	assert.NotContains(t, out, "second")
	assert.Regexp(t, `^<svg `, out)
	assert.Regexp(t, `</svg>$`, out)
}

func TestSanitizeRequiresSVG(t *testing.T) {
	_, err := Sanitize("<div>no drawing</div>")
	assert.ErrorIs(t, err, ErrNoSVG)

	_, err = Sanitize("")
	assert.ErrorIs(t, err, ErrNoSVG)
}

func TestIsScriptURL(t *testing.T) {
	assert.True(t, isScriptURL("javascript:void(0)"))
	assert.True(t, isScriptURL("java\tscript:x"))
	assert.True(t, isScriptURL("data:text/html;base64,xx"))
	assert.False(t, isScriptURL("#marker"))
	assert.False(t, isScriptURL("data:image/png;base64,xx"))
}
