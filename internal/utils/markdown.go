package utils

import (
	"bytes"
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Single newlines in a post are line breaks, as authors type them.
var mdParser = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithXHTML(),
	),
)

var (
	postPolicy    = textPolicy(true)
	commentPolicy = textPolicy(false)
)

// textPolicy allows the markup a blog entry needs and nothing else. Links
// are nofollow; headings and tables are flattened to text.
func textPolicy(images bool) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements("p", "br", "em", "strong", "del", "code", "pre", "blockquote", "ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.RequireNoReferrerOnLinks(true)
	if images {
		p.AllowAttrs("src").Matching(regexp.MustCompile(`^https?://`)).OnElements("img")
		p.AllowAttrs("alt").OnElements("img")
	}
	return p
}

func render(source string, policy *bluemonday.Policy) []byte {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return []byte(template.HTMLEscapeString(source))
	}
	return policy.SanitizeBytes(buf.Bytes())
}

// RenderMarkdown turns post text into sanitized HTML with lazy images and
// YouTube embeds.
func RenderMarkdown(source string) template.HTML {
	return EnhanceHTMLContent(string(render(source, postPolicy)))
}

// RenderComment is RenderMarkdown for comments: no images, no embeds.
func RenderComment(source string) template.HTML {
	return template.HTML(render(source, commentPolicy))
}
