// Package markdown renders user-written thread and reply content to safe HTML.
package markdown

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/circle-dev/circle/shared/logger"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a processor that only knows a small markdown subset: paragraphs,
// fenced code, code spans, emphasis, strikethrough, bare links and mentions.
// Line breaks are kept as typed.
func New() *TextProcessor {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify, Mentions),
	)
	return &TextProcessor{md: md, policy: newPolicy()}
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile("^mention$")).OnElements("span")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Render converts content to sanitized HTML. Empty content renders as empty.
func (tp *TextProcessor) Render(content string) template.HTML {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	rendered, err := tp.renderText(content)
	if err != nil {
		logger.Log.Warn("markdown render failed, falling back to escaped text", "component", "markdown", "error", err)
		rendered = template.HTMLEscapeString(content)
	}
	return template.HTML(tp.sanitizeText(rendered))
}

func (tp *TextProcessor) renderText(text string) (string, error) {
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func (tp *TextProcessor) sanitizeText(text string) string {
	return tp.policy.Sanitize(text)
}
