package markdown

import (
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Mention is an inline @username reference.
type Mention struct {
	ast.BaseInline
	Name []byte
}

func (n *Mention) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": string(n.Name)}, nil)
}

var KindMention = ast.NewNodeKind("Mention")

func (n *Mention) Kind() ast.NodeKind {
	return KindMention
}

// mentionParser parses @name where name is letters, digits, '_' or '.'.
type mentionParser struct{}

func NewMentionParser() parser.InlineParser {
	return &mentionParser{}
}

func (p *mentionParser) Trigger() []byte {
	return []byte{'@'}
}

func (p *mentionParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	// "ann@example.com" is not a mention
	if prev := block.PrecendingCharacter(); isNameRune(prev) {
		return nil
	}

	line, _ := block.PeekLine()
	i := 1
	for i < len(line) && isNameRune(rune(line[i])) {
		i++
	}
	// trailing dot ends the sentence, not the name
	for i > 1 && line[i-1] == '.' {
		i--
	}
	if i == 1 {
		return nil
	}

	node := &Mention{Name: append([]byte(nil), line[1:i]...)}
	block.Advance(i)
	return node
}

func isNameRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.')
}

type MentionHTMLRenderer struct {
	html.Config
}

func NewMentionHTMLRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &MentionHTMLRenderer{
		Config: html.NewConfig(),
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *MentionHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMention, r.renderMention)
}

func (r *MentionHTMLRenderer) renderMention(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		n := node.(*Mention)
		_, _ = w.WriteString(`<span class="mention">@`)
		_, _ = w.Write(util.EscapeHTML(n.Name))
		_, _ = w.WriteString("</span>")
	}
	return ast.WalkSkipChildren, nil
}

type mentions struct{}

// Mentions is a goldmark extension highlighting @username references.
var Mentions goldmark.Extender = &mentions{}

func (e *mentions) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewMentionParser(), 600),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewMentionHTMLRenderer(), 500),
	))
}
