package mathext

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Goldmark priorities. Lower values run first; the block parser must
// precede the paragraph parser (1000).
const (
	blockParserPriority  = 701
	inlineParserPriority = 501
	rendererPriority     = 501
)

// Every math delimiter starts with one of these bytes.
var mathTriggers = []byte{'$', '\\'}

// Node kinds for math in the goldmark AST.
var (
	KindBlockNode  = ast.NewNodeKind("MathBlock")
	KindInlineNode = ast.NewNodeKind("MathInline")
)

// BlockNode is block-level math.
type BlockNode struct {
	ast.BaseBlock
	Token Token

	// Parse state. Lines holds the container-relative lines read so far
	// and buf their text; closer ends a span left open on its first line.
	closer   string
	buf      strings.Builder
	closed   bool
	declined bool
}

// Kind implements ast.Node.
func (n *BlockNode) Kind() ast.NodeKind { return KindBlockNode }

// IsRaw implements ast.Node. Math is never parsed for inline markdown.
func (n *BlockNode) IsRaw() bool { return true }

// Dump implements ast.Node.
func (n *BlockNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Kind": string(n.Token.Kind),
		"Text": n.Token.Text,
	}, nil)
}

// InlineNode is math inside a block of text.
type InlineNode struct {
	ast.BaseInline
	Token Token
}

// Kind implements ast.Node.
func (n *InlineNode) Kind() ast.NodeKind { return KindInlineNode }

// Dump implements ast.Node.
func (n *InlineNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Kind": string(n.Token.Kind),
		"Text": n.Token.Text,
	}, nil)
}

// Extend registers the set with a goldmark instance.
func (s *Set) Extend(m goldmark.Markdown) {
	if len(s.block) > 0 {
		m.Parser().AddOptions(parser.WithBlockParsers(
			util.Prioritized(&blockParser{set: s}, blockParserPriority),
		))
	}
	if len(s.inline) > 0 {
		m.Parser().AddOptions(parser.WithInlineParsers(
			util.Prioritized(&inlineParser{set: s}, inlineParserPriority),
		))
	}
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&nodeRenderer{set: s}, rendererPriority),
	))
}

// Compile-time interface checks.
var (
	_ goldmark.Extender     = (*Set)(nil)
	_ parser.BlockParser    = (*blockParser)(nil)
	_ parser.InlineParser   = (*inlineParser)(nil)
	_ renderer.NodeRenderer = (*nodeRenderer)(nil)
)

// closerKey memoizes closer lookups for one parse.
var closerKey = parser.NewContextKey()

type closerHit struct {
	from, at int
}

// nextCloser returns the offset of the first closer at or after from in
// source, or -1. Results are kept in pc so repeated lookups over a
// document stay linear.
func nextCloser(pc parser.Context, source []byte, closer string, from int) int {
	hits, _ := pc.Get(closerKey).(map[string]closerHit)
	if hits == nil {
		hits = make(map[string]closerHit, 3)
		pc.Set(closerKey, hits)
	}
	if h, ok := hits[closer]; ok && h.from <= from && (h.at < 0 || h.at >= from) {
		return h.at
	}

	at := -1
	if from < len(source) {
		if i := bytes.Index(source[from:], []byte(closer)); i >= 0 {
			at = from + i
		}
	}
	hits[closer] = closerHit{from: from, at: at}
	return at
}

// opensAt reports whether src begins with one of r's openers. Only the
// first bytes are offered to Start so long lines are not rescanned.
func opensAt(r Recognizer, src string) bool {
	const maxOpenerLen = 2
	return r.Start(src[:min(len(src), maxOpenerLen)]) == 0
}

// spanDelimiter returns the multi-line delimiter src opens for r, if any.
func spanDelimiter(r Recognizer, src string) (delimiter, bool) {
	if m, ok := r.(multiline); ok {
		return m.spanDelimiter(src)
	}
	return delimiter{}, false
}

// blockParser reads block math line by line through goldmark, so container
// prefixes such as "> " never reach the recognizers. A span closed on its
// first line is matched at once. Otherwise the node collects lines until
// one holds the closer; if the container ends first, the collected lines
// become a paragraph.
type blockParser struct {
	set *Set
}

func (p *blockParser) Trigger() []byte {
	return mathTriggers
}

func (p *blockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < segment.Padding || pos >= len(line) {
		return nil, parser.NoChildren
	}

	rest := line[pos:]
	src := util.BytesToReadOnlyString(rest)
	first := text.NewSegment(segment.Start+pos-segment.Padding, segment.Stop)

	if tok, ok := p.set.Tokenize(LevelBlock, src); ok {
		// Text after the closing delimiter turns the line into a
		// paragraph, where the inline recognizers take over.
		if !util.IsBlank(rest[len(tok.Raw):]) {
			return nil, parser.NoChildren
		}
		n := &BlockNode{Token: tok.clone(), closed: true}
		n.Lines().Append(first)
		reader.AdvanceToEOL()
		return n, parser.NoChildren
	}

	d, ok := p.openSpan(src)
	if !ok {
		return nil, parser.NoChildren
	}
	source := reader.Source()
	at := nextCloser(pc, source, d.close, segment.Stop)
	if at < 0 || !util.IsBlank(restOfLine(source, at+len(d.close))) {
		return nil, parser.NoChildren
	}

	n := &BlockNode{closer: d.close}
	n.Lines().Append(first)
	n.buf.Write(rest)
	reader.AdvanceToEOL()
	return n, parser.NoChildren
}

// openSpan returns the delimiter of the first block recognizer that src
// opens a multi-line span for.
func (p *blockParser) openSpan(src string) (delimiter, bool) {
	for _, ext := range p.set.block {
		if !opensAt(ext.Recognizer, src) {
			continue
		}
		if d, ok := spanDelimiter(ext.Recognizer, src); ok {
			return d, true
		}
	}
	return delimiter{}, false
}

func (p *blockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*BlockNode)
	if n.closed || n.declined {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}

	n.Lines().Append(segment)
	n.buf.Write(line)
	reader.AdvanceToEOL()
	if !bytes.Contains(line, []byte(n.closer)) {
		return parser.Continue | parser.NoChildren
	}

	src := n.buf.String()
	tok, ok := p.set.Tokenize(LevelBlock, src)
	if !ok {
		return parser.Continue | parser.NoChildren
	}
	if util.IsBlank([]byte(src[len(tok.Raw):])) {
		n.Token = tok.clone()
		n.closed = true
	} else {
		n.declined = true
	}
	n.buf.Reset()
	return parser.Close
}

// Close turns a span that never closed inside its container, or that
// declined, back into paragraph text.
func (p *blockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	n := node.(*BlockNode)
	n.buf.Reset()
	if n.closed {
		return
	}

	source := reader.Source()
	para := ast.NewParagraph()
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		para.Lines().Append(seg.TrimLeftSpace(source))
	}
	if l := para.Lines().Len(); l > 0 {
		last := para.Lines().At(l - 1)
		para.Lines().Set(l-1, last.TrimRightSpace(source))
	}
	para.SetBlankPreviousLines(n.HasBlankPreviousLines())
	if parent := n.Parent(); parent != nil {
		parent.ReplaceChild(parent, n, para)
	}
}

func (p *blockParser) CanInterruptParagraph() bool { return false }

func (p *blockParser) CanAcceptIndentedLine() bool { return false }

// restOfLine returns source from offset up to, excluding, the next newline.
func restOfLine(source []byte, offset int) []byte {
	if offset >= len(source) {
		return nil
	}
	rest := source[offset:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// inlineParser offers the text at a trigger byte to the inline recognizers.
// A recognizer first sees the current line. Spans that may cross lines,
// opened by $$ or \(, reach later lines only when their closer exists in
// the block, so each trigger costs at most one pass to that closer.
type inlineParser struct {
	set *Set
}

func (p *inlineParser) Trigger() []byte {
	return mathTriggers
}

func (p *inlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	current := util.BytesToReadOnlyString(line)
	source := block.Source()
	end := blockEnd(parent, source)

	for _, ext := range p.set.inline {
		r := ext.Recognizer
		if !opensAt(r, current) {
			continue
		}

		d, spans := spanDelimiter(r, current)
		if spans {
			at := nextCloser(pc, source, d.close, segment.Start+len(d.open))
			if at < 0 || at+len(d.close) > end {
				continue
			}
		}

		tok, ok := r.Tokenize(current)
		if !ok && spans {
			at := nextCloser(pc, source, d.close, segment.Stop)
			if at >= 0 && at+len(d.close) <= end {
				tok, ok = r.Tokenize(linesThrough(block, at+len(d.close)))
			}
		}
		if ok {
			block.Advance(len(tok.Raw))
			return &InlineNode{Token: tok.clone()}
		}
	}
	return nil
}

// blockEnd returns the source offset where the text of block ends.
func blockEnd(block ast.Node, source []byte) int {
	lines := block.Lines()
	if lines == nil || lines.Len() == 0 {
		return len(source)
	}
	return lines.At(lines.Len() - 1).Stop
}

// linesThrough concatenates the unread lines of block up to the one that
// ends at or after stop, without moving the reader.
func linesThrough(block text.Reader, stop int) string {
	line, pos := block.Position()
	defer block.SetPosition(line, pos)

	var b strings.Builder
	for {
		l, seg := block.PeekLine()
		if l == nil {
			break
		}
		b.Write(l)
		if seg.Stop >= stop {
			break
		}
		block.AdvanceLine()
	}
	return b.String()
}

type nodeRenderer struct {
	set *Set
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindBlockNode, r.renderBlock)
	reg.Register(KindInlineNode, r.renderInline)
}

func (r *nodeRenderer) renderBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*BlockNode)
	_, _ = w.WriteString(r.set.Render(n.Token).HTML())
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*InlineNode)
	_, _ = w.WriteString(r.set.Render(n.Token).HTML())
	return ast.WalkSkipChildren, nil
}
