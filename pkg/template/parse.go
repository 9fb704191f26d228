package template

import (
	"strings"

	"github.com/arthur-debert/punktf/pkg/errors"
)

type scope int

const (
	scopeAny scope = iota
	scopeProfile
	scopeEnv
)

type node interface{}

type textNode string

type varNode struct {
	name  string
	scope scope
	line  int
}

type condition struct {
	v   varNode
	op  string // "", "==" or "!="
	lit string
}

type branch struct {
	cond condition
	body []node
}

type ifNode struct {
	branches []branch
	elseBody []node
}

type directive struct {
	kind string
	cond *condition
	line int
}

// Template is a parsed template, ready to be executed many times.
type Template struct {
	name  string
	nodes []node
}

// Parse parses src. name is only used in error messages.
func Parse(name, src string) (*Template, error) {
	p := &parser{name: name, src: src}
	nodes, term, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if term != nil {
		return nil, p.errorf(term.line, "{{@%s}} without {{@if}}", term.kind)
	}
	return &Template{name: name, nodes: nodes}, nil
}

type parser struct {
	name string
	src  string
	pos  int
}

func (p *parser) lineAt(pos int) int {
	return strings.Count(p.src[:pos], "\n") + 1
}

func (p *parser) errorf(line int, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrTemplateParse, "%s:%d: "+format, append([]interface{}{p.name, line}, args...)...).
		WithDetail("template", p.name).
		WithDetail("line", line)
}

// parseList consumes nodes until the end of input or a directive that
// closes the enclosing block, which is returned unconsumed by the list.
func (p *parser) parseList() ([]node, *directive, error) {
	var nodes []node
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		i := strings.Index(rest, "{{")
		if i < 0 {
			nodes = append(nodes, textNode(rest))
			p.pos = len(p.src)
			break
		}
		if i > 0 {
			nodes = append(nodes, textNode(rest[:i]))
			p.pos += i
			rest = rest[i:]
		}

		start := p.pos
		switch {
		case strings.HasPrefix(rest, "{{{"):
			end := strings.Index(rest[3:], "}}}")
			if end < 0 {
				return nil, nil, p.errorf(p.lineAt(start), "unclosed {{{")
			}
			nodes = append(nodes, textNode(rest[3:3+end]))
			p.pos += 3 + end + 3

		case strings.HasPrefix(rest, "{{!--"):
			end := strings.Index(rest[5:], "--}}")
			if end < 0 {
				return nil, nil, p.errorf(p.lineAt(start), "unclosed comment")
			}
			p.pos += 5 + end + 4
			p.skipNewline()

		case strings.HasPrefix(rest, "{{@"):
			d, err := p.parseDirective()
			if err != nil {
				return nil, nil, err
			}
			if d.kind != "if" {
				return nodes, d, nil
			}
			n, err := p.parseIf(d)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, n)

		default:
			end := strings.Index(rest[2:], "}}")
			if end < 0 {
				return nil, nil, p.errorf(p.lineAt(start), "unclosed {{")
			}
			v, err := p.parseVar(rest[2:2+end], p.lineAt(start))
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, v)
			p.pos += 2 + end + 2
		}
	}
	return nodes, nil, nil
}

func (p *parser) parseIf(open *directive) (node, error) {
	n := &ifNode{}
	cur := branch{cond: *open.cond}
	inElse := false

	for {
		body, term, err := p.parseList()
		if err != nil {
			return nil, err
		}
		if inElse {
			n.elseBody = body
		} else {
			cur.body = body
			n.branches = append(n.branches, cur)
		}
		if term == nil {
			return nil, p.errorf(open.line, "{{@if}} is never closed with {{@fi}}")
		}

		switch term.kind {
		case "fi":
			return n, nil
		case "elif":
			if inElse {
				return nil, p.errorf(term.line, "{{@elif}} after {{@else}}")
			}
			cur = branch{cond: *term.cond}
		case "else":
			if inElse {
				return nil, p.errorf(term.line, "duplicate {{@else}}")
			}
			inElse = true
		}
	}
}

func (p *parser) parseDirective() (*directive, error) {
	start := p.pos
	line := p.lineAt(start)
	i := start + 3

	kwEnd := i
	for kwEnd < len(p.src) && p.src[kwEnd] >= 'a' && p.src[kwEnd] <= 'z' {
		kwEnd++
	}
	kind := p.src[i:kwEnd]

	// The directive ends at the first "}}" outside nested braces and quotes.
	depth := 0
	end := -1
	for j := kwEnd; j < len(p.src) && end < 0; {
		switch {
		case p.src[j] == '"':
			k := strings.IndexByte(p.src[j+1:], '"')
			if k < 0 {
				return nil, p.errorf(line, "unterminated string in {{@%s}}", kind)
			}
			j += k + 2
		case strings.HasPrefix(p.src[j:], "{{"):
			depth++
			j += 2
		case strings.HasPrefix(p.src[j:], "}}"):
			if depth == 0 {
				end = j
				break
			}
			depth--
			j += 2
		default:
			j++
		}
	}
	if end < 0 {
		return nil, p.errorf(line, "unclosed {{@%s", kind)
	}

	arg := strings.TrimSpace(p.src[kwEnd:end])
	p.pos = end + 2
	p.skipNewline()

	d := &directive{kind: kind, line: line}
	switch kind {
	case "if", "elif":
		cond, err := p.parseCondition(arg, line)
		if err != nil {
			return nil, err
		}
		d.cond = cond
	case "else", "fi":
		if arg != "" {
			return nil, p.errorf(line, "{{@%s}} takes no argument", kind)
		}
	default:
		return nil, p.errorf(line, "unknown directive {{@%s}}", kind)
	}
	return d, nil
}

func (p *parser) parseCondition(s string, line int) (*condition, error) {
	if !strings.HasPrefix(s, "{{") {
		return nil, p.errorf(line, "condition %q must start with a variable", s)
	}
	end := strings.Index(s, "}}")
	if end < 0 {
		return nil, p.errorf(line, "unclosed variable in condition %q", s)
	}
	v, err := p.parseVar(s[2:end], line)
	if err != nil {
		return nil, err
	}

	cond := &condition{v: v}
	rest := strings.TrimSpace(s[end+2:])
	if rest == "" {
		return cond, nil
	}

	switch {
	case strings.HasPrefix(rest, "=="):
		cond.op = "=="
	case strings.HasPrefix(rest, "!="):
		cond.op = "!="
	default:
		return nil, p.errorf(line, "unknown operator in condition %q", s)
	}
	lit := strings.TrimSpace(rest[2:])
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return nil, p.errorf(line, "condition %q must compare against a quoted string", s)
	}
	cond.lit = lit[1 : len(lit)-1]
	return cond, nil
}

func (p *parser) parseVar(raw string, line int) (varNode, error) {
	name := strings.TrimSpace(raw)
	v := varNode{scope: scopeAny, line: line}
	switch {
	case strings.HasPrefix(name, "#"):
		v.scope = scopeProfile
		name = name[1:]
	case strings.HasPrefix(name, "$"):
		v.scope = scopeEnv
		name = name[1:]
	}
	if name == "" || strings.ContainsAny(name, " \t\n{}\"") {
		return varNode{}, p.errorf(line, "invalid variable name %q", raw)
	}
	v.name = name
	return v, nil
}

func (p *parser) skipNewline() {
	switch {
	case strings.HasPrefix(p.src[p.pos:], "\r\n"):
		p.pos += 2
	case strings.HasPrefix(p.src[p.pos:], "\n"):
		p.pos++
	}
}
