package template

import (
	"os"
	"strings"

	"github.com/arthur-debert/punktf/pkg/errors"
)

// Variables are the two variable scopes a dotfile is rendered with.
// Dotfile variables shadow profile variables.
type Variables struct {
	Dotfile map[string]string
	Profile map[string]string
}

// Engine renders templates against variables and the environment.
type Engine struct {
	// LookupEnv resolves environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// New returns an engine reading the process environment.
func New() *Engine {
	return &Engine{LookupEnv: os.LookupEnv}
}

// Render parses and executes content in one step.
func (e *Engine) Render(name, content string, vars Variables) (string, error) {
	t, err := Parse(name, content)
	if err != nil {
		return "", err
	}
	return t.Execute(vars, e.LookupEnv)
}

// Execute renders the template. A nil lookupEnv means no environment.
func (t *Template) Execute(vars Variables, lookupEnv func(string) (string, bool)) (string, error) {
	s := &state{tmpl: t, vars: vars, env: lookupEnv}
	var b strings.Builder
	if err := s.walk(&b, t.nodes); err != nil {
		return "", err
	}
	return b.String(), nil
}

type state struct {
	tmpl *Template
	vars Variables
	env  func(string) (string, bool)
}

func (s *state) walk(b *strings.Builder, nodes []node) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			b.WriteString(string(n))
		case varNode:
			val, ok := s.lookup(n)
			if !ok {
				return errors.Newf(errors.ErrTemplateRender, "%s:%d: undefined variable %q", s.tmpl.name, n.line, n.name).
					WithDetail("template", s.tmpl.name).
					WithDetail("variable", n.name)
			}
			b.WriteString(val)
		case *ifNode:
			if err := s.walk(b, s.choose(n)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *state) choose(n *ifNode) []node {
	for _, br := range n.branches {
		if s.test(br.cond) {
			return br.body
		}
	}
	return n.elseBody
}

// test evaluates a condition. An undefined variable compares as empty.
func (s *state) test(c condition) bool {
	val, _ := s.lookup(c.v)
	switch c.op {
	case "==":
		return val == c.lit
	case "!=":
		return val != c.lit
	default:
		return val != ""
	}
}

func (s *state) lookup(v varNode) (string, bool) {
	switch v.scope {
	case scopeProfile:
		val, ok := s.vars.Profile[v.name]
		return val, ok
	case scopeEnv:
		return s.lookupEnv(v.name)
	}
	if val, ok := s.vars.Dotfile[v.name]; ok {
		return val, true
	}
	if val, ok := s.vars.Profile[v.name]; ok {
		return val, true
	}
	return s.lookupEnv(v.name)
}

func (s *state) lookupEnv(name string) (string, bool) {
	if s.env == nil {
		return "", false
	}
	return s.env(name)
}
