// Package jotform extracts field metadata from the public HTML of a JotForm
// form and produces a sanitized copy of that HTML.
package jotform

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Field struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

type Form struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// ParseForm reads JotForm HTML. Fields are keyed by the numeric question id
// found in input_<qid> element ids, in document order.
func ParseForm(r io.Reader) (*Form, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse form html: %w", err)
	}

	formNode := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Form })
	if formNode == nil {
		return nil, fmt.Errorf("no <form> element found")
	}

	form := &Form{}
	if id := attr(formNode, "id"); id != "" {
		form.ID = id
	}
	if input := findFirst(formNode, func(n *html.Node) bool {
		return n.DataAtom == atom.Input && attr(n, "name") == "formID"
	}); input != nil {
		form.ID = attr(input, "value")
	}
	form.Title = formTitle(doc, formNode)

	labels := map[string]string{}
	walk(formNode, func(n *html.Node) {
		if n.DataAtom == atom.Label {
			if qid, ok := strings.CutPrefix(attr(n, "id"), "label_"); ok && isDigits(qid) {
				labels[qid] = labelText(n)
			}
		}
	})

	index := map[string]int{}
	walk(formNode, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Input, atom.Select, atom.Textarea:
		default:
			return
		}
		inputType := strings.ToLower(attr(n, "type"))
		if n.DataAtom == atom.Input && skippedInputTypes[inputType] {
			return
		}

		qid := questionID(attr(n, "id"))
		if qid == "" {
			return
		}

		i, seen := index[qid]
		if !seen {
			form.Fields = append(form.Fields, Field{
				ID:    qid,
				Name:  fieldName(attr(n, "name")),
				Type:  fieldType(n, inputType),
				Label: labels[qid],
			})
			i = len(form.Fields) - 1
			index[qid] = i
		}
		f := &form.Fields[i]

		if isRequired(n) {
			f.Required = true
		}
		switch {
		case inputType == "radio" || inputType == "checkbox":
			if v := attr(n, "value"); v != "" {
				f.Options = append(f.Options, v)
			}
		case n.DataAtom == atom.Select:
			walk(n, func(o *html.Node) {
				if o.DataAtom == atom.Option {
					if v := attr(o, "value"); v != "" {
						f.Options = append(f.Options, v)
					}
				}
			})
		}
	})

	return form, nil
}

var skippedInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

// questionID returns "3" for "input_3" and "input_3_1".
func questionID(id string) string {
	rest, ok := strings.CutPrefix(id, "input_")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(rest, '_'); i >= 0 {
		rest = rest[:i]
	}
	if !isDigits(rest) {
		return ""
	}
	return rest
}

// fieldName strips "[first]" and "[]" suffixes of composite inputs.
func fieldName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func fieldType(n *html.Node, inputType string) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Li && hasClass(p, "form-line") {
			if t := attr(p, "data-type"); t != "" {
				return strings.TrimPrefix(t, "control_")
			}
			break
		}
	}
	if n.DataAtom == atom.Input {
		if inputType == "" {
			return "text"
		}
		return inputType
	}
	return n.Data
}

func isRequired(n *html.Node) bool {
	if _, ok := attrOK(n, "required"); ok {
		return true
	}
	if attr(n, "aria-required") == "true" {
		return true
	}
	return strings.Contains(attr(n, "class"), "validate[required")
}

func formTitle(doc, formNode *html.Node) string {
	if h := findFirst(formNode, func(n *html.Node) bool {
		return (n.DataAtom == atom.H1 || n.DataAtom == atom.H2) && hasClass(n, "form-header")
	}); h != nil {
		return text(h)
	}
	if t := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Title }); t != nil {
		return text(t)
	}
	return ""
}

// labelText is the label without the required-marker span.
func labelText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.ElementNode && hasClass(c, "form-required") {
			return
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			collect(ch)
		}
	}
	collect(n)
	return collapseSpace(b.String())
}

// brandingClasses mark the JotForm footer and badges.
var brandingClasses = []string{"formFooter", "jf-branding", "jfBranding", "brandingFooter", "powered-by-jotform"}

// StripBranding removes scripts and JotForm branding from the HTML and renders the rest.
func StripBranding(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse form html: %w", err)
	}

	var doomed []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch {
		case n.DataAtom == atom.Script, n.DataAtom == atom.Noscript:
			doomed = append(doomed, n)
		case n.DataAtom == atom.A && strings.Contains(attr(n, "href"), "jotform.com") && !insideForm(n):
			doomed = append(doomed, n)
		default:
			for _, c := range brandingClasses {
				if hasClass(n, c) {
					doomed = append(doomed, n)
					break
				}
			}
		}
	})
	for _, n := range doomed {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func insideForm(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Form {
			return true
		}
	}
	return false
}

// helpers

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return collapseSpace(b.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
