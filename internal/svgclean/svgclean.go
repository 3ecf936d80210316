// Package svgclean reduces model-generated markup to a single inert <svg> element that
// is safe to inline into an HTML page.
package svgclean

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

var ErrNoSVG = errors.New("no <svg> element found")

var forbiddenElements = map[string]bool{
	"script":        true,
	"foreignobject": true,
	"iframe":        true,
	"object":        true,
	"embed":         true,
	"handler":       true,
}

var linkAttributes = map[string]bool{
	"href":   true,
	"src":    true,
	"action": true,
}

// SMIL elements can write any of these values into the attribute they animate.
var animationElements = map[string]bool{
	"animate":          true,
	"set":              true,
	"animatemotion":    true,
	"animatetransform": true,
}

var animationValueAttributes = map[string]bool{
	"values": true,
	"to":     true,
	"from":   true,
	"by":     true,
}

// Sanitize keeps the first <svg> element of markup and strips executable content:
// script-like elements, on* event handlers and javascript: links. The result always
// declares the SVG namespace so it also stands alone as a file.
func Sanitize(markup string) (string, error) {
	if !strings.Contains(strings.ToLower(markup), "<svg") {
		return "", ErrNoSVG
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse svg markup: %w", err)
	}
	root := doc.Find("svg").First()
	if root.Length() == 0 {
		return "", ErrNoSVG
	}
	scrub(root)
	usesXLink := false
	root.Find("*").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(goquery.NodeName(s))
		if forbiddenElements[name] || (animationElements[name] && animatesLink(s)) {
			s.Remove()
			return
		}
		scrub(s)
		usesXLink = usesXLink || hasXLinkAttr(s)
	})
	if _, ok := root.Attr("xmlns"); !ok {
		root.SetAttr("xmlns", svgNamespace)
	}
	if (usesXLink || hasXLinkAttr(root)) && !declaresXLink(root) {
		root.SetAttr("xmlns:xlink", xlinkNamespace)
	}
	out, err := goquery.OuterHtml(root)
	if err != nil {
		return "", fmt.Errorf("render svg: %w", err)
	}
	return out, nil
}

// scrub removes event handler attributes and script URLs from one element.
func scrub(s *goquery.Selection) {
	if s.Length() == 0 {
		return
	}
	var drop []string
	for _, attr := range s.Nodes[0].Attr {
		key := strings.ToLower(attr.Key)
		switch {
		case strings.HasPrefix(key, "on"):
			drop = append(drop, attr.Key)
		case linkAttributes[key] && isScriptURL(attr.Val):
			drop = append(drop, attr.Key)
		case animationValueAttributes[key] && containsScriptURL(attr.Val):
			drop = append(drop, attr.Key)
		}
	}
	for _, key := range drop {
		s.RemoveAttr(key)
	}
}

// animatesLink reports whether an animation element targets a link attribute.
func animatesLink(s *goquery.Selection) bool {
	target, _ := s.Attr("attributeName")
	if target == "" {
		target, _ = s.Attr("attributename")
	}
	target = strings.ToLower(strings.TrimSpace(target))
	return linkAttributes[target] || linkAttributes[strings.TrimPrefix(target, "xlink:")]
}

func hasXLinkAttr(s *goquery.Selection) bool {
	for _, attr := range s.Nodes[0].Attr {
		if attr.Namespace == "xlink" || strings.HasPrefix(strings.ToLower(attr.Key), "xlink:") {
			return true
		}
	}
	return false
}

func declaresXLink(s *goquery.Selection) bool {
	for _, attr := range s.Nodes[0].Attr {
		if (attr.Namespace == "xmlns" && attr.Key == "xlink") || strings.EqualFold(attr.Key, "xmlns:xlink") {
			return true
		}
	}
	return false
}

// containsScriptURL checks every entry of a semicolon separated SMIL value list.
func containsScriptURL(v string) bool {
	for _, part := range strings.Split(v, ";") {
		if isScriptURL(part) {
			return true
		}
	}
	return false
}

func isScriptURL(v string) bool {
	v = strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, v)
	v = strings.ToLower(v)
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") ||
		strings.HasPrefix(v, "data:text/html")
}
