package scraper

import (
	"strings"

	"golang.org/x/net/html"
)

func extract(doc *html.Node) *ScrapedContent {
	c := &ScrapedContent{Features: []string{}, Testimonials: []string{}}

	if n := findFirst(doc, isTag("title")); n != nil {
		c.Title = textOf(n)
	}
	c.MetaDescription = metaDescription(doc)

	if n := findFirst(doc, isHero); n != nil {
		c.HeroText = truncateRunes(textOf(n), maxHeroRunes)
	}
	for _, n := range findInnermost(doc, isFeature, maxFeatures*2) {
		if len(c.Features) == maxFeatures {
			break
		}
		if t := truncateRunes(textOf(n), maxFeatureRunes); t != "" && !contains(c.Features, t) {
			c.Features = append(c.Features, t)
		}
	}
	if n := findFirst(doc, isPricing); n != nil {
		c.Pricing = truncateRunes(textOf(n), maxPricingRunes)
	}
	for _, n := range findInnermost(doc, isTestimonial, maxTestimonials*2) {
		if len(c.Testimonials) == maxTestimonials {
			break
		}
		if t := truncateRunes(textOf(n), maxTestimonyRunes); t != "" && !contains(c.Testimonials, t) {
			c.Testimonials = append(c.Testimonials, t)
		}
	}

	if body := findFirst(doc, isTag("body")); body != nil {
		c.BodyText = truncateRunes(textOf(body), maxBodyTextRunes)
	}
	return c
}

type matcher func(*html.Node) bool

func isTag(names ...string) matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, name := range names {
			if n.Data == name {
				return true
			}
		}
		return false
	}
}

func classOrIDContains(n *html.Node, needles ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	hay := strings.ToLower(attr(n, "class") + " " + attr(n, "id"))
	for _, needle := range needles {
		if strings.Contains(hay, needle) {
			return true
		}
	}
	return false
}

func isHero(n *html.Node) bool {
	return isTag("h1")(n) || classOrIDContains(n, "hero")
}

func isFeature(n *html.Node) bool {
	return isTag("h2", "h3")(n) || classOrIDContains(n, "feature")
}

func isPricing(n *html.Node) bool {
	return classOrIDContains(n, "pricing", "price")
}

func isTestimonial(n *html.Node) bool {
	return isTag("blockquote")(n) || classOrIDContains(n, "testimonial", "review")
}

func metaDescription(doc *html.Node) string {
	var fallback string
	for _, n := range findAll(doc, isTag("meta"), 0) {
		name := strings.ToLower(attr(n, "name"))
		prop := strings.ToLower(attr(n, "property"))
		content := strings.TrimSpace(attr(n, "content"))
		if name == "description" && content != "" {
			return content
		}
		if prop == "og:description" && fallback == "" {
			fallback = content
		}
	}
	return fallback
}

func findFirst(n *html.Node, match matcher) *html.Node {
	found := findAll(n, match, 1)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// findAll returns matching nodes in document order, without descending into matches.
// limit <= 0 means no limit.
func findAll(root *html.Node, match matcher, limit int) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if match(n) {
			out = append(out, n)
			return limit <= 0 || len(out) < limit
		}
		if skipped(n) {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
	return out
}

// findInnermost returns matching nodes that contain no other match, in document order.
// A wrapper such as <section id="features"> yields its headings rather than their joined text.
func findInnermost(root *html.Node, match matcher, limit int) []*html.Node {
	var out []*html.Node
	full := func() bool { return limit > 0 && len(out) >= limit }
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if skipped(n) {
			return
		}
		before := len(out)
		for c := n.FirstChild; c != nil && !full(); c = c.NextSibling {
			walk(c)
		}
		if len(out) == before && !full() && match(n) {
			out = append(out, n)
		}
	}
	walk(root)
	return out
}

func skipped(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "script", "style", "noscript", "template", "svg", "iframe":
		return true
	}
	return false
}

// textOf returns the visible text under n with whitespace collapsed.
func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		if skipped(n) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
