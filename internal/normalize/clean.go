package normalize

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var invisible = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u00a0", " ",
)

// tagPattern matches an opening, closing or self-closing element tag. Text
// with a bare "<" is not markup.
var tagPattern = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(\s[^<>]*)?/?>`)

// blockTags get a trailing space before text extraction so adjacent
// paragraphs do not run together.
const blockTags = "p,div,li,tr,td,th,h1,h2,h3,h4,h5,h6,dt,dd,section,article"

// CleanText strips HTML markup and entity artifacts, removes zero-width
// characters and collapses all whitespace runs to a single space.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	if tagPattern.MatchString(s) {
		s = stripHTML(s)
	} else {
		s = html.UnescapeString(s)
	}
	s = invisible.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return html.UnescapeString(s)
	}
	doc.Find("script,style").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find(blockTags).AppendHtml(" ")
	return doc.Text()
}

// collapse folds whitespace without touching markup.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
