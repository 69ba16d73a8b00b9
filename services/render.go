package services

import (
	"bytes"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const wordsPerMinute = 200

var (
	staticTweetExpr = regexp.MustCompile(`<StaticTweet\sid="[0-9]+"\s/>`)
	digitsExpr      = regexp.MustCompile(`[0-9]+`)
)

// Rendered is a block body turned into safe HTML plus what the post page
// needs to know about it.
type Rendered struct {
	HTML           string
	TweetIDs       []string
	ReadingMinutes int
}

// Renderer converts block markup (markdown with embedded components) to
// sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w-]+$`)).OnElements("code")

	return &Renderer{md: md, policy: policy}
}

// Render converts one markup body. Unknown components are stripped by the
// sanitizer; tweet ids are extracted before that happens.
func (r *Renderer) Render(markup string) (Rendered, error) {
	out := Rendered{TweetIDs: ExtractTweetIDs(markup)}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markup), &buf); err != nil {
		return out, err
	}
	out.HTML = r.policy.Sanitize(buf.String())
	out.ReadingMinutes = readingMinutes(out.HTML)
	return out, nil
}

// ExtractTweetIDs returns the ids of every <StaticTweet id="..." /> in order.
func ExtractTweetIDs(content string) []string {
	ids := []string{}
	for _, tag := range staticTweetExpr.FindAllString(content, -1) {
		if id := digitsExpr.FindString(tag); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func readingMinutes(htmlBody string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return 0
	}
	words := len(strings.Fields(doc.Text()))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}
