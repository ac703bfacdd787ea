package progressbar

import (
	"bytes"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Middleware applies Sync to HTML responses. Partial responses for
// htmx requests are only rewritten when they contain progress nodes.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &bufferedWriter{header: w.Header(), status: http.StatusOK}
		next.ServeHTTP(rec, r)

		body := rec.buf.Bytes()
		if isHTML(w.Header().Get("Content-Type")) && rec.status == http.StatusOK {
			body = rewrite(body, r.Header.Get("HX-Request") != "")
		}

		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(rec.status)
		_, _ = w.Write(body)
	})
}

func rewrite(body []byte, fragment bool) []byte {
	if fragment {
		return rewriteFragment(body)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Printf("[progressbar] failed to parse page: %v", err)
		return body
	}

	if Sync(doc) == 0 {
		return body
	}

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		log.Printf("[progressbar] failed to render page: %v", err)
		return body
	}

	return []byte(out)
}

func rewriteFragment(body []byte) []byte {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	doc := goquery.NewDocumentFromNode(root)

	nodes, err := html.ParseFragment(bytes.NewReader(body), root)
	if err != nil {
		log.Printf("[progressbar] failed to parse fragment: %v", err)
		return body
	}

	obs := NewObserver(doc)
	if !obs.Append(doc.Selection, nodes...) {
		return body
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			log.Printf("[progressbar] failed to render fragment: %v", err)
			return body
		}
	}

	return buf.Bytes()
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/html")
}

type bufferedWriter struct {
	header http.Header
	status int
	wrote  bool
	buf    bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(status int) {
	if b.wrote {
		return
	}
	b.status = status
	b.wrote = true
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	b.wrote = true
	return b.buf.Write(p)
}
