package progressbar

import (
	"log"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Observer re-runs Sync whenever nodes that carry or feed a progress
// indicator are added to its document.
type Observer struct {
	mu    sync.Mutex
	doc   *goquery.Document
	scans int
}

// NewObserver syncs doc once and starts watching it
func NewObserver(doc *goquery.Document) *Observer {
	o := &Observer{doc: doc}
	o.scan()
	return o
}

// Notify reports nodes added to the document. It returns true when a
// re-scan was needed.
func (o *Observer) Notify(added ...*html.Node) bool {
	if !Relevant(added...) {
		return false
	}

	o.scan()
	return true
}

// Append adds nodes under parent, which must belong to the observed
// document, and notifies.
func (o *Observer) Append(parent *goquery.Selection, nodes ...*html.Node) bool {
	o.mu.Lock()
	if parent.Length() == 0 {
		o.mu.Unlock()
		log.Println("[progressbar] append target is empty")
		return false
	}
	parent.First().AppendNodes(nodes...)
	o.mu.Unlock()

	return o.Notify(nodes...)
}

// Scans returns how many full scans the observer has run
func (o *Observer) Scans() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scans
}

func (o *Observer) scan() {
	o.mu.Lock()
	defer o.mu.Unlock()

	Sync(o.doc)
	o.scans++
}

// Relevant reports whether any element among nodes, or any of their
// descendants, is progress related.
func Relevant(nodes ...*html.Node) bool {
	for _, n := range nodes {
		if n == nil || n.Type != html.ElementNode {
			continue
		}

		sel := goquery.NewDocumentFromNode(n).Selection
		if sel.Is(triggerSelector) || sel.Find(triggerSelector).Length() > 0 {
			return true
		}
	}

	return false
}
