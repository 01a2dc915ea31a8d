package theme

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CustomClass tags stylesheet links injected by Activate
const CustomClass = "custom-theme"

// ErrNoHead is returned when the document has no <head> to inject into
var ErrNoHead = errors.New("theme: document has no head element")

// StyleSheets is the stylesheet-set capability the bridge drives.
type StyleSheets interface {
	// RemoveCustom removes every custom stylesheet and returns how many
	// were removed.
	RemoveCustom() int
	// Inject appends one custom stylesheet link.
	Inject(url string) error
}

// Activate replaces the active custom stylesheets with urls. Empty
// entries are skipped. It returns the number of stylesheets injected.
func Activate(sheets StyleSheets, urls []string) (int, error) {
	sheets.RemoveCustom()

	injected := 0
	for _, url := range urls {
		if strings.TrimSpace(url) == "" {
			continue
		}
		if err := sheets.Inject(url); err != nil {
			return injected, fmt.Errorf("inject %s: %w", url, err)
		}
		injected++
	}
	return injected, nil
}

// Document is a StyleSheets implementation over a parsed HTML document.
// It is safe for concurrent use.
type Document struct {
	mu  sync.Mutex
	doc *goquery.Document
}

// NewDocument parses an HTML document.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Blank returns an empty document with a head and body.
func Blank() *Document {
	doc, err := NewDocument(strings.NewReader("<!DOCTYPE html><html><head></head><body></body></html>"))
	if err != nil {
		panic(err)
	}
	return doc
}

// RemoveCustom removes every link tagged with CustomClass.
func (d *Document) RemoveCustom() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	links := d.doc.Find("link." + CustomClass)
	n := links.Length()
	links.Remove()
	return n
}

// Inject appends a custom stylesheet link to the head.
func (d *Document) Inject(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	head := d.doc.Find("head").First()
	if head.Length() == 0 {
		return ErrNoHead
	}
	head.AppendNodes(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     "link",
		Attr: []html.Attribute{
			{Key: "href", Val: url},
			{Key: "type", Val: "text/css"},
			{Key: "rel", Val: "stylesheet"},
			{Key: "media", Val: "screen,print"},
			{Key: "class", Val: CustomClass},
		},
	})
	return nil
}

// Active returns the hrefs of the custom stylesheets in document order.
func (d *Document) Active() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var urls []string
	d.doc.Find("link." + CustomClass).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			urls = append(urls, href)
		}
	})
	return urls
}

// HTML renders the document.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Html()
}
