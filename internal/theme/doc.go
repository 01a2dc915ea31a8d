// Package theme applies host-pushed custom stylesheets to the component's
// document.
//
// The host sends the complete list of theme stylesheet URLs whenever the
// active theme changes. Activation is a full replace: every previously
// injected custom stylesheet is removed, then one link per non-empty URL
// is appended in list order.
//
// Example Usage:
//
//	doc := theme.Blank()
//	theme.Activate(doc, []string{"https://host/themes/dark.css"})
//	html, _ := doc.HTML()
package theme
