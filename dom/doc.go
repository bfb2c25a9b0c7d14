// Package dom is a small document model on top of nodestore.
//
// Payloads (elements, text, comments) live in a nodestore.Store[Node]; the
// Document keeps the parent/child links and supplies them to the collector
// through Children. Removing a child only detaches it; the next Collect frees
// whatever is no longer reachable from the document root.
//
//	doc, _ := dom.ParseHTML(strings.NewReader(`<p>hi <b>there</b></p>`))
//	for _, b := range doc.ElementsByTag(doc.Root(), "b") {
//	    parent, _ := doc.Parent(b)
//	    _ = doc.RemoveChild(parent, b)
//	}
//	report, _ := doc.Collect(ctx)
//
// Tree-shape violations are reported as *HierarchyError; stale handles as
// ErrNodeNotFound.
package dom
