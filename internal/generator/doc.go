// Package generator runs the documentation build: it loads the manifest once,
// renders every leaf page in flattened order with its neighbours, and emits
// the search payload after the last page is written.
//
// A build is a fixed sequence of stages (see stages.go). Each stage receives
// the build-scoped BuildState; pages are processed strictly one after another
// and each page's work receives its own pageContext value.
package generator
