// Package main hosts the eventsort CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, applies
// flag overrides, and hands a validated config to the sorting pipeline. Output
// is either a human summary rendered as tables or a JSON document for
// scripting. Keep this package thin: sorting behavior lives in internal/.
package main
