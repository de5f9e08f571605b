// Shelfd answers spoken questions about a parts inventory (drawers, shelves,
// bins) by running them through a locally hosted language model.
//
// Usage:
//
//	shelfd serve [--config /path/to/shelfd.yaml]
//	shelfd ask "47k resistor" --intent find_item
//	shelfd intent AddItem item_description="2.2uF capacitor" location="shelf 1.3"
//
//	@title						shelfd API
//	@version					1.0
//	@description				Inventory query mediator for a voice assistant. Free-text questions are answered by a local language model and always come back with text that can be spoken.
//	@BasePath					/
//	@schemes					http
//	@tag.name					query
//	@tag.description			Inventory questions
//	@tag.name					health
//	@tag.description			Service health
package main

import (
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
