// Package prompt builds the instruction text sent to the language model.
//
// A prompt is a fixed inventory preamble, the caller's query and intent
// label interpolated verbatim, and the JSON shape the model must answer in.
// The query comes from the host's slot-filling layer and is not escaped.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nadzzz/shelfd/internal/message"
)

// Positions is the spatial vocabulary used inside a container.
var Positions = []string{
	"northwest", "north", "northeast",
	"west", "center", "east",
	"southwest", "south", "southeast",
}

// GenericInstruction is used for any intent without a dedicated schema.
const GenericInstruction = "Parse the query and respond appropriately."

var schemas = map[message.Category]string{
	message.FindItem: `Find the requested item and return:
{
  "action": "find",
  "item": "item description",
  "locations": [{"container": "drawer 3.5", "position": "northwest", "quantity": 25}],
  "spoken_text": "I found [item] in [location]"
}`,

	message.AddItem: `Parse the add request and return:
{
  "action": "add",
  "item": "item description",
  "container": "drawer 3.5",
  "position": "northwest",
  "quantity": 1,
  "spoken_text": "Added [item] to [location]"
}`,

	message.ListContainer: `List container contents:
{
  "action": "list",
  "container": "drawer 3.5",
  "contents": [{"position": "north", "item": "47k resistors", "quantity": 25}],
  "spoken_text": "Drawer 3.5 contains: [list of items]"
}`,

	message.FindSpace: `Find available space:
{
  "action": "find_space",
  "dimensions": {"width": 10, "depth": 5, "height": 3},
  "available_locations": [{"container": "shelf 2.1", "positions": ["south", "southeast"]}],
  "spoken_text": "I found space in [location]"
}`,
}

// Schema returns the response instruction for an intent. Unknown intents
// get GenericInstruction.
func Schema(intent string) string {
	if s, ok := schemas[message.Category(intent)]; ok {
		return s
	}
	return GenericInstruction
}

// Build returns the complete prompt for query under the given intent label.
func Build(query, intent string) string {
	var sb strings.Builder

	sb.WriteString("You are an electronics inventory assistant managing a shelf/drawer organization system.\n\n")
	sb.WriteString(`Containers use format: "drawer 3.5" (cabinet.drawer) or "shelf 1.3" (unit.shelf)` + "\n")
	sb.WriteString("Positions: " + strings.Join(Positions, ", ") + "\n")
	sb.WriteString(`Components: Parse "47k" as "47k resistor", "2.2uF" as "2.2 microfarad capacitor", etc.` + "\n\n")

	fmt.Fprintf(&sb, "Current query: \"%s\"\n", query)
	fmt.Fprintf(&sb, "Intent type: %s\n\n", intent)

	sb.WriteString("Respond with JSON including a 'spoken_text' field for voice response.\n\n\n")
	sb.WriteString(Schema(intent))

	return sb.String()
}
