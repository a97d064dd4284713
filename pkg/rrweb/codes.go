// Package rrweb defines the event vocabulary of exported session recordings:
// the numeric code tables of the rrweb capture format and the raw event
// record shape shared by all ingestion modes.
//
// The tables are append-only. Codes that are absent from a table are never
// fatal; lookups report whether the code was recognized so that callers can
// decide between skipping and failing.
package rrweb

import "strconv"

// Event type codes.
const (
	EventTypeLoad                = 1
	EventTypeFullSnapshot        = 2
	EventTypeIncrementalSnapshot = 3
	EventTypeMeta                = 4
	EventTypeCustom              = 5
	EventTypePlugin              = 6
)

// EventTypeUnknown is the name reported for missing or unmapped event types.
const EventTypeUnknown = "Unknown"

var eventTypeNames = map[int]string{
	EventTypeLoad:                "Load",
	EventTypeFullSnapshot:        "FullSnapshot",
	EventTypeIncrementalSnapshot: "IncrementalSnapshot",
	EventTypeMeta:                "Meta",
	EventTypeCustom:              "Custom",
	EventTypePlugin:              "Plugin",
}

// EventTypeName resolves an event type code to its name.
// Missing and unmapped codes resolve to "Unknown".
func EventTypeName(code int) string {
	name, ok := eventTypeNames[code]
	if !ok {
		return EventTypeUnknown
	}

	return name
}

// Incremental snapshot source codes.
const (
	SourceMutation          = 0
	SourceMouseMove         = 1
	SourceMouseInteraction  = 2
	SourceScroll            = 3
	SourceViewportResize    = 4
	SourceInput             = 5
	SourceTouchMove         = 6
	SourceMediaInteraction  = 7
	SourceStyleSheetRule    = 8
	SourceCanvasMutation    = 9
	SourceFont              = 10
	SourceLog               = 11
	SourceDrag              = 12
	SourceStyleDeclaration  = 13
	SourceSelection         = 14
	SourceAdoptedStyleSheet = 15
)

var incrementalSourceNames = map[int]string{
	SourceMutation:          "Mutation",
	SourceMouseMove:         "MouseMove",
	SourceMouseInteraction:  "MouseInteraction",
	SourceScroll:            "Scroll",
	SourceViewportResize:    "ViewportResize",
	SourceInput:             "Input",
	SourceTouchMove:         "TouchMove",
	SourceMediaInteraction:  "MediaInteraction",
	SourceStyleSheetRule:    "StyleSheetRule",
	SourceCanvasMutation:    "CanvasMutation",
	SourceFont:              "Font",
	SourceLog:               "Log",
	SourceDrag:              "Drag",
	SourceStyleDeclaration:  "StyleDeclaration",
	SourceSelection:         "Selection",
	SourceAdoptedStyleSheet: "AdoptedStyleSheet",
}

// IncrementalSourceName resolves an incremental snapshot source code.
// The second return value reports whether the code is in the table; callers
// are expected to log and skip events with unrecognized sources.
func IncrementalSourceName(code int) (string, bool) {
	name, ok := incrementalSourceNames[code]

	return name, ok
}

// NodeTypePlaceholder names node type code 0. The capture format uses 0 both
// as "no type" and, inconsistently, as the type of real mutation nodes, so it
// gets a named category instead of an error.
const NodeTypePlaceholder = "PLACEHOLDER"

var nodeTypeNames = map[int]string{
	0:  NodeTypePlaceholder,
	1:  "Element",
	2:  "Attribute",
	3:  "Text",
	4:  "CDATA",
	5:  "EntityReference",
	6:  "Entity",
	7:  "ProcessingInstruction",
	8:  "Comment",
	9:  "Document",
	10: "DocumentType",
	11: "DocumentFragment",
}

// NodeTypeName resolves a DOM node type code. Unmapped codes resolve to a
// synthetic "Unknown(<code>)" name with ok=false so that schema drift in the
// upstream format shows up in reports rather than aborting a run.
func NodeTypeName(code int) (string, bool) {
	name, ok := nodeTypeNames[code]
	if !ok {
		return "Unknown(" + strconv.Itoa(code) + ")", false
	}

	return name, true
}
