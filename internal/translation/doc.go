// Package translation implements the first workflow stage: turning an item's
// natural-language input into machine-readable work. Edit jobs get an
// operation list from the LLM translator; repurpose and compilation jobs get
// a content plan, generated from their source posts when none was supplied.
package translation
