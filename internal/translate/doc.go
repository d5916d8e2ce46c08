// Package translate converts natural-language editing commands into the
// structured operation lists the commands executor runs.
//
// The translator sends a fixed system prompt enumerating the available
// operations together with the user's instruction and clip context (duration,
// resolution, target content type, available audio tracks). The model's JSON
// response decodes into operations plus metadata. Responses that are not
// valid JSON or carry no operations fail with ErrTranslationFormat; operation
// kinds the executor does not know are passed through so the failure names
// the offending operation.
package translate
