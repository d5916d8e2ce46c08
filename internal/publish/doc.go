// Package publish is the outbound boundary to the social platform. The
// pipeline hands it only finished, RenderSpec-validated media references; it
// runs the platform's container create / status poll / publish protocol and
// returns the platform post id. Status polling is bounded by a fixed maximum
// poll count rather than waiting forever.
package publish
