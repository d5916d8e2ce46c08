package stage

import (
	"encoding/json"
	"strings"

	"instastudio/internal/commands"
	"instastudio/internal/plan"
	"instastudio/internal/repurpose"
	"instastudio/internal/services"
)

// ParseOperations decodes the operation list stored on an edit item.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParseOperations(raw string) ([]commands.Operation, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse operations",
			"Operation list missing; rerun translation", nil)
	}
	ops, err := commands.DecodeOperations([]byte(trimmed))
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse operations",
			"Operation list invalid; rerun translation", err)
	}
	return ops, nil
}

// ParsePlan decodes the content plan stored on a repurpose or compilation item.
func ParsePlan(raw string) (plan.ContentPlan, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return plan.ContentPlan{}, services.Wrap(
			services.ErrValidation, "stage", "parse plan",
			"Content plan missing; rerun planning", nil)
	}
	decoded, err := plan.Decode([]byte(trimmed))
	if err != nil {
		return plan.ContentPlan{}, services.Wrap(
			services.ErrValidation, "stage", "parse plan",
			"Content plan invalid; rerun planning", err)
	}
	return decoded, nil
}

// ParseSourcePosts decodes the source post list stored on an item.
func ParseSourcePosts(raw string) ([]repurpose.SourcePost, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	var posts []repurpose.SourcePost
	if err := json.Unmarshal([]byte(trimmed), &posts); err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse source posts",
			"Source post list invalid; re-queue the job", err)
	}
	return posts, nil
}
