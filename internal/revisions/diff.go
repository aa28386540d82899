package revisions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/auditkit/revision-service/internal/domain"
)

const (
	fieldName         = "name"
	fieldDescription  = "description"
	fieldCollectionID = "collection_id"
	contentPrefix     = "content."
	extensionsPrefix  = "extensions."
)

var equateEmpty = cmpopts.EquateEmpty()

// DiffStates returns the fields that differ between two entity states.
func DiffStates(before, after domain.EntityState) domain.Diff {
	diff := domain.Diff{}
	if before.Name != after.Name {
		diff[fieldName] = domain.FieldChange{Before: before.Name, After: after.Name}
	}
	if b, a := derefString(before.Description), derefString(after.Description); b != a {
		diff[fieldDescription] = domain.FieldChange{Before: b, After: a}
	}
	if !cmp.Equal(before.CollectionID, after.CollectionID) {
		diff[fieldCollectionID] = domain.FieldChange{Before: derefInt(before.CollectionID), After: derefInt(after.CollectionID)}
	}
	diffMaps(diff, contentPrefix, before.Content, after.Content)
	diffMaps(diff, extensionsPrefix, before.Extensions, after.Extensions)
	return diff
}

func diffMaps(diff domain.Diff, prefix string, before, after map[string]any) {
	keys := map[string]struct{}{}
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	for k := range keys {
		b, a := before[k], after[k]
		if cmp.Equal(b, a, equateEmpty) {
			continue
		}
		diff[prefix+k] = domain.FieldChange{Before: b, After: a}
	}
}

// Describe renders a diff as the sentence stored on a revision, for example
// `renamed this from "Orders" to "Orders by month" and modified the query.`
func Describe(diff domain.Diff) string {
	if len(diff) == 0 {
		return ""
	}
	fields := Fields(diff)
	phrases := make([]string, 0, len(fields))
	for _, field := range fields {
		phrases = append(phrases, describeField(field, diff[field]))
	}
	return joinPhrases(phrases) + "."
}

func describeField(field string, change domain.FieldChange) string {
	switch field {
	case fieldName:
		return fmt.Sprintf("renamed this from %q to %q", change.Before, change.After)
	case fieldDescription:
		switch {
		case isBlank(change.Before):
			return "added a description"
		case isBlank(change.After):
			return "removed the description"
		default:
			return "changed the description"
		}
	case fieldCollectionID:
		return "moved this to another collection"
	}

	if key, ok := strings.CutPrefix(field, contentPrefix); ok {
		switch key {
		case "dataset_query":
			return "modified the query"
		case "cards":
			return "modified the cards"
		case "parameters":
			return "modified the filters"
		case "display":
			b, bok := change.Before.(string)
			a, aok := change.After.(string)
			if bok && aok && b != "" && a != "" {
				return fmt.Sprintf("changed the display from %s to %s", b, a)
			}
		}
		return "changed the " + humanize(key)
	}
	key := strings.TrimPrefix(field, extensionsPrefix)
	return "changed the " + humanize(key)
}

// Fields lists the changed fields in display order: name, description and
// collection first, then content keys, then extension keys, each group
// alphabetically.
func Fields(diff domain.Diff) []string {
	rank := func(f string) int {
		switch {
		case f == fieldName:
			return 0
		case f == fieldDescription:
			return 1
		case f == fieldCollectionID:
			return 2
		case strings.HasPrefix(f, contentPrefix):
			return 3
		default:
			return 4
		}
	}
	fields := make([]string, 0, len(diff))
	for f := range diff {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		ri, rj := rank(fields[i]), rank(fields[j])
		if ri != rj {
			return ri < rj
		}
		return fields[i] < fields[j]
	})
	return fields
}

func joinPhrases(phrases []string) string {
	switch len(phrases) {
	case 0:
		return ""
	case 1:
		return phrases[0]
	default:
		return strings.Join(phrases[:len(phrases)-1], ", ") + " and " + phrases[len(phrases)-1]
	}
}

// UnifiedDiff renders one field change as a unified diff. Non-string values
// are compared as indented JSON.
func UnifiedDiff(field string, change domain.FieldChange) (string, error) {
	before, err := renderValue(change.Before)
	if err != nil {
		return "", fmt.Errorf("render %s before: %w", field, err)
	}
	after, err := renderValue(change.After)
	if err != nil {
		return "", fmt.Errorf("render %s after: %w", field, err)
	}
	if before == after {
		return "", nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: field + " (before)",
		ToFile:   field + " (after)",
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", field, err)
	}
	return strings.TrimSpace(out), nil
}

func renderValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		if strings.HasSuffix(val, "\n") {
			return val, nil
		}
		return val + "\n", nil
	default:
		raw, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return "", err
		}
		return string(raw) + "\n", nil
	}
}

func humanize(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
