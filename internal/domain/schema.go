package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrSchemaValidation = errors.New("plan schema validation failed")

type shape struct {
	keys   []string
	list   bool
	fields map[string]shape
}

// planShape lists the keys every plan object must carry. Lists with a
// default (assumptions, dependencies, common_mistakes) are optional.
var planShape = shape{
	keys: []string{"summary", "timeline", "checklist", "documents", "risks", "sources", "generated_at"},
	fields: map[string]shape{
		"summary":  {keys: []string{"title", "key_advice", "confidence"}},
		"timeline": {list: true, keys: []string{"when", "actions", "priority"}},
		"checklist": {list: true, keys: []string{
			"id", "title", "steps", "priority", "estimated_time",
		}},
		"documents": {list: true, keys: []string{"category", "items"}, fields: map[string]shape{
			"items": {list: true, keys: []string{"name", "why", "priority"}},
		}},
		"risks":   {list: true, keys: []string{"id", "risk", "why_it_matters", "mitigation", "severity"}},
		"sources": {list: true, keys: []string{"title", "ref"}},
	},
}

// DecodePlan checks raw plan data against the Plan schema and returns the
// typed plan. Every failure wraps ErrSchemaValidation.
func DecodePlan(raw RawPlan) (Plan, error) {
	if raw == nil {
		return Plan{}, fmt.Errorf("%w: plan is empty", ErrSchemaValidation)
	}
	if err := checkShape(map[string]any(raw), planShape, ""); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	plan.normalize()
	if err := plan.Validate(); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return plan, nil
}

func checkShape(value any, s shape, path string) error {
	if s.list {
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array", path)
		}
		elem := s
		elem.list = false
		for i, item := range items {
			if err := checkShape(item, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	obj, ok := value.(map[string]any)
	if !ok {
		if path == "" {
			return errors.New("plan: expected object")
		}
		return fmt.Errorf("%s: expected object", path)
	}
	for _, key := range s.keys {
		child := joinPath(path, key)
		v, present := obj[key]
		if !present || v == nil {
			return fmt.Errorf("%s: missing required key", child)
		}
		if nested, ok := s.fields[key]; ok {
			if err := checkShape(v, nested, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
