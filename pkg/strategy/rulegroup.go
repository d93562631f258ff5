package strategy

import "fmt"

// GroupOperator combines the conditions of a rule group.
type GroupOperator string

const (
	OperatorAND GroupOperator = "AND"
	OperatorOR  GroupOperator = "OR"
)

// IsValid reports whether the operator is AND or OR.
func (op GroupOperator) IsValid() bool {
	return op == OperatorAND || op == OperatorOR
}

// ConditionField names a single mutable field of a condition for partial
// updates.
type ConditionField string

const (
	FieldIndicator  ConditionField = "indicator"
	FieldComparator ConditionField = "comparator"
	FieldValue      ConditionField = "value"
	FieldParam      ConditionField = "param"
)

// RuleGroup is an ordered list of conditions combined under a single
// boolean operator. Order is insertion order; it does not affect the
// AND/OR result but is preserved for display and deterministic diffing.
type RuleGroup struct {
	Operator   GroupOperator `json:"operator"`
	Conditions []Condition   `json:"conditions"`
}

// NewRuleGroup creates an empty group combined under AND.
func NewRuleGroup() RuleGroup {
	return RuleGroup{Operator: OperatorAND}
}

// AddCondition appends a new condition with catalog-agnostic defaults and
// returns it. The returned condition's ID addresses it in later updates.
func (g *RuleGroup) AddCondition() Condition {
	c := NewDefaultCondition()
	g.Conditions = append(g.Conditions, c)
	return c
}

// RemoveCondition removes the condition with the given id. Removing an
// unknown id is a no-op, matching idempotent-delete semantics for
// optimistic locally-buffered edits. Returns whether a condition was
// removed.
func (g *RuleGroup) RemoveCondition(id string) bool {
	for i, c := range g.Conditions {
		if c.ID == id {
			g.Conditions = append(g.Conditions[:i], g.Conditions[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateCondition applies a partial, single-field update to the condition
// with the given id. An unknown id or a value of the wrong type is a
// no-op; last write wins. Returns whether an update was applied.
//
// For FieldParam, value must be a map[string]float64 carrying the
// parameter entries to set; existing entries not named are kept.
func (g *RuleGroup) UpdateCondition(id string, field ConditionField, value interface{}) bool {
	for i := range g.Conditions {
		if g.Conditions[i].ID != id {
			continue
		}

		c := &g.Conditions[i]
		switch field {
		case FieldIndicator:
			if v, ok := value.(string); ok {
				c.Indicator = v
				return true
			}
		case FieldComparator:
			switch v := value.(type) {
			case Comparator:
				c.Comparator = v
				return true
			case string:
				c.Comparator = Comparator(v)
				return true
			}
		case FieldValue:
			if v, ok := value.(float64); ok {
				c.Value = v
				return true
			}
		case FieldParam:
			if params, ok := value.(map[string]float64); ok {
				if c.Params == nil {
					c.Params = make(map[string]float64, len(params))
				}
				for k, v := range params {
					c.Params[k] = v
				}
				return true
			}
		}
		return false
	}
	return false
}

// SetOperator changes the combination semantics for the whole group.
// Invalid operators are rejected as a no-op; submission validation
// reports them.
func (g *RuleGroup) SetOperator(op GroupOperator) bool {
	if !op.IsValid() {
		return false
	}
	g.Operator = op
	return true
}

// Len returns the number of conditions in the group.
func (g *RuleGroup) Len() int {
	return len(g.Conditions)
}

// Validate checks the group's operator and every condition. The field
// prefix scopes violation names (e.g. "entry.conditions[0].value").
func (g *RuleGroup) Validate(field string) []Violation {
	var violations []Violation

	if !g.Operator.IsValid() {
		violations = append(violations, Violation{
			Field:      field + ".operator",
			Constraint: "operator must be AND or OR",
		})
	}

	for i := range g.Conditions {
		name := fmt.Sprintf("%s.conditions[%d]", field, i)
		violations = append(violations, g.Conditions[i].Validate(name)...)
	}

	return violations
}

// clone returns a deep copy of the group.
func (g RuleGroup) clone() RuleGroup {
	out := RuleGroup{Operator: g.Operator}
	if g.Conditions != nil {
		out.Conditions = make([]Condition, len(g.Conditions))
		for i, c := range g.Conditions {
			out.Conditions[i] = c.clone()
		}
	}
	return out
}
