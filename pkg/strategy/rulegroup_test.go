package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleGroup_AddRemoveLifecycle(t *testing.T) {
	g := NewRuleGroup()
	before := g.Len()

	c := g.AddCondition()
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, before+1, g.Len())

	removed := g.RemoveCondition(c.ID)
	assert.True(t, removed)
	assert.Equal(t, before, g.Len())
}

func TestRuleGroup_RemoveUnknownIDIsNoOp(t *testing.T) {
	g := NewRuleGroup()
	g.AddCondition()
	before := g.Len()

	removed := g.RemoveCondition("no-such-id")
	assert.False(t, removed)
	assert.Equal(t, before, g.Len())
}

func TestRuleGroup_AddConditionDefaults(t *testing.T) {
	g := NewRuleGroup()
	c := g.AddCondition()

	assert.Equal(t, DefaultConditionIndicator, c.Indicator)
	assert.Equal(t, ComparatorLessThan, c.Comparator)
	assert.Equal(t, DefaultConditionValue, c.Value)
	assert.Equal(t, DefaultConditionPeriod, c.Params["period"])
}

func TestRuleGroup_ConditionIDsAreUnique(t *testing.T) {
	g := NewRuleGroup()
	a := g.AddCondition()
	b := g.AddCondition()
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRuleGroup_UpdateCondition(t *testing.T) {
	g := NewRuleGroup()
	c := g.AddCondition()

	assert.True(t, g.UpdateCondition(c.ID, FieldIndicator, "macd"))
	assert.True(t, g.UpdateCondition(c.ID, FieldComparator, ComparatorCrossesAbove))
	assert.True(t, g.UpdateCondition(c.ID, FieldValue, 0.5))
	assert.True(t, g.UpdateCondition(c.ID, FieldParam, map[string]float64{"fast": 12, "slow": 26}))

	got := g.Conditions[0]
	assert.Equal(t, "macd", got.Indicator)
	assert.Equal(t, ComparatorCrossesAbove, got.Comparator)
	assert.Equal(t, 0.5, got.Value)
	assert.Equal(t, 12.0, got.Params["fast"])
	assert.Equal(t, 26.0, got.Params["slow"])
	// Param updates merge; the default period entry survives
	assert.Equal(t, DefaultConditionPeriod, got.Params["period"])
}

func TestRuleGroup_UpdateComparatorFromString(t *testing.T) {
	g := NewRuleGroup()
	c := g.AddCondition()

	assert.True(t, g.UpdateCondition(c.ID, FieldComparator, "rising"))
	assert.Equal(t, ComparatorRising, g.Conditions[0].Comparator)
}

func TestRuleGroup_UpdateStaleIDIsNoOp(t *testing.T) {
	g := NewRuleGroup()
	c := g.AddCondition()
	g.RemoveCondition(c.ID)

	// Rapid add/remove then a buffered update on the removed id: no-op,
	// no error
	assert.False(t, g.UpdateCondition(c.ID, FieldValue, 99.0))
	assert.Equal(t, 0, g.Len())
}

func TestRuleGroup_UpdateWrongTypeIsNoOp(t *testing.T) {
	g := NewRuleGroup()
	c := g.AddCondition()

	assert.False(t, g.UpdateCondition(c.ID, FieldValue, "not-a-number"))
	assert.Equal(t, DefaultConditionValue, g.Conditions[0].Value)
}

func TestRuleGroup_SetOperator(t *testing.T) {
	g := NewRuleGroup()
	assert.Equal(t, OperatorAND, g.Operator)

	assert.True(t, g.SetOperator(OperatorOR))
	assert.Equal(t, OperatorOR, g.Operator)

	assert.False(t, g.SetOperator(GroupOperator("XOR")))
	assert.Equal(t, OperatorOR, g.Operator)
}

func TestRuleGroup_OrderIsInsertionOrder(t *testing.T) {
	g := NewRuleGroup()
	a := g.AddCondition()
	b := g.AddCondition()
	c := g.AddCondition()

	g.RemoveCondition(b.ID)

	require.Equal(t, 2, g.Len())
	assert.Equal(t, a.ID, g.Conditions[0].ID)
	assert.Equal(t, c.ID, g.Conditions[1].ID)
}

func TestRuleGroup_Validate(t *testing.T) {
	g := NewRuleGroup()
	c := g.AddCondition()
	assert.Empty(t, g.Validate("entry"))

	g.UpdateCondition(c.ID, FieldComparator, "between")
	violations := g.Validate("entry")
	require.Len(t, violations, 1)
	assert.Equal(t, "entry.conditions[0].comparator", violations[0].Field)
}

func TestComparator_RequiresThreshold(t *testing.T) {
	assert.True(t, ComparatorGreaterThan.RequiresThreshold())
	assert.True(t, ComparatorCrossesAbove.RequiresThreshold())
	assert.False(t, ComparatorRising.RequiresThreshold())
	assert.False(t, ComparatorFalling.RequiresThreshold())
}
