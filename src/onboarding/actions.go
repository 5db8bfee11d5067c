package onboarding

import "fmt"

// ScalarField names a single-valued draft field addressable by SetScalar.
type ScalarField int

const (
	FieldName ScalarField = iota
	FieldAge
	FieldOccupation
	FieldMonthlyIncome
	FieldEducation
	FieldFamilySize
	FieldLocation
	FieldPhone
	FieldRiskTolerance
	FieldInvestmentTimeframe
	FieldKnowledgeLevel
	FieldFinancialAnxiety
	FieldDecisionMakingStyle
	FieldCulturalBackground
	FieldCommunityInfluence
)

// OptionGroup names a multi-select field addressable by ToggleOption.
type OptionGroup int

const (
	GroupShortTermGoals OptionGroup = iota
	GroupLongTermGoals
	GroupInvestmentTypes
	GroupFinancialBeliefs
)

// Action is a tagged field update. Every way the questionnaire can change the
// draft is one of the three variants below, applied through Draft.Apply, so
// the update surface is exhaustive at compile time instead of dispatching on
// field-name strings.
type Action interface {
	apply(d *Draft) error
}

// SetScalar assigns a single-valued field. Enumerated fields reject values
// outside their option list.
type SetScalar struct {
	Field ScalarField
	Value string
}

// SetHasInvestments flips the existing-investments flag. Turning it off
// always empties InvestmentTypes, whatever they held.
type SetHasInvestments struct {
	Value bool
}

// ToggleOption adds (Checked) or removes (not Checked) one option from a
// multi-select group. Duplicates are impossible regardless of click order.
type ToggleOption struct {
	Group   OptionGroup
	Value   string
	Checked bool
}

// Apply is the single reducer for draft mutations.
func (d *Draft) Apply(action Action) error {
	return action.apply(d)
}

func (a SetScalar) apply(d *Draft) error {
	switch a.Field {
	case FieldName:
		d.Name = a.Value
	case FieldAge:
		d.Age = a.Value
	case FieldOccupation:
		d.Occupation = a.Value
	case FieldMonthlyIncome:
		d.MonthlyIncome = a.Value
	case FieldEducation:
		d.Education = a.Value
	case FieldFamilySize:
		d.FamilySize = a.Value
	case FieldLocation:
		d.Location = a.Value
	case FieldPhone:
		d.Phone = a.Value
	case FieldRiskTolerance:
		return setEnum(&d.RiskTolerance, a.Value, RiskToleranceLevels, "risk tolerance")
	case FieldInvestmentTimeframe:
		return setEnum(&d.InvestmentTimeframe, a.Value, InvestmentTimeframes, "investment timeframe")
	case FieldKnowledgeLevel:
		return setEnum(&d.KnowledgeLevel, a.Value, KnowledgeLevels, "knowledge level")
	case FieldFinancialAnxiety:
		return setEnum(&d.FinancialAnxiety, a.Value, AnxietyLevels, "financial anxiety")
	case FieldDecisionMakingStyle:
		return setEnum(&d.DecisionMakingStyle, a.Value, DecisionStyles, "decision making style")
	case FieldCulturalBackground:
		d.CulturalBackground = a.Value
	case FieldCommunityInfluence:
		return setEnum(&d.CommunityInfluence, a.Value, InfluenceLevels, "community influence")
	default:
		return fmt.Errorf("unknown scalar field %d", a.Field)
	}
	return nil
}

func (a SetHasInvestments) apply(d *Draft) error {
	d.HasExistingInvestments = a.Value
	if !a.Value {
		d.InvestmentTypes = nil
	}
	return nil
}

func (a ToggleOption) apply(d *Draft) error {
	var target *[]string
	var options []string
	switch a.Group {
	case GroupShortTermGoals:
		target, options = &d.ShortTermGoals, ShortTermGoalOptions
	case GroupLongTermGoals:
		target, options = &d.LongTermGoals, LongTermGoalOptions
	case GroupInvestmentTypes:
		target, options = &d.InvestmentTypes, InvestmentTypeOptions
	case GroupFinancialBeliefs:
		target, options = &d.FinancialBeliefs, FinancialBeliefOptions
	default:
		return fmt.Errorf("unknown option group %d", a.Group)
	}
	if !contains(options, a.Value) {
		return fmt.Errorf("unknown option %q for group %d", a.Value, a.Group)
	}
	*target = toggle(*target, a.Value, a.Checked)
	return nil
}

func setEnum(target *string, value string, options []string, label string) error {
	if !contains(options, value) {
		return fmt.Errorf("invalid %s %q", label, value)
	}
	*target = value
	return nil
}

// toggle returns the set with value present iff checked. Adding an already
// present value or removing an absent one is a no-op.
func toggle(set []string, value string, checked bool) []string {
	idx := -1
	for i, v := range set {
		if v == value {
			idx = i
			break
		}
	}
	if checked {
		if idx >= 0 {
			return set
		}
		return append(set, value)
	}
	if idx < 0 {
		return set
	}
	return append(set[:idx], set[idx+1:]...)
}
