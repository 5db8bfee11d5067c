package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/niveshpath/client/src/onboarding"
)

// onboard walks the questionnaire step by step. Answers feed the controller
// through actions; the controller owns navigation, validation and the final
// submission.
func (a *App) onboard(ctx context.Context) error {
	if a.Session.OnboardingCompleted(ctx) {
		fmt.Fprintln(a.Out, "Your profile is already set up. Run with a fresh account to redo it.")
		return nil
	}

	c := a.Onboarding
	reader := bufio.NewReader(a.In)

	fmt.Fprintln(a.Out, "Welcome to NiveshPath! A few questions help us personalize your financial guidance.")
	if err := c.Next(); err != nil {
		return err
	}

	for c.Step() != onboarding.StepDone {
		switch c.Step() {
		case onboarding.StepPersonal:
			a.askPersonal(reader, c)
		case onboarding.StepGoals:
			a.askGoals(reader, c)
		case onboarding.StepExperience:
			a.askExperience(reader, c)
		case onboarding.StepPsychological:
			a.askPsychological(reader, c)
		}

		if c.Step() != onboarding.StepPsychological {
			if err := c.Next(); err != nil {
				return err
			}
			continue
		}

		err := c.Submit(ctx)
		if err == nil {
			break
		}
		var verr *onboarding.ValidationError
		if errors.As(err, &verr) {
			// Local validation failure: the draft survives, only the
			// offending section needs another pass.
			fmt.Fprintf(a.Out, "! %s\n", verr.Message)
			for c.Step() != onboarding.StepPersonal {
				if backErr := c.Back(); backErr != nil {
					return backErr
				}
			}
			continue
		}
		return err
	}

	fmt.Fprintln(a.Out, "Your profile is ready. Head to `niveshpath chat` for personalized advice.")
	return nil
}

func (a *App) askPersonal(reader *bufio.Reader, c *onboarding.Controller) {
	fmt.Fprintln(a.Out, "\n-- Personal information --")
	a.askScalar(reader, c, onboarding.FieldName, "Full name")
	a.askScalar(reader, c, onboarding.FieldAge, "Age")
	a.askScalar(reader, c, onboarding.FieldOccupation, "Occupation")
	a.askScalar(reader, c, onboarding.FieldMonthlyIncome, "Monthly income (₹)")
	a.askScalar(reader, c, onboarding.FieldEducation, "Education")
	a.askScalar(reader, c, onboarding.FieldFamilySize, "Family size")
	a.askScalar(reader, c, onboarding.FieldLocation, "Location")
	a.askScalar(reader, c, onboarding.FieldPhone, "Phone")
}

func (a *App) askGoals(reader *bufio.Reader, c *onboarding.Controller) {
	fmt.Fprintln(a.Out, "\n-- Financial goals --")
	a.askOptions(reader, c, onboarding.GroupShortTermGoals, "Short-term goals", onboarding.ShortTermGoalOptions)
	a.askOptions(reader, c, onboarding.GroupLongTermGoals, "Long-term goals", onboarding.LongTermGoalOptions)
	a.askChoice(reader, c, onboarding.FieldRiskTolerance, "Risk tolerance", onboarding.RiskToleranceLevels, c.Draft().RiskTolerance)
	a.askChoice(reader, c, onboarding.FieldInvestmentTimeframe, "Investment timeframe", onboarding.InvestmentTimeframes, c.Draft().InvestmentTimeframe)
}

func (a *App) askExperience(reader *bufio.Reader, c *onboarding.Controller) {
	fmt.Fprintln(a.Out, "\n-- Investment experience --")
	answer := prompt(reader, a.Out, "Do you have existing investments? (y/n) ")
	has := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	c.Apply(onboarding.SetHasInvestments{Value: has})
	if has {
		a.askOptions(reader, c, onboarding.GroupInvestmentTypes, "Investment types", onboarding.InvestmentTypeOptions)
	}
	a.askChoice(reader, c, onboarding.FieldKnowledgeLevel, "Financial knowledge", onboarding.KnowledgeLevels, c.Draft().KnowledgeLevel)
}

func (a *App) askPsychological(reader *bufio.Reader, c *onboarding.Controller) {
	fmt.Fprintln(a.Out, "\n-- About you --")
	a.askChoice(reader, c, onboarding.FieldFinancialAnxiety, "How anxious does money make you?", onboarding.AnxietyLevels, c.Draft().FinancialAnxiety)
	a.askChoice(reader, c, onboarding.FieldDecisionMakingStyle, "Decision making style", onboarding.DecisionStyles, c.Draft().DecisionMakingStyle)
	a.askScalar(reader, c, onboarding.FieldCulturalBackground, "Cultural background")
	a.askOptions(reader, c, onboarding.GroupFinancialBeliefs, "Beliefs about money", onboarding.FinancialBeliefOptions)
	a.askChoice(reader, c, onboarding.FieldCommunityInfluence, "How much does your community influence your finances?", onboarding.InfluenceLevels, c.Draft().CommunityInfluence)
}

// askScalar reads a free-form answer. An empty line keeps whatever the draft
// already holds.
func (a *App) askScalar(reader *bufio.Reader, c *onboarding.Controller, field onboarding.ScalarField, label string) {
	answer := prompt(reader, a.Out, label+": ")
	if answer == "" {
		return
	}
	if err := c.Apply(onboarding.SetScalar{Field: field, Value: answer}); err != nil {
		fmt.Fprintf(a.Out, "! %v\n", err)
	}
}

// askChoice reads a 1-based index into an option list.
func (a *App) askChoice(reader *bufio.Reader, c *onboarding.Controller, field onboarding.ScalarField, label string, options []string, current string) {
	fmt.Fprintf(a.Out, "%s:\n", label)
	for i, opt := range options {
		marker := " "
		if opt == current {
			marker = "*"
		}
		fmt.Fprintf(a.Out, " %s %d. %s\n", marker, i+1, opt)
	}
	answer := prompt(reader, a.Out, "Choice (enter to keep current): ")
	if answer == "" {
		return
	}
	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 1 || idx > len(options) {
		fmt.Fprintln(a.Out, "! not a valid choice, keeping current")
		return
	}
	if err := c.Apply(onboarding.SetScalar{Field: field, Value: options[idx-1]}); err != nil {
		fmt.Fprintf(a.Out, "! %v\n", err)
	}
}

// askOptions reads a comma-separated list of 1-based indices and toggles each
// on. Previously selected options that are listed again toggle off.
func (a *App) askOptions(reader *bufio.Reader, c *onboarding.Controller, group onboarding.OptionGroup, label string, options []string) {
	fmt.Fprintf(a.Out, "%s (comma-separated numbers, enter to skip):\n", label)
	for i, opt := range options {
		fmt.Fprintf(a.Out, "   %d. %s\n", i+1, opt)
	}
	answer := prompt(reader, a.Out, "Selection: ")
	if answer == "" {
		return
	}
	for _, part := range strings.Split(answer, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || idx < 1 || idx > len(options) {
			fmt.Fprintf(a.Out, "! skipping invalid selection %q\n", part)
			continue
		}
		if err := c.Apply(onboarding.ToggleOption{Group: group, Value: options[idx-1], Checked: true}); err != nil {
			fmt.Fprintf(a.Out, "! %v\n", err)
		}
	}
}
