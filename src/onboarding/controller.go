package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/models"
)

// Step is the wizard's position: a welcome step, four data-collection steps,
// then a terminal success step.
type Step int

const (
	StepWelcome Step = iota
	StepPersonal
	StepGoals
	StepExperience
	StepPsychological
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepPersonal:
		return "personal"
	case StepGoals:
		return "goals"
	case StepExperience:
		return "experience"
	case StepPsychological:
		return "psychological"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

var (
	// ErrAtTerminalStep: no transition leaves the success step.
	ErrAtTerminalStep = errors.New("onboarding already completed")
	// ErrBackNotAllowed: back is only available above the first data step.
	ErrBackNotAllowed = errors.New("cannot go back from this step")
	// ErrSubmitRequired: the last data step finishes with Submit, not Next.
	ErrSubmitRequired = errors.New("the final step must be submitted")
	// ErrNotAtSubmitStep: Submit is reachable only from the last data step.
	ErrNotAtSubmitStep = errors.New("submission is only possible from the final step")
)

// ValidationError reports which field blocked submission. Local and
// non-fatal: the controller stays on the same step.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Submitter is the slice of the backend client the controller needs.
type Submitter interface {
	SubmitOnboarding(ctx context.Context, payload models.OnboardingPayload) error
}

// StatusRecorder marks onboarding complete after a successful submission.
type StatusRecorder interface {
	UpdateOnboardingStatus(done bool) error
}

// Controller drives the questionnaire: step navigation, the draft being
// filled, validation and the single submission.
type Controller struct {
	draft     *Draft
	step      Step
	submitter Submitter
	recorder  StatusRecorder
}

func NewController(submitter Submitter, recorder StatusRecorder) *Controller {
	return &Controller{
		draft:     NewDraft(),
		step:      StepWelcome,
		submitter: submitter,
		recorder:  recorder,
	}
}

func (c *Controller) Step() Step {
	return c.step
}

func (c *Controller) Draft() *Draft {
	return c.draft
}

// Apply dispatches one field update to the draft.
func (c *Controller) Apply(action Action) error {
	return c.draft.Apply(action)
}

// Next advances one step. The last data step cannot be skipped past; it ends
// with Submit.
func (c *Controller) Next() error {
	switch {
	case c.step == StepDone:
		return ErrAtTerminalStep
	case c.step == StepPsychological:
		return ErrSubmitRequired
	default:
		c.step++
		return nil
	}
}

// Back retreats one step; the first data step has nothing to go back to.
func (c *Controller) Back() error {
	if c.step == StepDone {
		return ErrAtTerminalStep
	}
	if c.step <= StepPersonal {
		return ErrBackNotAllowed
	}
	c.step--
	return nil
}

// Reset discards the draft and starts over.
func (c *Controller) Reset() {
	c.draft = NewDraft()
	c.step = StepWelcome
}

// Submit validates the draft, shapes it into the backend payload and sends
// it. Validation failure keeps the controller on the current step without any
// network call; backend failure likewise keeps it in place, with no retry.
// The terminal step is reached only after the backend accepts the profile.
func (c *Controller) Submit(ctx context.Context) error {
	if c.step != StepPsychological {
		return ErrNotAtSubmitStep
	}

	payload, err := c.draft.Payload()
	if err != nil {
		return err
	}

	if err := c.submitter.SubmitOnboarding(ctx, payload); err != nil {
		logger.L.Warn("Onboarding submission rejected by backend", "error", err)
		return fmt.Errorf("failed to save your preferences: %w", err)
	}

	if c.recorder != nil {
		if err := c.recorder.UpdateOnboardingStatus(true); err != nil {
			logger.L.Warn("Failed to record onboarding completion locally", "error", err)
		}
	}
	c.step = StepDone
	return nil
}

// Payload validates the required fields and the investment-type invariant,
// then restructures the flat draft into the grouped sections the backend
// expects. Age and income must be positive integers; family size falls back
// to 1 when absent or unparsable.
func (d *Draft) Payload() (models.OnboardingPayload, error) {
	var payload models.OnboardingPayload

	if strings.TrimSpace(d.Name) == "" {
		return payload, &ValidationError{Field: "name", Message: "please fill all required fields: name is missing"}
	}
	age, err := strconv.Atoi(strings.TrimSpace(d.Age))
	if err != nil || age <= 0 {
		return payload, &ValidationError{Field: "age", Message: "please fill all required fields: age must be a positive number"}
	}
	income, err := strconv.Atoi(strings.TrimSpace(d.MonthlyIncome))
	if err != nil || income < 0 {
		return payload, &ValidationError{Field: "monthlyIncome", Message: "please fill all required fields: monthly income must be a number"}
	}
	if d.HasExistingInvestments && len(d.InvestmentTypes) == 0 {
		return payload, &ValidationError{
			Field:   "investmentTypes",
			Message: "you indicated that you have investments, please select investment types",
		}
	}

	familySize, err := strconv.Atoi(strings.TrimSpace(d.FamilySize))
	if err != nil || familySize < 1 {
		familySize = 1
	}

	goals := make([]string, 0, len(d.ShortTermGoals)+len(d.LongTermGoals))
	goals = append(goals, d.ShortTermGoals...)
	goals = append(goals, d.LongTermGoals...)

	existing := []string{}
	if d.HasExistingInvestments {
		existing = append(existing, d.InvestmentTypes...)
	}

	beliefs := d.FinancialBeliefs
	if beliefs == nil {
		beliefs = []string{}
	}

	return models.OnboardingPayload{
		Name:                d.Name,
		Age:                 age,
		Income:              income,
		Goals:               goals,
		InvestmentTimeframe: d.InvestmentTimeframe,
		RiskTolerance:       d.RiskTolerance,
		ExistingInvestments: existing,
		KnowledgeAssessment: models.KnowledgeAssessment{
			FinancialKnowledgeLevel: d.KnowledgeLevel,
		},
		Demographic: models.Demographic{
			Location:   d.Location,
			Occupation: d.Occupation,
			Education:  d.Education,
			FamilySize: familySize,
			Phone:      d.Phone,
		},
		Psychological: models.Psychological{
			RiskTolerance:       d.RiskTolerance,
			FinancialAnxiety:    d.FinancialAnxiety,
			DecisionMakingStyle: d.DecisionMakingStyle,
		},
		Ethnographic: models.Ethnographic{
			CulturalBackground: d.CulturalBackground,
			FinancialBeliefs:   beliefs,
			CommunityInfluence: d.CommunityInfluence,
		},
	}, nil
}
