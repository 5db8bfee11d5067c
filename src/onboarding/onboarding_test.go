package onboarding

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type fakeSubmitter struct {
	payloads []models.OnboardingPayload
	err      error
}

func (f *fakeSubmitter) SubmitOnboarding(ctx context.Context, payload models.OnboardingPayload) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

type fakeRecorder struct {
	updates []bool
}

func (f *fakeRecorder) UpdateOnboardingStatus(done bool) error {
	f.updates = append(f.updates, done)
	return nil
}

// fillValidDraft applies the minimum answers that pass validation.
func fillValidDraft(t *testing.T, c *Controller) {
	t.Helper()
	actions := []Action{
		SetScalar{Field: FieldName, Value: "Asha Rao"},
		SetScalar{Field: FieldAge, Value: "29"},
		SetScalar{Field: FieldMonthlyIncome, Value: "65000"},
	}
	for _, action := range actions {
		if err := c.Apply(action); err != nil {
			t.Fatalf("Apply(%+v) returned error: %v", action, err)
		}
	}
}

// advanceTo walks the controller forward to the target step.
func advanceTo(t *testing.T, c *Controller, target Step) {
	t.Helper()
	for c.Step() != target {
		if err := c.Next(); err != nil {
			t.Fatalf("Next at %v returned error: %v", c.Step(), err)
		}
	}
}

func TestDraftDefaults(t *testing.T) {
	d := NewDraft()
	if d.FamilySize != "1" {
		t.Errorf("FamilySize = %q, want 1", d.FamilySize)
	}
	if d.RiskTolerance != RiskMedium || d.InvestmentTimeframe != TimeframeMedium {
		t.Errorf("risk defaults = %q/%q", d.RiskTolerance, d.InvestmentTimeframe)
	}
	if d.KnowledgeLevel != KnowledgeBeginner {
		t.Errorf("KnowledgeLevel = %q, want beginner", d.KnowledgeLevel)
	}
	if d.HasExistingInvestments || d.InvestmentTypes != nil {
		t.Error("fresh draft claims existing investments")
	}
}

func TestToggleOptionSetSemantics(t *testing.T) {
	d := NewDraft()

	// Checking twice must not duplicate.
	for i := 0; i < 2; i++ {
		if err := d.Apply(ToggleOption{Group: GroupShortTermGoals, Value: "Vacation", Checked: true}); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
	}
	if len(d.ShortTermGoals) != 1 {
		t.Errorf("ShortTermGoals = %v, want single entry", d.ShortTermGoals)
	}

	if err := d.Apply(ToggleOption{Group: GroupShortTermGoals, Value: "Vacation", Checked: false}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(d.ShortTermGoals) != 0 {
		t.Errorf("ShortTermGoals after uncheck = %v, want empty", d.ShortTermGoals)
	}

	// Unchecking something never selected is a no-op, not an error.
	if err := d.Apply(ToggleOption{Group: GroupLongTermGoals, Value: "Retirement", Checked: false}); err != nil {
		t.Errorf("uncheck of absent option returned error: %v", err)
	}
}

func TestToggleOptionRejectsUnknownValue(t *testing.T) {
	d := NewDraft()
	if err := d.Apply(ToggleOption{Group: GroupInvestmentTypes, Value: "Tulips", Checked: true}); err == nil {
		t.Error("unknown option accepted")
	}
}

func TestSetScalarRejectsInvalidEnum(t *testing.T) {
	d := NewDraft()
	if err := d.Apply(SetScalar{Field: FieldRiskTolerance, Value: "yolo"}); err == nil {
		t.Error("invalid risk tolerance accepted")
	}
	if d.RiskTolerance != RiskMedium {
		t.Errorf("RiskTolerance changed to %q on rejected update", d.RiskTolerance)
	}
}

func TestClearingInvestmentsFlagDropsTypes(t *testing.T) {
	d := NewDraft()
	if err := d.Apply(SetHasInvestments{Value: true}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if err := d.Apply(ToggleOption{Group: GroupInvestmentTypes, Value: "Gold", Checked: true}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if err := d.Apply(SetHasInvestments{Value: false}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if d.InvestmentTypes != nil {
		t.Errorf("InvestmentTypes = %v after flag cleared, want nil", d.InvestmentTypes)
	}
}

func TestStepNavigation(t *testing.T) {
	c := NewController(&fakeSubmitter{}, &fakeRecorder{})

	if c.Step() != StepWelcome {
		t.Fatalf("initial step = %v, want welcome", c.Step())
	}
	if err := c.Back(); !errors.Is(err, ErrBackNotAllowed) {
		t.Errorf("Back at welcome = %v, want ErrBackNotAllowed", err)
	}

	advanceTo(t, c, StepPsychological)
	if err := c.Next(); !errors.Is(err, ErrSubmitRequired) {
		t.Errorf("Next at final data step = %v, want ErrSubmitRequired", err)
	}

	if err := c.Back(); err != nil {
		t.Fatalf("Back returned error: %v", err)
	}
	if c.Step() != StepExperience {
		t.Errorf("step after Back = %v, want experience", c.Step())
	}

	for c.Step() != StepPersonal {
		if err := c.Back(); err != nil {
			t.Fatalf("Back returned error: %v", err)
		}
	}
	if err := c.Back(); !errors.Is(err, ErrBackNotAllowed) {
		t.Errorf("Back at first data step = %v, want ErrBackNotAllowed", err)
	}
}

func TestSubmitOnlyFromFinalDataStep(t *testing.T) {
	submitter := &fakeSubmitter{}
	c := NewController(submitter, &fakeRecorder{})

	if err := c.Submit(context.Background()); !errors.Is(err, ErrNotAtSubmitStep) {
		t.Errorf("Submit at welcome = %v, want ErrNotAtSubmitStep", err)
	}
	if len(submitter.payloads) != 0 {
		t.Error("submitter called from wrong step")
	}
}

func TestSubmitValidationFailureStaysLocal(t *testing.T) {
	submitter := &fakeSubmitter{}
	c := NewController(submitter, &fakeRecorder{})
	advanceTo(t, c, StepPsychological)

	// Name missing.
	err := c.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("Submit = %v, want ValidationError for name", err)
	}
	if len(submitter.payloads) != 0 {
		t.Error("network call made despite validation failure")
	}
	if c.Step() != StepPsychological {
		t.Errorf("step moved to %v on validation failure", c.Step())
	}
}

func TestSubmitInvestmentTypesInvariant(t *testing.T) {
	submitter := &fakeSubmitter{}
	c := NewController(submitter, &fakeRecorder{})
	fillValidDraft(t, c)
	if err := c.Apply(SetHasInvestments{Value: true}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	advanceTo(t, c, StepPsychological)

	err := c.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "investmentTypes" {
		t.Fatalf("Submit = %v, want ValidationError for investmentTypes", err)
	}
	if len(submitter.payloads) != 0 {
		t.Error("network call made despite missing investment types")
	}
}

func TestSubmitSuccess(t *testing.T) {
	submitter := &fakeSubmitter{}
	recorder := &fakeRecorder{}
	c := NewController(submitter, recorder)
	fillValidDraft(t, c)
	advanceTo(t, c, StepPsychological)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if c.Step() != StepDone {
		t.Errorf("step after submit = %v, want done", c.Step())
	}
	if len(submitter.payloads) != 1 {
		t.Fatalf("submitter called %d times, want 1", len(submitter.payloads))
	}
	if len(recorder.updates) != 1 || !recorder.updates[0] {
		t.Errorf("recorder updates = %v, want [true]", recorder.updates)
	}

	// The terminal step is a dead end.
	if err := c.Next(); !errors.Is(err, ErrAtTerminalStep) {
		t.Errorf("Next at done = %v, want ErrAtTerminalStep", err)
	}
	if err := c.Back(); !errors.Is(err, ErrAtTerminalStep) {
		t.Errorf("Back at done = %v, want ErrAtTerminalStep", err)
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrNotAtSubmitStep) {
		t.Errorf("second Submit = %v, want ErrNotAtSubmitStep", err)
	}
}

func TestSubmitBackendFailureKeepsStep(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("503 from backend")}
	recorder := &fakeRecorder{}
	c := NewController(submitter, recorder)
	fillValidDraft(t, c)
	advanceTo(t, c, StepPsychological)

	if err := c.Submit(context.Background()); err == nil {
		t.Fatal("Submit succeeded, want error")
	}
	if c.Step() != StepPsychological {
		t.Errorf("step after failed submit = %v, want psychological", c.Step())
	}
	if len(recorder.updates) != 0 {
		t.Error("completion recorded despite backend failure")
	}
	if len(submitter.payloads) != 1 {
		t.Errorf("submitter called %d times, want exactly 1 (no retry)", len(submitter.payloads))
	}
}

func TestPayloadShaping(t *testing.T) {
	d := NewDraft()
	updates := []Action{
		SetScalar{Field: FieldName, Value: "Asha Rao"},
		SetScalar{Field: FieldAge, Value: "29"},
		SetScalar{Field: FieldMonthlyIncome, Value: "65000"},
		SetScalar{Field: FieldOccupation, Value: "Engineer"},
		SetScalar{Field: FieldEducation, Value: "Masters"},
		SetScalar{Field: FieldLocation, Value: "Pune"},
		SetScalar{Field: FieldFamilySize, Value: "not-a-number"},
		SetScalar{Field: FieldCulturalBackground, Value: "Marathi"},
		ToggleOption{Group: GroupShortTermGoals, Value: "Emergency Fund", Checked: true},
		ToggleOption{Group: GroupLongTermGoals, Value: "Retirement", Checked: true},
		SetHasInvestments{Value: true},
		ToggleOption{Group: GroupInvestmentTypes, Value: "Mutual Funds", Checked: true},
	}
	for _, action := range updates {
		if err := d.Apply(action); err != nil {
			t.Fatalf("Apply(%+v) returned error: %v", action, err)
		}
	}

	payload, err := d.Payload()
	if err != nil {
		t.Fatalf("Payload returned error: %v", err)
	}
	if payload.Age != 29 || payload.Income != 65000 {
		t.Errorf("coerced numbers = %d/%d, want 29/65000", payload.Age, payload.Income)
	}
	// Short and long term goals collapse into one list, short first.
	if len(payload.Goals) != 2 || payload.Goals[0] != "Emergency Fund" || payload.Goals[1] != "Retirement" {
		t.Errorf("Goals = %v", payload.Goals)
	}
	if len(payload.ExistingInvestments) != 1 || payload.ExistingInvestments[0] != "Mutual Funds" {
		t.Errorf("ExistingInvestments = %v", payload.ExistingInvestments)
	}
	// Unparsable family size falls back to 1 instead of failing.
	if payload.Demographic.FamilySize != 1 {
		t.Errorf("FamilySize = %d, want 1", payload.Demographic.FamilySize)
	}
	if payload.Demographic.Location != "Pune" || payload.Demographic.Occupation != "Engineer" {
		t.Errorf("Demographic = %+v", payload.Demographic)
	}
	if payload.Psychological.RiskTolerance != payload.RiskTolerance {
		t.Error("risk tolerance not mirrored into the psychological section")
	}
	if payload.Ethnographic.FinancialBeliefs == nil {
		t.Error("FinancialBeliefs is nil, want empty slice")
	}
	if payload.KnowledgeAssessment.FinancialKnowledgeLevel != KnowledgeBeginner {
		t.Errorf("knowledge level = %q", payload.KnowledgeAssessment.FinancialKnowledgeLevel)
	}
}

func TestPayloadNoInvestmentsSendsEmptyList(t *testing.T) {
	d := NewDraft()
	for _, action := range []Action{
		SetScalar{Field: FieldName, Value: "A"},
		SetScalar{Field: FieldAge, Value: "40"},
		SetScalar{Field: FieldMonthlyIncome, Value: "0"},
	} {
		if err := d.Apply(action); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
	}

	payload, err := d.Payload()
	if err != nil {
		t.Fatalf("Payload returned error: %v", err)
	}
	if payload.ExistingInvestments == nil || len(payload.ExistingInvestments) != 0 {
		t.Errorf("ExistingInvestments = %v, want empty non-nil slice", payload.ExistingInvestments)
	}
}

func TestPayloadRejectsBadAge(t *testing.T) {
	for _, age := range []string{"", "abc", "0", "-3"} {
		d := NewDraft()
		d.Name = "A"
		d.Age = age
		d.MonthlyIncome = "1000"
		_, err := d.Payload()
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "age" {
			t.Errorf("age %q: got %v, want ValidationError for age", age, err)
		}
	}
}

func TestReset(t *testing.T) {
	c := NewController(&fakeSubmitter{}, &fakeRecorder{})
	fillValidDraft(t, c)
	advanceTo(t, c, StepGoals)

	c.Reset()
	if c.Step() != StepWelcome {
		t.Errorf("step after Reset = %v, want welcome", c.Step())
	}
	if c.Draft().Name != "" {
		t.Error("draft survived Reset")
	}
}
