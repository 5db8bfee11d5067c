package onboarding

// Risk tolerance, ordered lowest to highest appetite.
const (
	RiskVeryLow  = "very_low"
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskVeryHigh = "very_high"
)

// Investment timeframe, ordered shortest to longest horizon.
const (
	TimeframeShort  = "short_term"
	TimeframeMedium = "medium_term"
	TimeframeLong   = "long_term"
)

const (
	KnowledgeBeginner     = "beginner"
	KnowledgeIntermediate = "intermediate"
	KnowledgeAdvanced     = "advanced"
)

const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

const (
	StyleAnalytical   = "analytical"
	StyleIntuitive    = "intuitive"
	StyleConsultative = "consultative"
	StyleSpontaneous  = "spontaneous"
)

var (
	RiskToleranceLevels  = []string{RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}
	InvestmentTimeframes = []string{TimeframeShort, TimeframeMedium, TimeframeLong}
	KnowledgeLevels      = []string{KnowledgeBeginner, KnowledgeIntermediate, KnowledgeAdvanced}
	AnxietyLevels        = []string{LevelLow, LevelMedium, LevelHigh}
	DecisionStyles       = []string{StyleAnalytical, StyleIntuitive, StyleConsultative, StyleSpontaneous}
	InfluenceLevels      = []string{LevelLow, LevelMedium, LevelHigh}

	ShortTermGoalOptions = []string{
		"Emergency Fund", "Vacation", "Education", "Vehicle",
		"Home Appliances", "Debt Repayment", "Wedding",
	}
	LongTermGoalOptions = []string{
		"Retirement", "Home Purchase", "Children Education", "Wealth Building",
		"Starting Business", "Foreign Travel", "Financial Independence",
	}
	InvestmentTypeOptions = []string{
		"Stocks", "Mutual Funds", "Fixed Deposits", "Real Estate", "Gold",
		"PPF/EPF", "Cryptocurrency", "NPS", "Bonds", "Insurance Policies",
	}
	FinancialBeliefOptions = []string{
		"Saving is important", "Investing is risky", "Financial security is priority",
		"Wealth creation takes time", "Money should be enjoyed",
		"Debt should be avoided", "Financial education is essential",
	}
)

// Draft is the accumulating, not-yet-submitted questionnaire answer set.
// Numeric fields stay as entered text until submission, when they are coerced
// and validated; multi-select fields have set semantics (no duplicates, order
// irrelevant).
type Draft struct {
	// Personal information.
	Name          string
	Age           string
	Occupation    string
	MonthlyIncome string
	Education     string
	FamilySize    string
	Location      string
	Phone         string

	// Financial goals and risk profile.
	ShortTermGoals      []string
	LongTermGoals       []string
	RiskTolerance       string
	InvestmentTimeframe string

	// Investment history. InvestmentTypes is meaningful only while
	// HasExistingInvestments is true and is cleared when it flips false.
	HasExistingInvestments bool
	InvestmentTypes        []string

	KnowledgeLevel string

	// Psychological profile.
	FinancialAnxiety    string
	DecisionMakingStyle string

	// Cultural background.
	CulturalBackground string
	FinancialBeliefs   []string
	CommunityInfluence string
}

// NewDraft returns a draft with the questionnaire's defaults.
func NewDraft() *Draft {
	return &Draft{
		FamilySize:          "1",
		RiskTolerance:       RiskMedium,
		InvestmentTimeframe: TimeframeMedium,
		KnowledgeLevel:      KnowledgeBeginner,
		FinancialAnxiety:    LevelMedium,
		DecisionMakingStyle: StyleAnalytical,
		CommunityInfluence:  LevelMedium,
	}
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
