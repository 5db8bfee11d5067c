package models

import "time"

// User is the backend's representation of the signed-in account, as returned
// by /auth/login, /auth/register and /auth/me.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the shared shape of the login and register responses.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// OnboardingPayload is the grouped profile the backend expects from
// POST /onboarding. The flat draft the wizard collects is shaped into this
// exactly once, at submission time.
type OnboardingPayload struct {
	Name                string              `json:"name"`
	Age                 int                 `json:"age"`
	Income              int                 `json:"income"`
	Goals               []string            `json:"goals"`
	InvestmentTimeframe string              `json:"investmentTimeframe"`
	RiskTolerance       string              `json:"riskTolerance"`
	ExistingInvestments []string            `json:"existingInvestments"`
	KnowledgeAssessment KnowledgeAssessment `json:"knowledgeAssessment"`
	Demographic         Demographic         `json:"demographic"`
	Psychological       Psychological       `json:"psychological"`
	Ethnographic        Ethnographic        `json:"ethnographic"`
}

type KnowledgeAssessment struct {
	FinancialKnowledgeLevel string `json:"financialKnowledgeLevel"`
}

type Demographic struct {
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
	Education  string `json:"education"`
	FamilySize int    `json:"familySize"`
	Phone      string `json:"phone"`
}

type Psychological struct {
	RiskTolerance       string `json:"riskTolerance"`
	FinancialAnxiety    string `json:"financialAnxiety"`
	DecisionMakingStyle string `json:"decisionMakingStyle"`
}

type Ethnographic struct {
	CulturalBackground string   `json:"culturalBackground"`
	FinancialBeliefs   []string `json:"financialBeliefs"`
	CommunityInfluence string   `json:"communityInfluence"`
}

// ChatMessage is one entry in the working transcript. IDs are assigned by
// transcript position when the message is created; they are not unique across
// transcripts.
type ChatMessage struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	IsBot bool   `json:"isBot"`
}

// Conversation is a saved, reloadable prior transcript shown in the history
// sidebar.
type Conversation struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Date     string        `json:"date"`
	Messages []ChatMessage `json:"messages"`
}

// HistoryMessage tolerates both message shapes the history endpoint has been
// observed to return: {content, sender:"bot"|"user"} and {text, isBot}.
type HistoryMessage struct {
	Content string `json:"content"`
	Text    string `json:"text"`
	Sender  string `json:"sender"`
	IsBot   bool   `json:"isBot"`
}

func (m HistoryMessage) Body() string {
	if m.Content != "" {
		return m.Content
	}
	return m.Text
}

func (m HistoryMessage) FromBot() bool {
	return m.Sender == "bot" || m.IsBot
}

// CurrencyRate is one row of the dashboard's currency widget, rates quoted in
// INR per unit of foreign currency.
type CurrencyRate struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Rate      float64 `json:"rate"`
	ChangePct float64 `json:"change"`
}

type MarketIndex struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	ChangePct float64 `json:"change"`
}

type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"publishedAt"`
}
