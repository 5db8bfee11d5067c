package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/niveshpath/client/src/calculator"
	"github.com/niveshpath/client/src/chat"
	"github.com/niveshpath/client/src/market"
	"github.com/niveshpath/client/src/models"
	"github.com/niveshpath/client/src/onboarding"
	"github.com/niveshpath/client/src/session"
	"github.com/niveshpath/client/src/storage"
)

// App wires the client's services behind a small set of subcommands. It is
// navigation chrome only; all behavior lives in the service packages.
type App struct {
	Session    *session.Manager
	Chat       *chat.Cache
	Market     market.Service
	Onboarding *onboarding.Controller
	Store      *storage.Store

	In  io.Reader
	Out io.Writer
}

const usage = `niveshpath - personal finance client

Commands:
  register            create an account
  login               sign in
  logout              sign out
  whoami              show the current session
  onboard             run the profile questionnaire
  chat                talk to the financial advisor
  history             list saved conversations
  rates               currency rates
  markets             market indices
  news                RBI news feed
  sip                 SIP projection (-monthly -rate -years)
  emi                 loan EMI schedule (-amount -rate -years)
  budget              budget planner (-income -expenses name:amount,...)
  theme               show or set the theme (dark|light)
`

// Run dispatches one subcommand and returns a process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.Out, usage)
		return 2
	}
	command, rest := args[0], args[1:]

	switch command {
	case "register":
		return a.exit(a.register(ctx))
	case "login":
		return a.exit(a.login(ctx))
	case "logout":
		a.Session.Logout()
		fmt.Fprintln(a.Out, "Signed out.")
		return 0
	case "theme":
		return a.exit(a.theme(rest))
	case "help":
		fmt.Fprint(a.Out, usage)
		return 0
	}

	// Everything else is behind the route guard: restore the session once,
	// then decide.
	if err := a.Session.Restore(ctx); err != nil && !errors.Is(err, session.ErrSessionExpired) {
		fmt.Fprintf(a.Out, "error: %v\n", err)
		return 1
	}
	switch a.Session.Guard() {
	case session.DecisionRedirectLogin:
		fmt.Fprintln(a.Out, "You are not signed in. Run `niveshpath login` first.")
		return 1
	case session.DecisionWait:
		// Restore has returned, so the guard can never still be waiting here.
		fmt.Fprintln(a.Out, "Session is still loading, try again.")
		return 1
	}

	switch command {
	case "whoami":
		return a.exit(a.whoami(ctx))
	case "onboard":
		return a.exit(a.onboard(ctx))
	case "chat":
		return a.exit(a.chatREPL(ctx))
	case "history":
		return a.exit(a.history(ctx))
	case "rates":
		return a.exit(a.rates(ctx))
	case "markets":
		return a.exit(a.markets(ctx))
	case "news":
		return a.exit(a.news(ctx))
	case "sip":
		return a.exit(a.sip(rest))
	case "emi":
		return a.exit(a.emi(rest))
	case "budget":
		return a.exit(a.budget(rest))
	default:
		fmt.Fprintf(a.Out, "unknown command %q\n\n%s", command, usage)
		return 2
	}
}

func (a *App) exit(err error) int {
	if err != nil {
		fmt.Fprintf(a.Out, "error: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) register(ctx context.Context) error {
	reader := bufio.NewReader(a.In)
	name := prompt(reader, a.Out, "Name: ")
	email := prompt(reader, a.Out, "Email: ")
	password := prompt(reader, a.Out, "Password: ")

	user, err := a.Session.Register(ctx, models.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Welcome, %s! Run `niveshpath onboard` to personalize your experience.\n", user.Name)
	return nil
}

func (a *App) login(ctx context.Context) error {
	reader := bufio.NewReader(a.In)
	email := prompt(reader, a.Out, "Email: ")
	password := prompt(reader, a.Out, "Password: ")

	user, err := a.Session.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Login successful! Signed in as %s <%s>.\n", user.Name, user.Email)
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	user := a.Session.CurrentUser()
	fmt.Fprintf(a.Out, "Signed in as %s <%s> (id %d)\n", user.Name, user.Email, user.ID)
	if expiry, ok := a.Session.TokenExpiry(); ok {
		fmt.Fprintf(a.Out, "Session valid until %s\n", expiry.Format("2006-01-02 15:04"))
	}
	if a.Session.OnboardingCompleted(ctx) {
		fmt.Fprintln(a.Out, "Onboarding: completed")
	} else {
		fmt.Fprintln(a.Out, "Onboarding: pending (run `niveshpath onboard`)")
	}
	return nil
}

func (a *App) chatREPL(ctx context.Context) error {
	a.Chat.Load(ctx)
	for _, msg := range a.Chat.Messages() {
		printMessage(a.Out, msg)
	}
	fmt.Fprintln(a.Out, "(type your question, or /new, /clear, /quit)")

	scanner := bufio.NewScanner(a.In)
	for {
		fmt.Fprint(a.Out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/new":
			a.Chat.StartNew()
			fmt.Fprintln(a.Out, "Started a new conversation.")
			continue
		case "/clear":
			a.Chat.Clear()
			fmt.Fprintln(a.Out, "Chat cleared.")
			continue
		}

		before := len(a.Chat.Messages())
		if err := a.Chat.SendMessage(ctx, line); err != nil {
			fmt.Fprintf(a.Out, "! %v\n", err)
		}
		for _, msg := range a.Chat.Messages()[before:] {
			printMessage(a.Out, msg)
		}
	}
}

func (a *App) history(ctx context.Context) error {
	a.Chat.Load(ctx)
	history := a.Chat.History()
	if len(history) == 0 {
		fmt.Fprintln(a.Out, "No saved conversations.")
		return nil
	}
	for i, conv := range history {
		fmt.Fprintf(a.Out, "%2d. %s (%s, %d messages)\n", i+1, conv.Title, conv.Date, len(conv.Messages))
	}
	return nil
}

func (a *App) rates(ctx context.Context) error {
	rates, err := a.Market.GetCurrencyRates(ctx)
	if err != nil {
		return err
	}
	for _, r := range rates {
		fmt.Fprintf(a.Out, "%-4s %-15s ₹%8.2f  %+.2f%%\n", r.Code, r.Name, r.Rate, r.ChangePct)
	}
	return nil
}

func (a *App) markets(ctx context.Context) error {
	indices, err := a.Market.GetMarkets(ctx)
	if err != nil {
		return err
	}
	for _, idx := range indices {
		fmt.Fprintf(a.Out, "%-20s %12.2f  %+.2f%%\n", idx.Name, idx.Value, idx.ChangePct)
	}
	return nil
}

func (a *App) news(ctx context.Context) error {
	items, err := a.Market.GetRBINews(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Fprintf(a.Out, "- %s (%s)\n", item.Title, item.PublishedAt.Format("2006-01-02"))
	}
	return nil
}

func (a *App) sip(args []string) error {
	fs := flag.NewFlagSet("sip", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	monthly := fs.Float64("monthly", 5000, "monthly investment (₹)")
	ratePct := fs.Float64("rate", 12, "expected annual return (%)")
	years := fs.Int("years", 10, "investment period (years)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := calculator.SIP(*monthly, *ratePct, *years)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Invested: ₹%d\nEstimated returns: ₹%d\nTotal value: ₹%d\n",
		result.TotalInvestment, result.EstimatedReturns, result.TotalValue)
	for _, y := range result.YearlyData {
		fmt.Fprintf(a.Out, "  year %2d: invested ₹%d, value ₹%d\n", y.Year, y.InvestedAmount, y.EstimatedValue)
	}
	return nil
}

func (a *App) emi(args []string) error {
	fs := flag.NewFlagSet("emi", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	amount := fs.Float64("amount", 1000000, "loan amount (₹)")
	ratePct := fs.Float64("rate", 8.5, "annual interest rate (%)")
	years := fs.Int("years", 20, "tenure (years)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := calculator.EMI(*amount, *ratePct, *years)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "EMI: ₹%d\nTotal interest: ₹%d\nTotal payment: ₹%d\n",
		result.EMI, result.TotalInterest, result.TotalPayment)
	return nil
}

func (a *App) budget(args []string) error {
	fs := flag.NewFlagSet("budget", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	income := fs.Float64("income", 0, "monthly income (₹)")
	expensesArg := fs.String("expenses", "", "comma-separated name:amount pairs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var expenses []calculator.BudgetExpense
	if *expensesArg != "" {
		for _, pair := range strings.Split(*expensesArg, ",") {
			name, amountStr, found := strings.Cut(pair, ":")
			if !found {
				return fmt.Errorf("invalid expense %q, expected name:amount", pair)
			}
			amount, err := strconv.ParseFloat(amountStr, 64)
			if err != nil {
				return fmt.Errorf("invalid expense amount %q", amountStr)
			}
			expenses = append(expenses, calculator.BudgetExpense{Name: strings.TrimSpace(name), Amount: amount})
		}
	}

	result, err := calculator.Budget(*income, expenses)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Income: ₹%d\nExpenses: ₹%d\nSavings: ₹%d (%.2f%%)\n",
		result.Income, result.TotalExpenses, result.Savings, result.SavingsRatePct)
	fmt.Fprintf(a.Out, "50/30/20 guideline: needs ₹%d, wants ₹%d, savings ₹%d\n",
		result.RecommendedNeeds, result.RecommendedWants, result.RecommendedSavings)
	return nil
}

func (a *App) theme(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.Out, "Theme: %s\n", a.Store.Theme())
		return nil
	}
	theme := args[0]
	if theme != "dark" && theme != "light" {
		return fmt.Errorf("unknown theme %q, expected dark or light", theme)
	}
	if err := a.Store.SetTheme(theme); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Theme set to %s.\n", theme)
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func printMessage(out io.Writer, msg models.ChatMessage) {
	speaker := "you"
	if msg.IsBot {
		speaker = "advisor"
	}
	fmt.Fprintf(out, "[%s] %s\n", speaker, msg.Text)
}
