package api

import (
	"time"

	"wingo/config"
	"wingo/models"
)

type roundView struct {
	ID           int64   `json:"id"`
	IssueNumber  string  `json:"issue_number"`
	State        string  `json:"state"`
	StartTime    int64   `json:"start_time"`
	EndTime      int64   `json:"end_time"`
	SecondsLeft  int64   `json:"seconds_left"`
	BettingOpen  bool    `json:"betting_open"`
	OutcomeDigit *int    `json:"outcome_digit,omitempty"`
	OutcomeColor *string `json:"outcome_color,omitempty"`
	OutcomeSize  *string `json:"outcome_size,omitempty"`
}

func newRoundView(round *models.Round, now time.Time, cfg *config.Config) roundView {
	secondsLeft := int64(round.EndTime.Sub(now).Seconds())
	if secondsLeft < 0 {
		secondsLeft = 0
	}

	view := roundView{
		ID:          round.ID,
		IssueNumber: round.IssueNumber,
		State:       string(round.State),
		StartTime:   round.StartTime.Unix(),
		EndTime:     round.EndTime.Unix(),
		SecondsLeft: secondsLeft,
		BettingOpen: round.AcceptsWagersAt(now, cfg.LockWindow),
	}
	view.OutcomeDigit = round.OutcomeDigit
	if round.OutcomeColor != nil {
		color := string(*round.OutcomeColor)
		view.OutcomeColor = &color
	}
	if round.OutcomeSize != nil {
		size := string(*round.OutcomeSize)
		view.OutcomeSize = &size
	}
	return view
}

type wagerView struct {
	ID              int64  `json:"id"`
	RoundID         int64  `json:"round_id"`
	Kind            string `json:"kind"`
	Value           string `json:"value"`
	Amount          string `json:"amount"`
	Multiplier      string `json:"multiplier"`
	PotentialPayout string `json:"potential_payout"`
	Resolution      string `json:"resolution"`
	CreatedAt       int64  `json:"created_at"`
	ResolvedAt      *int64 `json:"resolved_at,omitempty"`
}

func newWagerView(wager *models.Wager) wagerView {
	view := wagerView{
		ID:              wager.ID,
		RoundID:         wager.RoundID,
		Kind:            string(wager.Kind),
		Value:           wager.Value,
		Amount:          wager.Amount.StringFixed(2),
		Multiplier:      wager.Multiplier.String(),
		PotentialPayout: wager.PotentialPayout.StringFixed(2),
		Resolution:      string(wager.Resolution),
		CreatedAt:       wager.CreatedAt.Unix(),
	}
	if wager.ResolvedAt != nil {
		resolved := wager.ResolvedAt.Unix()
		view.ResolvedAt = &resolved
	}
	return view
}

func newWagerViews(wagers []*models.Wager) []wagerView {
	views := make([]wagerView, 0, len(wagers))
	for _, wager := range wagers {
		views = append(views, newWagerView(wager))
	}
	return views
}

type entryView struct {
	ID            int64  `json:"id"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	BalanceBefore string `json:"balance_before"`
	BalanceAfter  string `json:"balance_after"`
	Description   string `json:"description"`
	CreatedAt     int64  `json:"created_at"`
}

func newEntryViews(entries []*models.LedgerEntry) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entryView{
			ID:            entry.ID,
			Kind:          string(entry.Kind),
			Amount:        entry.Amount.StringFixed(2),
			BalanceBefore: entry.BalanceBefore.StringFixed(2),
			BalanceAfter:  entry.BalanceAfter.StringFixed(2),
			Description:   entry.Description,
			CreatedAt:     entry.CreatedAt.Unix(),
		})
	}
	return views
}

type accountView struct {
	ID           int64  `json:"id"`
	Balance      string `json:"balance"`
	TotalWagered string `json:"total_wagered"`
	TotalWon     string `json:"total_won"`
}

func newAccountView(account *models.Account) accountView {
	return accountView{
		ID:           account.ID,
		Balance:      account.Balance.StringFixed(2),
		TotalWagered: account.TotalWagered.StringFixed(2),
		TotalWon:     account.TotalWon.StringFixed(2),
	}
}
