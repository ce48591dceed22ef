package http

import (
	"net/http"

	"pinledger/internal/core"
	"pinledger/internal/log"
)

type expenseView struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Display     string  `json:"display"`
}

type snapshotView struct {
	Expenses     []expenseView `json:"expenses"`
	Total        float64       `json:"total"`
	TotalDisplay string        `json:"total_display"`
	Currency     string        `json:"currency"`
}

func newExpenseView(e core.Expense, currency string) expenseView {
	return expenseView{
		ID:          e.ID,
		Amount:      e.Amount,
		Description: e.Description,
		Display:     core.FormatExpense(e, currency),
	}
}

func (s *Server) currency() string {
	if s.deps.Preferences == nil {
		return core.DefaultPreferences().Currency
	}
	return s.deps.Preferences.Get().Currency
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Ledger.Snapshot(r.Context())
	if err != nil {
		log.FromContext(r.Context()).Op(r.Context(), log.OpList, err)
		FromError(err).Write(w)
		return
	}

	currency := s.currency()
	view := snapshotView{
		Expenses:     make([]expenseView, 0, len(snap.Expenses)),
		Total:        snap.Total,
		TotalDisplay: core.FormatAmount(snap.Total, currency),
		Currency:     currency,
	}
	for _, e := range snap.Expenses {
		view.Expenses = append(view.Expenses, newExpenseView(e, currency))
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	e, err := s.deps.Ledger.Submit(r.Context(), p.Get("amount"), p.Get("description"))
	if err != nil {
		if !core.IsValidation(err) {
			log.FromContext(r.Context()).Op(r.Context(), log.OpCreate, err)
		}
		FromError(err).Write(w)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		log.NewFields().WithExpense(e.ID, e.Amount, e.Description).ToSlice()...)
	NewResponse().Status(http.StatusCreated).JSON(newExpenseView(e, s.currency())).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	e, err := s.deps.Ledger.Get(r.Context(), id)
	if err != nil {
		FromError(err).Write(w)
		return
	}
	NewResponse().JSON(newExpenseView(e, s.currency())).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.deps.Ledger.Delete(r.Context(), id); err != nil {
		log.FromContext(r.Context()).Op(r.Context(), log.OpDelete, err, log.FieldExpenseID, id)
		FromError(err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
