package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"budgets/internal/core"
	"budgets/internal/log"
	"budgets/internal/notify"
)

type tableData struct {
	ContactID int64
	Rows      []budgetRow
	Totals    []currencyTotalView
}

type editData struct {
	ID        int64
	ContactID int64
	Name      string
	Amount    string
	StartDate string
	EndDate   string
	Currency  string
}

func (s *Server) loadTable(ctx context.Context, contactID int64) (tableData, error) {
	budgets, err := s.budgets.BudgetsForContact(ctx, contactID)
	if err != nil {
		return tableData{}, err
	}
	return tableData{
		ContactID: contactID,
		Rows:      toBudgetRows(budgets),
		Totals:    toTotalsView(budgets),
	}, nil
}

// handleBudgetTable renders the budget table partial for ?contact_id=.
func (s *Server) handleBudgetTable(w http.ResponseWriter, r *http.Request) {
	contactID := queryContactID(r)
	if contactID == 0 {
		BadRequestError("Select a contact").Write(w)
		return
	}

	table, err := s.loadTable(r.Context(), contactID)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "budget_table.html", table)
}

// handleEditBudget renders the edit form partial for one budget.
func (s *Server) handleEditBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	b, err := s.budgets.Budget(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}

	s.render(w, r, http.StatusOK, "budget_edit.html", editData{
		ID:        b.ID,
		ContactID: b.ContactID,
		Name:      b.Name,
		Amount:    b.TotalBudget.String(),
		StartDate: b.StartDate.String(),
		EndDate:   b.EndDate.String(),
		Currency:  b.Currency,
	})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		bodyErrorResponse(err).Write(w)
		return
	}

	b, err := ParseBudget(p)
	if err != nil {
		s.writeError(w, r, log.OpParse, err)
		return
	}

	ctx, notes := notify.NewContext(r.Context())
	id, err := s.budgets.CreateBudget(ctx, b)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	s.writeSuccess(w, r, http.StatusCreated, b.ContactID, notes.Drain(), strconv.FormatInt(id, 10))
}

// handleUpdateBudget applies only the fields present in the body.
func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		bodyErrorResponse(err).Write(w)
		return
	}

	u, err := ParseBudgetUpdate(p)
	if err != nil {
		s.writeError(w, r, log.OpParse, err)
		return
	}

	ctx, notes := notify.NewContext(r.Context())
	if _, err := s.budgets.UpdateBudget(ctx, id, u); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}

	s.writeSuccess(w, r, http.StatusOK, requestContactID(r, p), notes.Drain(), "")
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	p := NewRequestBodyParser(w, r)
	_ = p.Parse()

	ctx, notes := notify.NewContext(r.Context())
	if _, err := s.budgets.DeleteBudget(ctx, id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}

	s.writeSuccess(w, r, http.StatusOK, requestContactID(r, p), notes.Drain(), "")
}

// requestContactID is the optional contact_id a form or query string sends
// along so the page can return to the same contact.
func requestContactID(r *http.Request, p *RequestBodyParser) int64 {
	id, err := strconv.ParseInt(p.Get(fieldContactID), 10, 64)
	if err != nil || id < 0 {
		return queryContactID(r)
	}
	return id
}

// writeSuccess answers htmx with triggers only; plain form posts are
// redirected back to the page.
func (s *Server) writeSuccess(w http.ResponseWriter, r *http.Request, status int, contactID int64, notes []notify.Notification, body string) {
	if !isHTMX(r) {
		target := "/"
		if contactID > 0 {
			target += "?" + fieldContactID + "=" + strconv.FormatInt(contactID, 10)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	NewHTMXResponse().
		Status(status).
		TriggerBudgetsChanged(contactID).
		TriggerFormReset().
		Notifications(notes).
		BodyString(body).
		Write(w)
}

// writeError maps service errors to responses. Validation problems are the
// caller's to fix (422), a missing budget is 404, anything else is ours.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var fe *FieldError
	switch {
	case errors.As(err, &fe):
		UnprocessableEntityError("Invalid " + fe.Error()).Write(w)
	case errors.Is(err, core.ErrContactNotFound):
		UnprocessableEntityError("The selected contact does not exist").Write(w)
	case core.IsValidation(err):
		UnprocessableEntityError("Invalid budget: " + validationMessage(err)).Write(w)
	case errors.Is(err, core.ErrBudgetNotFound):
		NotFoundError("Budget not found").Write(w)
	default:
		logger.ErrorContext(ctx, "Budget operation failed",
			log.FieldOperation, op,
			log.FieldError, err)
		InternalServerError("Something went wrong, the budget was not saved").Write(w)
		return
	}
	logger.WarnContext(ctx, "Budget request rejected",
		log.FieldOperation, op,
		log.FieldError, err)
}

// validationMessage returns the innermost validation sentinel text so the
// user does not see wrapping prefixes.
func validationMessage(err error) string {
	for _, target := range []error{
		core.ErrEmptyUpdate,
		core.ErrEmptyName,
		core.ErrNameTooLong,
		core.ErrInvalidAmount,
		core.ErrInvalidCurrency,
		core.ErrInvalidDateRange,
		core.ErrInvalidContact,
		core.ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
