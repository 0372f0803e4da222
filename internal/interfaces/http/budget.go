package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"centavo/internal/domain/budget"
	"centavo/internal/shared/middleware"
)

// BudgetService is the slice of the budget service the HTTP layer needs.
type BudgetService interface {
	CreateBudget(ctx context.Context, params budget.CreateParams) (*budget.Budget, error)
	GetBudgets(ctx context.Context, userID int64) ([]*budget.Status, error)
	UpdateBudget(ctx context.Context, id, userID int64, params budget.UpdateParams) (*budget.Budget, error)
	DeleteBudget(ctx context.Context, id, userID int64) error
}

type BudgetHandler struct {
	budgets BudgetService
}

func NewBudgetHandler(budgets BudgetService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

type CreateBudgetRequest struct {
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	AnchorDay int             `json:"anchorDay"`
}

type UpdateBudgetRequest struct {
	Limit     *decimal.Decimal `json:"limit,omitempty"`
	AnchorDay *int             `json:"anchorDay,omitempty"`
}

// HandleBudgets serves GET (list with derived spend) and POST (create)
// on /api/budgets.
func (h *BudgetHandler) HandleBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.listBudgets(w, r, userID)
	case http.MethodPost:
		h.createBudget(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BudgetHandler) listBudgets(w http.ResponseWriter, r *http.Request, userID int64) {
	statuses, err := h.budgets.GetBudgets(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing budgets for user %d: %v", userID, err)
		http.Error(w, "Failed to list budgets", http.StatusInternalServerError)
		return
	}

	if statuses == nil {
		statuses = []*budget.Status{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statuses)
}

func (h *BudgetHandler) createBudget(w http.ResponseWriter, r *http.Request, userID int64) {
	var req CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.budgets.CreateBudget(r.Context(), budget.CreateParams{
		UserID:    userID,
		Category:  req.Category,
		Limit:     req.Limit,
		AnchorDay: req.AnchorDay,
	})
	if err != nil {
		switch {
		case errors.Is(err, budget.ErrInvalidCategory),
			errors.Is(err, budget.ErrInvalidLimit),
			errors.Is(err, budget.ErrInvalidDay):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, budget.ErrDuplicate):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("Error creating budget for user %d: %v", userID, err)
			http.Error(w, "Failed to create budget", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// HandleBudgetByID serves PATCH (update) and DELETE on /api/budgets/{id}.
func (h *BudgetHandler) HandleBudgetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		h.updateBudget(w, r, id, userID)
	case http.MethodDelete:
		h.deleteBudget(w, r, id, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BudgetHandler) updateBudget(w http.ResponseWriter, r *http.Request, id, userID int64) {
	var req UpdateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.budgets.UpdateBudget(r.Context(), id, userID, budget.UpdateParams{
		Limit:     req.Limit,
		AnchorDay: req.AnchorDay,
	})
	if err != nil {
		switch {
		case errors.Is(err, budget.ErrBudgetNotFound):
			http.Error(w, "Budget not found", http.StatusNotFound)
		case errors.Is(err, budget.ErrInvalidLimit), errors.Is(err, budget.ErrInvalidDay):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error updating budget %d for user %d: %v", id, userID, err)
			http.Error(w, "Failed to update budget", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *BudgetHandler) deleteBudget(w http.ResponseWriter, r *http.Request, id, userID int64) {
	if err := h.budgets.DeleteBudget(r.Context(), id, userID); err != nil {
		if errors.Is(err, budget.ErrBudgetNotFound) {
			http.Error(w, "Budget not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting budget %d for user %d: %v", id, userID, err)
		http.Error(w, "Failed to delete budget", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
