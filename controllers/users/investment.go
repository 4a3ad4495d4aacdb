package users

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/middleware"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/services"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

type CreateInvestmentRequest struct {
	ProjectID   uint    `json:"project_id" validate:"required"`
	Shares      int     `json:"shares" validate:"required"`
	RequestNote *string `json:"request_note,omitempty"`
}

func currentUser(r *http.Request) (*models.User, bool) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func pathID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// serviceError maps domain errors to HTTP responses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvestorBanned):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Account suspended"})
	case errors.Is(err, services.ErrProjectNotOpen):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Project is not open for investment"})
	case errors.Is(err, services.ErrInsufficientShares):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not enough shares available"})
	case errors.Is(err, services.ErrDuplicateActive):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You already have an active investment in this project"})
	case errors.Is(err, services.ErrApprovalExpired):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Approval window has expired"})
	case errors.Is(err, services.ErrInvalidState):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Investment is not in a state that allows this action"})
	case errors.Is(err, services.ErrInvalidAction):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown action"})
	case errors.Is(err, services.ErrResolutionRequired):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "User has unresolved investments; a resolution is required"})
	default:
		log.Printf("[investments] service error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
	}
}

// expireIfStale lazily expires an APPROVED investment whose payment window has
// passed, so reads never surface a stale approval.
func expireIfStale(inv *models.Investment) {
	if inv.Status != models.InvestmentStatusApproved || inv.ApprovalExpiresAt == nil {
		return
	}
	if time.Now().Before(*inv.ApprovalExpiresAt) {
		return
	}
	if _, err := services.ExpireInvestment(database.DB, inv, 0); err != nil {
		log.Printf("[investments] lazy expire %d: %v", inv.ID, err)
	}
}

// CreateInvestmentHandler reserves shares in a project at the current price.
func CreateInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req CreateInvestmentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var project models.Project
	if err := database.DB.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	inv, err := services.RequestInvestment(database.DB, user, &project, req.Shares, req.RequestNote)
	if err != nil {
		serviceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Investment requested", Data: inv})
}

// ListInvestmentsHandler lists the caller's investments, expiring stale
// approvals along the way.
func ListInvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	q := database.DB.Where("investor_id = ?", user.ID)
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var investments []models.Investment
	if err := q.Preload("Project").Order("created_at DESC").Find(&investments).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	for i := range investments {
		expireIfStale(&investments[i])
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Investments", Data: investments})
}

// GetInvestmentHandler returns one investment with its payment history.
func GetInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	var inv models.Investment
	if err := database.DB.Preload("Project").First(&inv, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}
	if inv.InvestorID != user.ID && !user.IsAdmin() {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}

	expireIfStale(&inv)

	var payments []models.Payment
	database.DB.Where("investment_id = ?", inv.ID).Order("created_at ASC").Find(&payments)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Investment",
		Data: map[string]interface{}{
			"investment": inv,
			"payments":   payments,
		},
	})
}

type PayInvestmentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// PayInvestmentHandler settles an approved investment and moves it to
// PROCESSING.
func PayInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	var inv models.Investment
	if err := database.DB.First(&inv, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}
	if inv.InvestorID != user.ID {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}

	var req PayInvestmentRequest
	if r.ContentLength > 0 {
		if err := middleware.ValidateJSON(w, r, &req); err != nil {
			return
		}
	}

	payment, err := services.ProcessPayment(database.DB, &inv, user, req.PaymentMethod)
	if err != nil {
		serviceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Payment processed",
		Data: map[string]interface{}{
			"investment": inv,
			"payment":    payment,
		},
	})
}

// RevokeInvestmentHandler cancels the caller's own pending or approved
// investment.
func RevokeInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	var inv models.Investment
	if err := database.DB.First(&inv, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}
	if inv.InvestorID != user.ID {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}

	if err := services.RevokeInvestment(database.DB, &inv, user); err != nil {
		serviceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Investment revoked", Data: inv})
}
