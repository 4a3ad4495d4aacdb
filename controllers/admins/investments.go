package admins

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/middleware"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/services"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

func currentAdmin(r *http.Request) (*models.User, bool) {
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

func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAction):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown action"})
	case errors.Is(err, services.ErrInvalidState):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Investment is not in a state that allows this action"})
	case errors.Is(err, services.ErrResolutionRequired):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "User has unresolved investments; a resolution is required"})
	default:
		log.Printf("[admin] service error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
	}
}

// ListInvestmentsHandler lists all investments with filters. Stale approvals
// are swept first so admins never act on an expired row.
func ListInvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	services.SweepExpiredInvestments(database.DB)

	q := database.DB.Model(&models.Investment{})
	if status := strings.ToUpper(r.URL.Query().Get("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if v := r.URL.Query().Get("project_id"); v != "" {
		q = q.Where("project_id = ?", v)
	}
	if v := r.URL.Query().Get("investor_id"); v != "" {
		q = q.Where("investor_id = ?", v)
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var total int64
	q.Count(&total)

	var investments []models.Investment
	if err := q.Preload("Project").Preload("Investor").
		Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).
		Find(&investments).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Investments",
		Data: map[string]interface{}{
			"investments": investments,
			"total":       total,
			"page":        page,
			"limit":       limit,
		},
	})
}

type ReviewInvestmentRequest struct {
	Action        string  `json:"action" validate:"required"`
	AdminNote     *string `json:"admin_note,omitempty"`
	ExpiresInDays *int    `json:"expires_in_days,omitempty"`
}

// ReviewInvestmentHandler approves or rejects a pending investment. An
// approve sets the payment deadline; re-approving an APPROVED investment
// renews it.
func ReviewInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	var req ReviewInvestmentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	// An absent expires_in_days means the default window; an explicit value
	// (including 0) is passed through and clamped by the review logic.
	days := services.DefaultApprovalDays
	if req.ExpiresInDays != nil {
		days = *req.ExpiresInDays
	}

	var inv models.Investment
	if err := database.DB.First(&inv, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}

	if err := services.ReviewInvestment(database.DB, &inv, strings.ToLower(req.Action), admin, req.AdminNote, days); err != nil {
		serviceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Investment reviewed", Data: inv})
}

type CompleteInvestmentRequest struct {
	AdminNote *string `json:"admin_note,omitempty"`
}

// CompleteInvestmentHandler finalizes a PROCESSING investment and commits the
// share sale.
func CompleteInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	var req CompleteInvestmentRequest
	if r.ContentLength > 0 {
		if err := middleware.ValidateJSON(w, r, &req); err != nil {
			return
		}
	}

	var inv models.Investment
	if err := database.DB.First(&inv, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}

	if err := services.CompleteInvestment(database.DB, &inv, admin, req.AdminNote); err != nil {
		serviceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Investment completed", Data: inv})
}

type AdminActionRequest struct {
	Action    string  `json:"action" validate:"required"`
	AdminNote *string `json:"admin_note,omitempty"`
}

// AdminActionHandler applies a post-settlement resolution (refund, withdraw
// or reverse) to an investment, releasing shares and crediting the wallet.
func AdminActionHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	var req AdminActionRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var inv models.Investment
	if err := database.DB.First(&inv, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
		return
	}

	if err := services.ApplyAdminAction(database.DB, &inv, strings.ToLower(req.Action), admin, req.AdminNote); err != nil {
		serviceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Action applied", Data: inv})
}
