package projects

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/middleware"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/services"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

type CreateProjectRequest struct {
	Title            string          `json:"title" validate:"required"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	Category         string          `json:"category"`
	TotalValue       decimal.Decimal `json:"total_value"`
	TotalShares      int             `json:"total_shares"`
	DurationDays     int             `json:"duration_days"`

	FinancialProjections *string `json:"financial_projections,omitempty"`
	BusinessPlan         *string `json:"business_plan,omitempty"`
	TeamDetails          *string `json:"team_details,omitempty"`
	RiskAssessment       *string `json:"risk_assessment,omitempty"`
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

// canSeeRestricted reports whether the caller may read the restricted content
// of a project: admins, the owning developer, and investors holding a live or
// completed investment in it.
func canSeeRestricted(user *models.User, project *models.Project) bool {
	if user.IsAdmin() || project.DeveloperID == user.ID {
		return true
	}
	var n int64
	statuses := append([]string{models.InvestmentStatusCompleted}, models.ActiveInvestmentStatuses...)
	database.DB.Model(&models.Investment{}).
		Where("investor_id = ? AND project_id = ? AND status IN ?", user.ID, project.ID, statuses).
		Count(&n)
	return n > 0
}

func sanitizeProject(p *models.Project, entitled bool) {
	if entitled {
		return
	}
	p.FinancialProjections = nil
	p.BusinessPlan = nil
	p.TeamDetails = nil
	p.RiskAssessment = nil
}

// CreateProjectHandler creates a DRAFT project owned by the calling developer.
func CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	if user.Role != models.RoleDeveloper && !user.IsAdmin() {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Only developers can create projects"})
		return
	}

	var req CreateProjectRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.TotalShares <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "total_shares must be positive"})
		return
	}
	if req.TotalValue.LessThanOrEqual(decimal.Zero) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "total_value must be positive"})
		return
	}
	if req.DurationDays <= 0 {
		req.DurationDays = 30
	}
	category := strings.ToUpper(strings.TrimSpace(req.Category))
	if category == "" {
		category = "OTHER"
	}

	project := models.Project{
		DeveloperID:      user.ID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Category:         category,
		Status:           models.ProjectStatusDraft,
		TotalValue:       req.TotalValue,
		TotalShares:      req.TotalShares,
		DurationDays:     req.DurationDays,

		FinancialProjections: req.FinancialProjections,
		BusinessPlan:         req.BusinessPlan,
		TeamDetails:          req.TeamDetails,
		RiskAssessment:       req.RiskAssessment,
	}
	project.HasRestrictedFields = req.FinancialProjections != nil || req.BusinessPlan != nil ||
		req.TeamDetails != nil || req.RiskAssessment != nil

	if err := database.DB.Create(&project).Error; err != nil {
		log.Printf("[projects] create error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create project"})
		return
	}

	services.RecordAudit(database.DB, models.ActionProjectCreated, user.ID, models.TargetProject, strconv.Itoa(int(project.ID)), map[string]interface{}{
		"title":        project.Title,
		"total_value":  project.TotalValue.String(),
		"total_shares": project.TotalShares,
	})

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Project created", Data: project})
}

// ListProjectsHandler lists projects visible to the caller. Investors see
// approved projects; developers additionally see their own; admins see all.
func ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	q := database.DB.Model(&models.Project{})
	switch {
	case user.IsAdmin():
		// no visibility filter
	case user.Role == models.RoleDeveloper:
		q = q.Where("status = ? OR developer_id = ?", models.ProjectStatusApproved, user.ID)
	default:
		q = q.Where("status = ?", models.ProjectStatusApproved)
	}

	if status := strings.ToUpper(r.URL.Query().Get("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if category := strings.ToUpper(r.URL.Query().Get("category")); category != "" {
		q = q.Where("category = ?", category)
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	q.Count(&total)

	var projects []models.Project
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&projects).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	for i := range projects {
		sanitizeProject(&projects[i], canSeeRestricted(user, &projects[i]))
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Projects",
		Data: map[string]interface{}{
			"projects": projects,
			"total":    total,
			"page":     page,
			"limit":    limit,
		},
	})
}

// GetProjectHandler returns one project, stripping restricted fields unless
// the caller is entitled to them.
func GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid project id"})
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
		return
	}

	visible := project.Status == models.ProjectStatusApproved ||
		project.Status == models.ProjectStatusArchived ||
		project.DeveloperID == user.ID || user.IsAdmin()
	if !visible {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
		return
	}

	sanitizeProject(&project, canSeeRestricted(user, &project))

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Project",
		Data: map[string]interface{}{
			"project":          project,
			"per_share_price":  project.PerSharePrice(),
			"remaining_shares": project.RemainingShares(),
			"funding_progress": project.FundingProgress(),
		},
	})
}

type UpdateProjectRequest struct {
	Title            *string          `json:"title,omitempty"`
	Description      *string          `json:"description,omitempty"`
	ShortDescription *string          `json:"short_description,omitempty"`
	Category         *string          `json:"category,omitempty"`
	TotalValue       *decimal.Decimal `json:"total_value,omitempty"`
	TotalShares      *int             `json:"total_shares,omitempty"`
	DurationDays     *int             `json:"duration_days,omitempty"`

	FinancialProjections *string `json:"financial_projections,omitempty"`
	BusinessPlan         *string `json:"business_plan,omitempty"`
	TeamDetails          *string `json:"team_details,omitempty"`
	RiskAssessment       *string `json:"risk_assessment,omitempty"`
}

// UpdateProjectHandler edits an unpublished project. Only the owner may edit,
// and only while the project is DRAFT or NEEDS_CHANGES.
func UpdateProjectHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid project id"})
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
		return
	}
	if project.DeveloperID != user.ID && !user.IsAdmin() {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden"})
		return
	}
	if project.Status != models.ProjectStatusDraft && project.Status != models.ProjectStatusNeedsChanges {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Only draft projects can be edited"})
		return
	}

	var req UpdateProjectRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.ShortDescription != nil {
		project.ShortDescription = *req.ShortDescription
	}
	if req.Category != nil {
		project.Category = strings.ToUpper(strings.TrimSpace(*req.Category))
	}
	if req.TotalValue != nil {
		if req.TotalValue.LessThanOrEqual(decimal.Zero) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "total_value must be positive"})
			return
		}
		project.TotalValue = *req.TotalValue
	}
	if req.TotalShares != nil {
		if *req.TotalShares <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "total_shares must be positive"})
			return
		}
		project.TotalShares = *req.TotalShares
	}
	if req.DurationDays != nil && *req.DurationDays > 0 {
		project.DurationDays = *req.DurationDays
	}
	if req.FinancialProjections != nil {
		project.FinancialProjections = req.FinancialProjections
	}
	if req.BusinessPlan != nil {
		project.BusinessPlan = req.BusinessPlan
	}
	if req.TeamDetails != nil {
		project.TeamDetails = req.TeamDetails
	}
	if req.RiskAssessment != nil {
		project.RiskAssessment = req.RiskAssessment
	}
	project.HasRestrictedFields = project.FinancialProjections != nil || project.BusinessPlan != nil ||
		project.TeamDetails != nil || project.RiskAssessment != nil

	if err := database.DB.Save(&project).Error; err != nil {
		log.Printf("[projects] update error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update project"})
		return
	}

	services.RecordAudit(database.DB, models.ActionProjectUpdated, user.ID, models.TargetProject, strconv.Itoa(int(project.ID)), nil)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Project updated", Data: project})
}

// SubmitProjectHandler moves a draft into the review queue.
func SubmitProjectHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid project id"})
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
		return
	}
	if project.DeveloperID != user.ID {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden"})
		return
	}
	if project.Status != models.ProjectStatusDraft && project.Status != models.ProjectStatusNeedsChanges {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Project cannot be submitted in its current state"})
		return
	}

	now := time.Now()
	project.Status = models.ProjectStatusPendingReview
	project.SubmittedAt = &now
	if err := database.DB.Save(&project).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to submit project"})
		return
	}

	services.RecordAudit(database.DB, models.ActionProjectSubmitted, user.ID, models.TargetProject, strconv.Itoa(int(project.ID)), nil)
	services.NotifyAdmins(database.DB, "project_submitted", "Project submitted for review",
		project.Title+" is waiting for review", strconv.Itoa(int(project.ID)), models.TargetProject)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Project submitted for review", Data: project})
}

type ArchiveProjectRequest struct {
	Note *string `json:"note,omitempty"`
}

// ArchiveProjectHandler archives a project. Admins archive immediately, which
// withdraws every unresolved investment; developers file an archive request
// that an admin approves later.
func ArchiveProjectHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid project id"})
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
		return
	}

	var req ArchiveProjectRequest
	if r.ContentLength > 0 {
		if err := middleware.ValidateJSON(w, r, &req); err != nil {
			return
		}
	}

	if user.IsAdmin() {
		if err := services.ArchiveProjectWithWithdrawals(database.DB, &project, user, req.Note); err != nil {
			log.Printf("[projects] archive error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to archive project"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Project archived", Data: project})
		return
	}

	if project.DeveloperID != user.ID {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden"})
		return
	}
	if project.Status == models.ProjectStatusArchived {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Project is already archived"})
		return
	}

	var pending int64
	database.DB.Model(&models.ProjectArchiveRequest{}).
		Where("project_id = ? AND status = ?", project.ID, models.ArchiveRequestPending).
		Count(&pending)
	if pending > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "An archive request is already pending"})
		return
	}

	archiveReq := models.ProjectArchiveRequest{
		ProjectID:   project.ID,
		RequestedBy: user.ID,
		Status:      models.ArchiveRequestPending,
		ReviewNote:  req.Note,
	}
	if err := database.DB.Create(&archiveReq).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to file archive request"})
		return
	}

	services.NotifyAdmins(database.DB, "archive_requested", "Archive request",
		"Archive requested for "+project.Title, strconv.Itoa(int(project.ID)), models.TargetProject)

	utils.WriteJSON(w, http.StatusAccepted, utils.APIResponse{Success: true, Message: "Archive request filed", Data: archiveReq})
}
