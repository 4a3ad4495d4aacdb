package admins

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/middleware"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/services"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

type ReviewProjectRequest struct {
	Action string  `json:"action" validate:"required"`
	Note   *string `json:"note,omitempty"`
}

// ReviewProjectHandler reviews a submitted project: approve publishes it,
// reject closes it, needs_changes sends it back to the developer.
func ReviewProjectHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid project id"})
		return
	}

	var req ReviewProjectRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
		return
	}
	if project.Status != models.ProjectStatusPendingReview {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Project is not pending review"})
		return
	}

	var newStatus, actionType, notifType, notifTitle string
	switch strings.ToLower(req.Action) {
	case "approve":
		newStatus = models.ProjectStatusApproved
		actionType = models.ActionProjectApproved
		notifType = "project_approved"
		notifTitle = "Project approved"
	case "reject":
		newStatus = models.ProjectStatusRejected
		actionType = models.ActionProjectRejected
		notifType = "project_rejected"
		notifTitle = "Project rejected"
	case "needs_changes":
		newStatus = models.ProjectStatusNeedsChanges
		actionType = models.ActionProjectUpdated
		notifType = "project_needs_changes"
		notifTitle = "Project needs changes"
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Action must be approve, reject or needs_changes"})
		return
	}

	now := time.Now()
	project.Status = newStatus
	project.ReviewedAt = &now
	project.ReviewNote = req.Note
	if newStatus == models.ProjectStatusApproved {
		end := now.Add(time.Duration(project.DurationDays) * 24 * time.Hour)
		project.StartDate = &now
		project.EndDate = &end
	}
	if err := database.DB.Save(&project).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to review project"})
		return
	}

	targetID := strconv.Itoa(int(project.ID))
	meta := map[string]interface{}{"status": newStatus}
	if req.Note != nil {
		meta["note"] = *req.Note
	}
	services.RecordAudit(database.DB, actionType, admin.ID, models.TargetProject, targetID, meta)
	services.RecordProjectLedger(database.DB, project.ID, actionType, admin.ID, meta)
	services.Notify(database.DB, project.DeveloperID, notifType, notifTitle,
		project.Title+" review result: "+newStatus, targetID, models.TargetProject)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Project reviewed", Data: project})
}

// ListArchiveRequestsHandler lists developer archive requests, pending first.
func ListArchiveRequestsHandler(w http.ResponseWriter, r *http.Request) {
	q := database.DB.Model(&models.ProjectArchiveRequest{})
	if status := strings.ToUpper(r.URL.Query().Get("status")); status != "" {
		q = q.Where("status = ?", status)
	}

	var requests []models.ProjectArchiveRequest
	if err := q.Preload("Project").Order("created_at DESC").Find(&requests).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Archive requests", Data: requests})
}

type ReviewArchiveRequest struct {
	Action string  `json:"action" validate:"required"`
	Note   *string `json:"note,omitempty"`
}

// ReviewArchiveRequestHandler decides a pending archive request. Approval
// archives the project and withdraws its unresolved investments.
func ReviewArchiveRequestHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request id"})
		return
	}

	var req ReviewArchiveRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	action := strings.ToLower(req.Action)
	if action != "approve" && action != "reject" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Action must be approve or reject"})
		return
	}

	var archiveReq models.ProjectArchiveRequest
	if err := database.DB.Preload("Project").First(&archiveReq, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Archive request not found"})
		return
	}
	if archiveReq.Status != models.ArchiveRequestPending {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Archive request already reviewed"})
		return
	}

	now := time.Now()
	archiveReq.ReviewedAt = &now
	archiveReq.ReviewedByID = &admin.ID
	archiveReq.ReviewNote = req.Note

	if action == "reject" {
		archiveReq.Status = models.ArchiveRequestRejected
		if err := database.DB.Save(&archiveReq).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
			return
		}
		services.Notify(database.DB, archiveReq.RequestedBy, "archive_rejected", "Archive request rejected",
			"Your archive request was rejected", strconv.Itoa(int(archiveReq.ProjectID)), models.TargetProject)
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Archive request rejected", Data: archiveReq})
		return
	}

	if archiveReq.Project == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
		return
	}
	if err := services.ArchiveProjectWithWithdrawals(database.DB, archiveReq.Project, admin, req.Note); err != nil {
		serviceError(w, err)
		return
	}

	archiveReq.Status = models.ArchiveRequestApproved
	if err := database.DB.Save(&archiveReq).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	services.Notify(database.DB, archiveReq.RequestedBy, "archive_approved", "Archive request approved",
		"Your project has been archived", strconv.Itoa(int(archiveReq.ProjectID)), models.TargetProject)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Project archived", Data: archiveReq})
}
