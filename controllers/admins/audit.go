package admins

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

// AuditLogsHandler lists the global audit trail, newest first.
func AuditLogsHandler(w http.ResponseWriter, r *http.Request) {
	q := database.DB.Model(&models.AuditLog{})
	if action := strings.ToUpper(r.URL.Query().Get("action_type")); action != "" {
		q = q.Where("action_type = ?", action)
	}
	if target := strings.ToLower(r.URL.Query().Get("target_type")); target != "" {
		q = q.Where("target_type = ?", target)
	}
	if v := r.URL.Query().Get("actor_id"); v != "" {
		q = q.Where("actor_id = ?", v)
	}
	if v := r.URL.Query().Get("target_id"); v != "" {
		q = q.Where("target_id = ?", v)
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	q.Count(&total)

	var logs []models.AuditLog
	if err := q.Preload("Actor").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&logs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Audit logs",
		Data: map[string]interface{}{
			"logs":  logs,
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// ProjectLedgerHandler returns the per-project activity ledger, oldest first,
// so the full history of a project reads top to bottom.
func ProjectLedgerHandler(w http.ResponseWriter, r *http.Request) {
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

	var entries []models.ProjectLedgerEntry
	if err := database.DB.Where("project_id = ?", id).Order("created_at ASC").Find(&entries).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Project ledger",
		Data: map[string]interface{}{
			"project_id": project.ID,
			"entries":    entries,
		},
	})
}
