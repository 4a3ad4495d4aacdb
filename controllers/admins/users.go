package admins

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/middleware"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/services"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

// ListUsersHandler lists accounts with role and ban filters.
func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	q := database.DB.Model(&models.User{})
	if role := strings.ToUpper(r.URL.Query().Get("role")); role != "" {
		q = q.Where("role = ?", role)
	}
	if banned := r.URL.Query().Get("banned"); banned != "" {
		q = q.Where("is_banned = ?", banned == "true")
	}
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
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

	var users []models.User
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Users",
		Data: map[string]interface{}{
			"users": users,
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

type BanUserRequest struct {
	Resolution string  `json:"resolution"`
	Note       *string `json:"note,omitempty"`
}

// BanUserHandler bans an account. When the user still holds unresolved
// investments the caller must name a resolution (refund, withdraw or reverse)
// that is applied to each of them first.
func BanUserHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	if id == admin.ID {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You cannot ban yourself"})
		return
	}

	var req BanUserRequest
	if r.ContentLength > 0 {
		if err := middleware.ValidateJSON(w, r, &req); err != nil {
			return
		}
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	if user.IsBanned {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "User is already banned"})
		return
	}

	if err := services.BanUser(database.DB, &user, admin, strings.ToLower(req.Resolution), req.Note); err != nil {
		if errors.Is(err, services.ErrResolutionRequired) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "User has unresolved investments; a resolution is required",
				Data:    map[string]interface{}{"required_resolution": true},
			})
			return
		}
		serviceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "User banned", Data: user})
}
