package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutHandler revokes the caller's access token jti and, when supplied, the
// refresh token. Always returns 200 so clients can clear state unconditionally.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		if _, claims, err := utils.ValidateAccessToken(tokenStr); err == nil {
			if jti, ok := claims["jti"].(string); ok && jti != "" {
				ttl := time.Hour
				if expRaw, ok := claims["exp"].(float64); ok {
					if until := time.Until(time.Unix(int64(expRaw), 0)); until > 0 {
						ttl = until
					}
				}
				_ = utils.RevokeJTI(jti, ttl)
			}
		}
	}

	var req LogoutRequest
	_ = decodeLoose(r, &req)
	if req.RefreshToken != "" {
		database.DB.Model(&models.RefreshToken{}).Where("id = ?", req.RefreshToken).Update("revoked", true)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Signed out"})
}

// decodeLoose decodes an optional JSON body, tolerating an empty one.
func decodeLoose(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// LogoutAllHandler revokes every refresh token belonging to the caller.
func LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	database.DB.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Update("revoked", true)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Signed out everywhere"})
}
