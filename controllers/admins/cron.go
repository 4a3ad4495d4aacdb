package admins

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/database"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/services"
	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

// ExpireInvestmentsCronHandler sweeps expired approvals. Intended for an
// external scheduler; guarded by the X-CRON-KEY header instead of a JWT.
func ExpireInvestmentsCronHandler(w http.ResponseWriter, r *http.Request) {
	key := os.Getenv("CRON_KEY")
	if key == "" {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Cron endpoint disabled"})
		return
	}
	provided := r.Header.Get("X-CRON-KEY")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	expired := services.SweepExpiredInvestments(database.DB)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Sweep complete",
		Data:    map[string]interface{}{"expired": expired},
	})
}
