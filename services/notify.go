package services

import (
	"log"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"

	"gorm.io/gorm"
)

// Notify inserts a notification row for one user. Fire-and-forget: failures
// are logged and never affect the transition that emitted them.
func Notify(db *gorm.DB, userID uint, ntype, title, message, relatedID, relatedType string) {
	n := models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
	}
	if relatedID != "" {
		n.RelatedID = &relatedID
	}
	if relatedType != "" {
		n.RelatedType = &relatedType
	}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("[notify] failed to create notification type=%s user=%d: %v", ntype, userID, err)
	}
}

// NotifyAdmins fans a notification out to every admin.
func NotifyAdmins(db *gorm.DB, ntype, title, message, relatedID, relatedType string) {
	var admins []models.User
	if err := db.Select("id").Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		log.Printf("[notify] failed to list admins: %v", err)
		return
	}
	for _, admin := range admins {
		Notify(db, admin.ID, ntype, title, message, relatedID, relatedType)
	}
}
