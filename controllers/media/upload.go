package media

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

const maxUploadBytes = 5 << 20 // 5 MiB

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// UploadHandler stores a file in the object bucket and returns a signed URL.
// Used for avatars, project thumbnails and document attachments.
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.GetUserID(r); !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "File too large or malformed form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Missing file field"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unsupported file type"})
		return
	}

	objectName := fmt.Sprintf("uploads/%s%s", uuid.NewString(), ext)
	if err := utils.UploadToS3(objectName, file); err != nil {
		log.Printf("[media] upload error: %v", err)
		utils.WriteJSON(w, http.StatusBadGateway, utils.APIResponse{Success: false, Message: "Upload failed"})
		return
	}

	signedURL, err := utils.GenerateSignedURL(objectName, 7*24*3600)
	if err != nil {
		log.Printf("[media] sign url error: %v", err)
		utils.WriteJSON(w, http.StatusBadGateway, utils.APIResponse{Success: false, Message: "Upload stored but URL signing failed"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "File uploaded",
		Data: map[string]interface{}{
			"object": objectName,
			"url":    signedURL,
		},
	})
}
