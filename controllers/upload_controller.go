package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"projecthub/models"
	"projecthub/utils"
)

type UploadController struct {
	Logger   *log.Logger
	Uploader utils.Uploader
}

func NewUploadController(uploader utils.Uploader, logger *log.Logger) *UploadController {
	return &UploadController{
		Logger:   logger,
		Uploader: uploader,
	}
}

// Size ceilings per upload class, matching the provider's file router:
// images 4MB, PDFs 16MB, other text 4MB, generic blobs 32MB.
const (
	maxImageSize = 4 << 20
	maxPDFSize   = 16 << 20
	maxTextSize  = 4 << 20
	maxBlobSize  = 32 << 20
)

// classifyUpload buckets a content type into an upload class and returns its
// ceiling.
func classifyUpload(contentType string) (string, int64) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image", maxImageSize
	case contentType == "application/pdf":
		return "pdf", maxPDFSize
	case strings.HasPrefix(contentType, "text/"):
		return "text", maxTextSize
	default:
		return "blob", maxBlobSize
	}
}

// UploadFile forwards a multipart file to the object-storage provider and
// returns the stable URL plus the uploader's identity.
func (uc *UploadController) UploadFile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "A file is required", nil)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	class, limit := classifyUpload(contentType)
	if fileHeader.Size > limit {
		return utils.ErrorResponse(c, fiber.StatusRequestEntityTooLarge,
			"File exceeds the size limit for its type", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondActionError(c, "upload_failed", "Failed to upload file. Please try again.", err)
	}
	defer file.Close()

	url, err := uc.Uploader.Upload(fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		return respondActionError(c, "upload_failed", "Failed to upload file. Please try again.", err)
	}

	utils.LogEvent("upload_complete", map[string]interface{}{
		"user_id": user.ID,
		"class":   class,
		"size":    fileHeader.Size,
	})

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"url":         url,
		"uploaded_by": user.ID,
	}))
}
