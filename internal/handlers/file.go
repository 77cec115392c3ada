// internal/handlers/file.go
package handlers

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/uni402-backend/internal/services"
	"github.com/javajoker/uni402-backend/internal/utils"
)

type FileHandler struct {
	storageService *services.StorageService
}

func NewFileHandler(storageService *services.StorageService) *FileHandler {
	return &FileHandler{
		storageService: storageService,
	}
}

// GET /uploads/*key?token=
// Links come from the content of an unlocked lesson; a bare path is refused.
func (h *FileHandler) ServeLessonFile(c *gin.Context) {
	filePath, err := h.storageService.LocalFilePath(c.Param("key"), c.Query("token"))
	if err != nil {
		utils.ForbiddenResponse(c, "")
		return
	}

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		utils.NotFoundResponse(c, "file")
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.File(filePath)
}
