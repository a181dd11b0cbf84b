package handler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// 封面图片大小上限
const maxCoverBytes = 8 << 20

// UploadCover 处理文章封面上传，返回图片地址与尺寸
func (a *API) UploadCover(c *gin.Context) {
	// 获取上传的文件
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "no image uploaded")
		return
	}
	if file.Size > maxCoverBytes {
		respondError(c, http.StatusBadRequest, "image is too large")
		return
	}

	// 检查文件类型
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		respondError(c, http.StatusBadRequest, "only image files are allowed")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "image could not be read")
		return
	}
	cfg, format, err := image.DecodeConfig(src)
	src.Close()
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		respondError(c, http.StatusBadRequest, "unsupported image format")
		return
	}

	if err := os.MkdirAll(a.cfg.UploadDir, 0o755); err != nil {
		a.log.Error("create upload dir", zap.String("dir", a.cfg.UploadDir), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "upload directory unavailable")
		return
	}

	// 生成唯一文件名
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = "." + format
	}
	name := fmt.Sprintf("%s-%s%s", a.now().Format("20060102"), uuid.NewString(), ext)

	if err := c.SaveUploadedFile(file, filepath.Join(a.cfg.UploadDir, name)); err != nil {
		a.log.Error("save cover", zap.String("file", name), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "image could not be saved")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":    path.Join(a.cfg.UploadURLPath, name),
		"width":  cfg.Width,
		"height": cfg.Height,
	})
}
