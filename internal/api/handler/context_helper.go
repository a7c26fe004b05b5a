package handler

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"timeface/pkg/response"
)

// maxUploadBytes 单张照片上传上限
const maxUploadBytes = 8 << 20

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// readUpload 读取 multipart 表单中的单个文件
func readUpload(c *gin.Context, field string) ([]byte, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件: "+field)
		return nil, false
	}
	if fh.Size > maxUploadBytes {
		response.BadRequest(c, 10001, "上传文件过大")
		return nil, false
	}
	data, err := readFileHeader(fh)
	if err != nil || len(data) == 0 {
		response.BadRequest(c, 10001, "读取上传文件失败")
		return nil, false
	}
	return data, true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}
