package generator

import (
	"strings"

	"github.com/google/uuid"
)

// NewImageIdentifier 为上传图片生成唯一对象名，扩展名来自原始文件
// 标识符保持单段，可直接作为 URL 路径片段和存储对象名。
func NewImageIdentifier(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id + strings.ToLower(ext)
}
