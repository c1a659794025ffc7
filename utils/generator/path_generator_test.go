package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewImageIdentifier(t *testing.T) {
	id := NewImageIdentifier(".jpg")
	assert.True(t, strings.HasSuffix(id, ".jpg"))
	assert.Len(t, id, 36)
	// 单段，可直接用作 URL 路径片段
	assert.NotContains(t, id, "/")

	// 扩展名统一小写
	upper := NewImageIdentifier(".PNG")
	assert.True(t, strings.HasSuffix(upper, ".png"))

	// 每次生成不同
	assert.NotEqual(t, id, NewImageIdentifier(".jpg"))
}
