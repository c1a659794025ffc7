package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateFromPassword(t *testing.T) {
	hash, err := GenerateFromPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	// 相同密码每次生成不同盐值
	other, err := GenerateFromPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := GenerateFromPassword("my-password")
	assert.NoError(t, err)

	ok, err := ComparePasswordAndHash("my-password", hash)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePasswordAndHash("wrong-password", hash)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestComparePasswordAndHash_InvalidFormat(t *testing.T) {
	_, err := ComparePasswordAndHash("password", "not-a-hash")
	assert.Error(t, err)

	_, err = ComparePasswordAndHash("password", "$bcrypt$whatever")
	assert.Error(t, err)
}
