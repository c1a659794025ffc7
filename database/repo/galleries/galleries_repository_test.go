package galleries

import (
	"fmt"
	"testing"

	"github.com/anoixa/art-gallery/database/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	// 自动迁移
	err = db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Artwork{}, &models.Gallery{}, &models.GalleryArtwork{})
	assert.NoError(t, err)

	return db
}

// createCurator 创建策展人
func createCurator(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     models.RoleCurator,
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}

// createArtwork 创建已通过审核的作品
func createArtwork(t *testing.T, db *gorm.DB, title string) *models.Artwork {
	user := &models.User{
		Username: title + "-artist",
		Email:    title + "@example.com",
		Password: "hashed",
		Role:     models.RoleArtist,
	}
	assert.NoError(t, db.Create(user).Error)

	artwork := &models.Artwork{
		Title:      title,
		Medium:     "oil",
		Identifier: title + ".jpg",
		ImageURL:   "/uploads/" + title + ".jpg",
		ArtistID:   user.ID,
		Status:     models.ArtworkStatusApproved,
	}
	assert.NoError(t, db.Create(artwork).Error)
	return artwork
}

// --- 测试 Create 和 GetByID ---

func TestRepository_CreateAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{
		Name:        "Modern Voices",
		Description: "Contemporary works",
		CuratorID:   curator.ID,
	}
	assert.NoError(t, repo.Create(gallery))
	assert.NotZero(t, gallery.ID)

	got, err := repo.GetByID(gallery.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Modern Voices", got.Name)
	// 新画廊默认未发布
	assert.False(t, got.IsPublished)
	assert.Equal(t, "curator", got.Curator.Username)
}

// --- 测试 AddMember ---

func TestRepository_AddMember_OrderAppended(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{Name: "Show", CuratorID: curator.ID}
	assert.NoError(t, repo.Create(gallery))

	a := createArtwork(t, db, "a")
	b := createArtwork(t, db, "b")

	assert.NoError(t, repo.AddMember(gallery.ID, a.ID, nil))
	assert.NoError(t, repo.AddMember(gallery.ID, b.ID, nil))

	members, err := repo.GetMembers(gallery.ID)
	assert.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, a.ID, members[0].Artwork.ID)
	assert.Equal(t, 1, members[0].DisplayOrder)
	assert.Equal(t, b.ID, members[1].Artwork.ID)
	assert.Equal(t, 2, members[1].DisplayOrder)
}

func TestRepository_AddMember_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{Name: "Show", CuratorID: curator.ID}
	assert.NoError(t, repo.Create(gallery))

	a := createArtwork(t, db, "a")
	assert.NoError(t, repo.AddMember(gallery.ID, a.ID, nil))

	err := repo.AddMember(gallery.ID, a.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	count, err := repo.MemberCount(gallery.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// --- 测试 RemoveMember ---

func TestRepository_RemoveMember_LeavesGap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{Name: "Show", CuratorID: curator.ID}
	assert.NoError(t, repo.Create(gallery))

	a := createArtwork(t, db, "a")
	b := createArtwork(t, db, "b")
	c := createArtwork(t, db, "c")
	assert.NoError(t, repo.AddMember(gallery.ID, a.ID, nil))
	assert.NoError(t, repo.AddMember(gallery.ID, b.ID, nil))
	assert.NoError(t, repo.AddMember(gallery.ID, c.ID, nil))

	removed, err := repo.RemoveMember(gallery.ID, b.ID)
	assert.NoError(t, err)
	assert.True(t, removed)

	// 剩余顺序保留空洞，不压缩
	members, err := repo.GetMembers(gallery.ID)
	assert.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, 1, members[0].DisplayOrder)
	assert.Equal(t, 3, members[1].DisplayOrder)

	// 再添加时顺序接在最大值之后
	d := createArtwork(t, db, "d")
	assert.NoError(t, repo.AddMember(gallery.ID, d.ID, nil))
	members, err = repo.GetMembers(gallery.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4, members[2].DisplayOrder)
}

func TestRepository_RemoveMember_NotMember(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{Name: "Show", CuratorID: curator.ID}
	assert.NoError(t, repo.Create(gallery))

	removed, err := repo.RemoveMember(gallery.ID, 999)
	assert.NoError(t, err)
	assert.False(t, removed)
}

// --- 测试 UpdateOrder ---

func TestRepository_UpdateOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{Name: "Show", CuratorID: curator.ID}
	assert.NoError(t, repo.Create(gallery))

	a := createArtwork(t, db, "a")
	b := createArtwork(t, db, "b")
	assert.NoError(t, repo.AddMember(gallery.ID, a.ID, nil))
	assert.NoError(t, repo.AddMember(gallery.ID, b.ID, nil))

	err := repo.UpdateOrder(gallery.ID, []OrderEntry{
		{ArtworkID: a.ID, DisplayOrder: 2},
		{ArtworkID: b.ID, DisplayOrder: 1},
		// 不在画廊中的条目被忽略
		{ArtworkID: 999, DisplayOrder: 5},
	})
	assert.NoError(t, err)

	members, err := repo.GetMembers(gallery.ID)
	assert.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, b.ID, members[0].Artwork.ID)
	assert.Equal(t, a.ID, members[1].Artwork.ID)
}

// --- 测试 List ---

func TestRepository_List_PublishedOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	published := &models.Gallery{Name: "Public", CuratorID: curator.ID, IsPublished: true}
	draft := &models.Gallery{Name: "Draft", CuratorID: curator.ID}
	assert.NoError(t, repo.Create(published))
	assert.NoError(t, repo.Create(draft))

	a := createArtwork(t, db, "a")
	assert.NoError(t, repo.AddMember(published.ID, a.ID, nil))

	result, total, err := repo.List(Filters{}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, result, 1)
	assert.Equal(t, "Public", result[0].Gallery.Name)
	assert.Equal(t, int64(1), result[0].ArtworkCount)

	// 按策展人过滤
	_, total, err = repo.List(Filters{CuratorID: curator.ID}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = repo.List(Filters{CuratorID: 999}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRepository_List_TagAndSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{Name: "Modern Voices", Description: "new painting", CuratorID: curator.ID, IsPublished: true}
	assert.NoError(t, repo.Create(gallery))

	a := createArtwork(t, db, "a")
	assert.NoError(t, repo.AddMember(gallery.ID, a.ID, nil))

	tag := &models.Tag{Name: "abstract"}
	assert.NoError(t, db.Create(tag).Error)
	assert.NoError(t, db.Table("artwork_tags").Create(map[string]interface{}{
		"artwork_id": a.ID,
		"tag_id":     tag.ID,
	}).Error)

	// 标签过滤命中成员作品
	_, total, err := repo.List(Filters{Tag: "abstract"}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = repo.List(Filters{Tag: "landscape"}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// 关键词匹配名称、描述或策展人用户名
	for _, keyword := range []string{"Modern", "painting", "curator"} {
		_, total, err = repo.List(Filters{Search: keyword}, 10, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total, "search %q", keyword)
	}
}

func TestRepository_ListByCurator_IncludesDrafts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	other := createCurator(t, db, "other")
	assert.NoError(t, repo.Create(&models.Gallery{Name: "Mine", CuratorID: curator.ID}))
	assert.NoError(t, repo.Create(&models.Gallery{Name: "Mine Too", CuratorID: curator.ID, IsPublished: true}))
	assert.NoError(t, repo.Create(&models.Gallery{Name: "Theirs", CuratorID: other.ID}))

	result, total, err := repo.ListByCurator(curator.ID, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, result, 2)
}

// --- 测试 IncrementViewCount ---

func TestRepository_IncrementViewCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{Name: "Show", CuratorID: curator.ID, IsPublished: true}
	assert.NoError(t, repo.Create(gallery))

	assert.NoError(t, repo.IncrementViewCount(gallery.ID))
	assert.NoError(t, repo.IncrementViewCount(gallery.ID))

	got, err := repo.GetByID(gallery.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)
}

// --- 测试 Delete ---

func TestRepository_Delete_ClearsMembers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	curator := createCurator(t, db, "curator")
	gallery := &models.Gallery{Name: "Show", CuratorID: curator.ID}
	assert.NoError(t, repo.Create(gallery))

	a := createArtwork(t, db, "a")
	assert.NoError(t, repo.AddMember(gallery.ID, a.ID, nil))

	assert.NoError(t, repo.Delete(gallery.ID))

	_, err := repo.GetByID(gallery.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var links int64
	db.Model(&models.GalleryArtwork{}).Where("gallery_id = ?", gallery.ID).Count(&links)
	assert.Equal(t, int64(0), links)

	// 作品本身保留
	var artworkCount int64
	db.Model(&models.Artwork{}).Count(&artworkCount)
	assert.Equal(t, int64(1), artworkCount)
}
