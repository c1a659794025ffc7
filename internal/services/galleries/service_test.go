package galleries

import (
	"context"
	"fmt"
	"testing"

	"github.com/anoixa/art-gallery/database/models"
	artworksrepo "github.com/anoixa/art-gallery/database/repo/artworks"
	galleriesrepo "github.com/anoixa/art-gallery/database/repo/galleries"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupService 创建测试服务
func setupService(t *testing.T) (*Service, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Artwork{}, &models.Gallery{}, &models.GalleryArtwork{})
	assert.NoError(t, err)

	svc := NewService(galleriesrepo.NewRepository(db), artworksrepo.NewRepository(db))
	return svc, db
}

// createUser 创建测试用户
func createUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}

// createArtwork 创建测试作品
func createArtwork(t *testing.T, db *gorm.DB, artistID uint, title string, status models.ArtworkStatus) *models.Artwork {
	artwork := &models.Artwork{
		Title:      title,
		Medium:     "oil",
		Identifier: title + ".jpg",
		ImageURL:   "/uploads/" + title + ".jpg",
		ArtistID:   artistID,
		Status:     status,
	}
	assert.NoError(t, db.Create(artwork).Error)
	return artwork
}

func asCurator(user *models.User) Actor {
	return Actor{UserID: user.ID, Role: user.Role}
}

// --- 测试创建与可见性 ---

func TestService_CreateAndGet(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	curator := createUser(t, db, "curator", models.RoleCurator)
	gallery, err := svc.Create(ctx, curator.ID, "New Voices", "Emerging artists")
	assert.NoError(t, err)
	assert.False(t, gallery.IsPublished)

	// 未发布画廊匿名不可见
	_, err = svc.Get(ctx, gallery.ID, Actor{})
	assert.ErrorIs(t, err, ErrAccessDenied)

	// 其他策展人不可见
	other := createUser(t, db, "other", models.RoleCurator)
	_, err = svc.Get(ctx, gallery.ID, asCurator(other))
	assert.ErrorIs(t, err, ErrAccessDenied)

	// 所属策展人可见，草稿的成功读取同样累加浏览计数
	detail, err := svc.Get(ctx, gallery.ID, asCurator(curator))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), detail.Gallery.ViewCount)

	// 管理员可见
	admin := createUser(t, db, "admin", models.RoleAdmin)
	detail, err = svc.Get(ctx, gallery.ID, asCurator(admin))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), detail.Gallery.ViewCount)

	_, err = svc.Get(ctx, 999, Actor{})
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- 测试发布门禁 ---

func TestService_Publish_RequiresMembers(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	curator := createUser(t, db, "curator", models.RoleCurator)
	gallery, err := svc.Create(ctx, curator.ID, "Empty Show", "")
	assert.NoError(t, err)

	// 空画廊不能发布
	_, err = svc.Publish(ctx, gallery.ID, asCurator(curator))
	assert.ErrorIs(t, err, ErrEmptyGallery)

	artist := createUser(t, db, "artist", models.RoleArtist)
	artwork := createArtwork(t, db, artist.ID, "piece", models.ArtworkStatusApproved)
	assert.NoError(t, svc.AddArtwork(ctx, gallery.ID, artwork.ID, asCurator(curator), nil))

	published, err := svc.Publish(ctx, gallery.ID, asCurator(curator))
	assert.NoError(t, err)
	assert.True(t, published.IsPublished)

	// 发布后匿名可见且累加浏览计数
	detail, err := svc.Get(ctx, gallery.ID, Actor{})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), detail.Gallery.ViewCount)
	assert.Len(t, detail.Members, 1)

	// 撤回后成员保持不变
	unpublished, err := svc.Unpublish(ctx, gallery.ID, asCurator(curator))
	assert.NoError(t, err)
	assert.False(t, unpublished.IsPublished)

	count, err := svc.galleriesRepo.MemberCount(gallery.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// --- 测试成员管理 ---

func TestService_AddArtwork_ApprovedOnly(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	curator := createUser(t, db, "curator", models.RoleCurator)
	artist := createUser(t, db, "artist", models.RoleArtist)
	gallery, err := svc.Create(ctx, curator.ID, "Show", "")
	assert.NoError(t, err)

	pending := createArtwork(t, db, artist.ID, "pending", models.ArtworkStatusPending)
	rejected := createArtwork(t, db, artist.ID, "rejected", models.ArtworkStatusRejected)
	approved := createArtwork(t, db, artist.ID, "approved", models.ArtworkStatusApproved)

	assert.ErrorIs(t, svc.AddArtwork(ctx, gallery.ID, pending.ID, asCurator(curator), nil), ErrArtworkNotApproved)
	assert.ErrorIs(t, svc.AddArtwork(ctx, gallery.ID, rejected.ID, asCurator(curator), nil), ErrArtworkNotApproved)
	assert.ErrorIs(t, svc.AddArtwork(ctx, gallery.ID, 999, asCurator(curator), nil), ErrArtworkNotFound)

	assert.NoError(t, svc.AddArtwork(ctx, gallery.ID, approved.ID, asCurator(curator), nil))

	// 重复加入报错
	assert.ErrorIs(t, svc.AddArtwork(ctx, gallery.ID, approved.ID, asCurator(curator), nil), ErrAlreadyMember)

	// 非画廊所有者不能添加
	other := createUser(t, db, "other", models.RoleCurator)
	assert.ErrorIs(t, svc.AddArtwork(ctx, gallery.ID, approved.ID, asCurator(other), nil), ErrNotOwner)
}

func TestService_RemoveAndReorder(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	curator := createUser(t, db, "curator", models.RoleCurator)
	artist := createUser(t, db, "artist", models.RoleArtist)
	gallery, err := svc.Create(ctx, curator.ID, "Show", "")
	assert.NoError(t, err)

	a := createArtwork(t, db, artist.ID, "a", models.ArtworkStatusApproved)
	b := createArtwork(t, db, artist.ID, "b", models.ArtworkStatusApproved)
	assert.NoError(t, svc.AddArtwork(ctx, gallery.ID, a.ID, asCurator(curator), nil))
	assert.NoError(t, svc.AddArtwork(ctx, gallery.ID, b.ID, asCurator(curator), nil))

	// 交换顺序
	err = svc.Reorder(ctx, gallery.ID, asCurator(curator), []OrderEntry{
		{ArtworkID: a.ID, DisplayOrder: 2},
		{ArtworkID: b.ID, DisplayOrder: 1},
	})
	assert.NoError(t, err)

	detail, err := svc.Get(ctx, gallery.ID, asCurator(curator))
	assert.NoError(t, err)
	assert.Equal(t, b.ID, detail.Members[0].Artwork.ID)
	assert.Equal(t, a.ID, detail.Members[1].Artwork.ID)

	assert.NoError(t, svc.RemoveArtwork(ctx, gallery.ID, a.ID, asCurator(curator)))
	assert.ErrorIs(t, svc.RemoveArtwork(ctx, gallery.ID, a.ID, asCurator(curator)), ErrNotMember)
}

func TestService_AddArtwork_ExplicitOrder(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	curator := createUser(t, db, "curator", models.RoleCurator)
	artist := createUser(t, db, "artist", models.RoleArtist)
	gallery, err := svc.Create(ctx, curator.ID, "Show", "")
	assert.NoError(t, err)

	a := createArtwork(t, db, artist.ID, "a", models.ArtworkStatusApproved)
	b := createArtwork(t, db, artist.ID, "b", models.ArtworkStatusApproved)

	assert.NoError(t, svc.AddArtwork(ctx, gallery.ID, a.ID, asCurator(curator), nil))

	// 指定顺序插到最前
	order := 0
	assert.NoError(t, svc.AddArtwork(ctx, gallery.ID, b.ID, asCurator(curator), &order))

	detail, err := svc.Get(ctx, gallery.ID, asCurator(curator))
	assert.NoError(t, err)
	assert.Equal(t, b.ID, detail.Members[0].Artwork.ID)
	assert.Equal(t, 0, detail.Members[0].DisplayOrder)
	assert.Equal(t, a.ID, detail.Members[1].Artwork.ID)
}

// --- 测试列表 ---

func TestService_ListAndListMine(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	curator := createUser(t, db, "curator", models.RoleCurator)
	artist := createUser(t, db, "artist", models.RoleArtist)

	draft, err := svc.Create(ctx, curator.ID, "Draft", "")
	assert.NoError(t, err)
	_ = draft

	public, err := svc.Create(ctx, curator.ID, "Public", "")
	assert.NoError(t, err)
	artwork := createArtwork(t, db, artist.ID, "piece", models.ArtworkStatusApproved)
	assert.NoError(t, svc.AddArtwork(ctx, public.ID, artwork.ID, asCurator(curator), nil))
	_, err = svc.Publish(ctx, public.ID, asCurator(curator))
	assert.NoError(t, err)

	// 公开列表只含已发布
	result, total, err := svc.List(ctx, Filters{}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Public", result[0].Gallery.Name)
	assert.Equal(t, int64(1), result[0].ArtworkCount)

	// 关键词搜索命中画廊名
	result, total, err = svc.List(ctx, Filters{Search: "pub"}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)

	result, total, err = svc.List(ctx, Filters{Search: "no-such"}, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, result)

	// 策展人自己的列表包含草稿
	mine, total, err := svc.ListMine(ctx, curator.ID, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)
}

// --- 测试编辑与删除 ---

func TestService_UpdateAndDelete(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	curator := createUser(t, db, "curator", models.RoleCurator)
	gallery, err := svc.Create(ctx, curator.ID, "Old Name", "")
	assert.NoError(t, err)

	name := "New Name"
	updated, err := svc.Update(ctx, gallery.ID, asCurator(curator), UpdateInput{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	other := createUser(t, db, "other", models.RoleCurator)
	_, err = svc.Update(ctx, gallery.ID, asCurator(other), UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotOwner)

	assert.ErrorIs(t, svc.Delete(ctx, gallery.ID, asCurator(other)), ErrNotOwner)
	assert.NoError(t, svc.Delete(ctx, gallery.ID, asCurator(curator)))
	assert.ErrorIs(t, svc.Delete(ctx, gallery.ID, asCurator(curator)), ErrNotFound)
}
