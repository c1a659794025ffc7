package artworks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/anoixa/art-gallery/database"
	"github.com/anoixa/art-gallery/database/models"
	artworksrepo "github.com/anoixa/art-gallery/database/repo/artworks"
	tagssvc "github.com/anoixa/art-gallery/internal/services/tags"
	"github.com/anoixa/art-gallery/storage"
	"github.com/anoixa/art-gallery/utils/generator"
	"github.com/anoixa/art-gallery/utils/validator"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 作品不存在
	ErrNotFound = errors.New("artwork not found")

	// ErrAccessDenied 作品未通过审核，且访问者无权查看
	ErrAccessDenied = errors.New("access denied, artwork is not approved")

	// ErrNotOwner 只能操作自己的作品
	ErrNotOwner = errors.New("you can only modify your own artworks")

	// ErrNotPending 只有待审核的作品可以编辑
	ErrNotPending = errors.New("only pending artworks can be updated")

	// ErrAlreadyReviewed 作品已被审核
	ErrAlreadyReviewed = errors.New("this artwork has already been reviewed")

	// ErrInvalidReviewStatus 审核结果只能是 approved 或 rejected
	ErrInvalidReviewStatus = errors.New("status must be either approved or rejected")

	// ErrInvalidImage 上传内容不是允许的图片类型
	ErrInvalidImage = errors.New("uploaded file is not a supported image")

	// ErrImageTooLarge 图片超出大小限制
	ErrImageTooLarge = errors.New("uploaded image exceeds the size limit")

	// ErrNoFields 更新请求没有携带任何字段
	ErrNoFields = errors.New("no fields to update")
)

// Service 作品服务
type Service struct {
	db             *gorm.DB
	artworksRepo   *artworksrepo.Repository
	tagsService    *tagssvc.Service
	storageFactory *storage.Factory
	maxUploadBytes int64
}

// NewService 创建作品服务
func NewService(db *gorm.DB, artworksRepo *artworksrepo.Repository, tagsService *tagssvc.Service, storageFactory *storage.Factory, maxUploadMB int) *Service {
	return &Service{
		db:             db,
		artworksRepo:   artworksRepo,
		tagsService:    tagsService,
		storageFactory: storageFactory,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// Filters 列表过滤条件
type Filters = artworksrepo.Filters

// SubmitInput 作品提交参数
type SubmitInput struct {
	Title       string
	Description string
	Medium      string
	Dimensions  string
	File        *multipart.FileHeader
}

// storeImage 校验并保存上传的图片，返回存储标识与像素尺寸
func (s *Service) storeImage(ctx context.Context, header *multipart.FileHeader) (identifier string, width, height int, err error) {
	if s.maxUploadBytes > 0 && header.Size > s.maxUploadBytes {
		return "", 0, 0, ErrImageTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() { _ = file.Close() }()

	ok, err := validator.IsImage(file)
	if err != nil {
		return "", 0, 0, err
	}
	if !ok {
		return "", 0, 0, ErrInvalidImage
	}

	width, height, err = validator.DecodeDimensions(file)
	if err != nil {
		return "", 0, 0, ErrInvalidImage
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	identifier = generator.NewImageIdentifier(ext)

	contentType := header.Header.Get("Content-Type")
	provider := s.storageFactory.GetDefault()
	if err := provider.SaveWithContext(ctx, identifier, file, header.Size, contentType); err != nil {
		return "", 0, 0, fmt.Errorf("failed to store uploaded image: %w", err)
	}

	return identifier, width, height, nil
}

// deleteStoredObject 尽力删除存储对象，失败只记录
func (s *Service) deleteStoredObject(ctx context.Context, identifier string) {
	provider := s.storageFactory.GetDefault()
	if err := provider.DeleteWithContext(ctx, identifier); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("Failed to delete stored object %s: %v", identifier, err)
	}
}

// Submit 提交新作品，初始状态为 pending
func (s *Service) Submit(ctx context.Context, artistID uint, input SubmitInput) (*models.Artwork, error) {
	identifier, width, height, err := s.storeImage(ctx, input.File)
	if err != nil {
		return nil, err
	}

	artwork := &models.Artwork{
		Title:       input.Title,
		Description: input.Description,
		Medium:      input.Medium,
		Dimensions:  input.Dimensions,
		Identifier:  identifier,
		ImageURL:    "/uploads/" + identifier,
		Width:       width,
		Height:      height,
		ArtistID:    artistID,
		Status:      models.ArtworkStatusPending,
	}

	if err := s.artworksRepo.WithContext(ctx).Create(artwork); err != nil {
		// 入库失败时回收已写入的对象
		s.deleteStoredObject(ctx, identifier)
		return nil, err
	}

	return s.artworksRepo.WithContext(ctx).GetByID(artwork.ID)
}

// Viewer 访问者身份，匿名访问时为零值
type Viewer struct {
	UserID uint
	Role   models.UserRole
}

// canModerate 是否具有审核视角
func (v Viewer) canModerate() bool {
	return v.Role == models.RoleCurator || v.Role == models.RoleAdmin
}

// Get 获取单件作品并累加浏览计数
// 未通过审核的作品只有作者本人和策展人可见。
func (s *Service) Get(ctx context.Context, id uint, viewer Viewer) (*models.Artwork, error) {
	repo := s.artworksRepo.WithContext(ctx)

	// 计数先于读取，与展示页的行为保持一致
	if err := repo.IncrementViewCount(id); err != nil {
		return nil, err
	}

	artwork, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if artwork.Status != models.ArtworkStatusApproved && !viewer.canModerate() && viewer.UserID != artwork.ArtistID {
		return nil, ErrAccessDenied
	}

	return artwork, nil
}

// List 按条件分页获取作品
// 非策展人请求的状态会被覆盖为 approved，而不是与其求交。
func (s *Service) List(ctx context.Context, f Filters, viewer Viewer, limit, offset int) ([]*models.Artwork, int64, error) {
	if !viewer.canModerate() {
		f.Status = models.ArtworkStatusApproved
	}
	return s.artworksRepo.WithContext(ctx).List(f, limit, offset)
}

// UpdateInput 作品编辑参数，nil 字段不修改
type UpdateInput struct {
	Title       *string
	Description *string
	Medium      *string
	Dimensions  *string
	File        *multipart.FileHeader
}

// Update 编辑作品元数据，可同时替换图片
// 只有作者本人可以编辑，且仅限待审核状态；管理员不受限制。
func (s *Service) Update(ctx context.Context, id uint, actor Viewer, input UpdateInput) (*models.Artwork, error) {
	repo := s.artworksRepo.WithContext(ctx)

	artwork, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	isAdmin := actor.Role == models.RoleAdmin
	if artwork.ArtistID != actor.UserID && !isAdmin {
		return nil, ErrNotOwner
	}
	if artwork.Status != models.ArtworkStatusPending && !isAdmin {
		return nil, ErrNotPending
	}

	fields := make(map[string]interface{})
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Medium != nil {
		fields["medium"] = *input.Medium
	}
	if input.Dimensions != nil {
		fields["dimensions"] = *input.Dimensions
	}

	if len(fields) == 0 && input.File == nil {
		return nil, ErrNoFields
	}

	oldIdentifier := ""
	if input.File != nil {
		identifier, width, height, err := s.storeImage(ctx, input.File)
		if err != nil {
			return nil, err
		}
		oldIdentifier = artwork.Identifier
		fields["identifier"] = identifier
		fields["image_url"] = "/uploads/" + identifier
		fields["width"] = width
		fields["height"] = height

		if err := repo.Updates(id, fields); err != nil {
			s.deleteStoredObject(ctx, identifier)
			return nil, err
		}

		// 记录更新成功后才移除旧图，删除失败不影响结果
		s.deleteStoredObject(ctx, oldIdentifier)
		return repo.GetByID(id)
	}

	if len(fields) > 0 {
		if err := repo.Updates(id, fields); err != nil {
			return nil, err
		}
	}

	return repo.GetByID(id)
}

// Delete 删除作品及其存储对象
// 只有作者本人或管理员可以删除。
func (s *Service) Delete(ctx context.Context, id uint, actor Viewer) error {
	repo := s.artworksRepo.WithContext(ctx)

	artwork, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if artwork.ArtistID != actor.UserID && actor.Role != models.RoleAdmin {
		return ErrNotOwner
	}

	if err := repo.Delete(id); err != nil {
		return err
	}

	// 存储对象删除失败不回滚数据库，记录后继续
	s.deleteStoredObject(ctx, artwork.Identifier)

	return nil
}

// Like 点赞，无需登录，重复调用重复计数
func (s *Service) Like(ctx context.Context, id uint) error {
	repo := s.artworksRepo.WithContext(ctx)

	if _, err := repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return repo.IncrementLikeCount(id)
}

// ReviewInput 审核参数
type ReviewInput struct {
	Status   models.ArtworkStatus
	Feedback string
	Tags     []string
}

// Review 审核作品，状态更新与标签替换在同一事务中完成
// 只有 pending 状态的作品可以被审核，审核结果不可逆。
func (s *Service) Review(ctx context.Context, id uint, curatorID uint, input ReviewInput) (*models.Artwork, error) {
	if !input.Status.ReviewOutcome() {
		return nil, ErrInvalidReviewStatus
	}

	err := database.TransactionWithContext(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.artworksRepo.WithTx(tx)

		artwork, err := repo.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if artwork.Status != models.ArtworkStatusPending {
			return ErrAlreadyReviewed
		}

		fields := map[string]interface{}{
			"status":     input.Status,
			"curator_id": curatorID,
		}
		if input.Feedback != "" {
			fields["curator_feedback"] = input.Feedback
		} else {
			fields["curator_feedback"] = nil
		}
		if err := repo.Updates(id, fields); err != nil {
			return err
		}

		// 标签仅在提供时替换，留空保持原有标签
		if len(input.Tags) > 0 {
			if _, err := s.tagsService.ReplaceForArtworkTx(tx, id, input.Tags); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.artworksRepo.WithContext(ctx).GetByID(id)
}

// PendingQueue 获取待审核队列
func (s *Service) PendingQueue(ctx context.Context, limit, offset int) ([]*models.Artwork, int64, error) {
	return s.artworksRepo.WithContext(ctx).ListPending(limit, offset)
}

// ReviewHistory 获取策展人的审核历史
func (s *Service) ReviewHistory(ctx context.Context, curatorID uint, limit, offset int) ([]*models.Artwork, int64, error) {
	return s.artworksRepo.WithContext(ctx).ListReviewedBy(curatorID, limit, offset)
}

// GetByIdentifier 通过存储标识获取作品
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*models.Artwork, error) {
	artwork, err := s.artworksRepo.WithContext(ctx).GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return artwork, nil
}

// OpenImage 打开作品图片流
func (s *Service) OpenImage(ctx context.Context, identifier string) (io.ReadSeekCloser, error) {
	return s.storageFactory.GetDefault().GetWithContext(ctx, identifier)
}
