package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/anoixa/art-gallery/config"
	"github.com/studio-b12/gowebdav"
)

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg *config.Config) (*WebDAVStorage, error) {
	if cfg.WebDAVURL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.WebDAVRoot, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.WebDAVURL, cfg.WebDAVUsername, cfg.WebDAVPassword)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := &WebDAVStorage{client: client, rootPath: rootPath}

	if rootPath != "" {
		if err := s.run(ctx, func() error {
			err := client.MkdirAll(rootPath, os.FileMode(0755))
			if err != nil && isCollectionExistsError(err) {
				return nil
			}
			return err
		}); err != nil {
			return nil, fmt.Errorf("failed to prepare webdav root '%s': %w", rootPath, err)
		}
	}

	if err := s.Health(ctx); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return s, nil
}

// run 在独立 goroutine 中执行客户端调用，尊重 ctx 取消
func (s *WebDAVStorage) run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(identifier string) string {
	return s.rootPath + "/" + strings.TrimLeft(identifier, "/")
}

// isCollectionExistsError 判断是否为目录已存在的错误
func isCollectionExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	for _, marker := range []string{"already exists", "Conflict", "conflict", "409", "Method Not Allowed", "405"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// isNotFoundError 判断是否为文件不存在的错误
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if os.IsNotExist(err) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "404") || strings.Contains(errStr, "Not Found")
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, identifier string, file io.Reader, size int64, contentType string) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid storage identifier: %s", identifier)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	fullPath := s.fullPath(identifier)
	return s.run(ctx, func() error {
		if err := s.client.Write(fullPath, data, os.FileMode(0644)); err != nil {
			return fmt.Errorf("failed to write '%s' to webdav: %w", identifier, err)
		}
		return nil
	})
}

// readSeekNopCloser 为内存数据补上 Close
type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

// GetWithContext 从 WebDAV 获取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, identifier string) (io.ReadSeekCloser, error) {
	if !IsValidIdentifier(identifier) {
		return nil, fmt.Errorf("invalid storage identifier: %s", identifier)
	}

	fullPath := s.fullPath(identifier)

	var data []byte
	err := s.run(ctx, func() error {
		var readErr error
		data, readErr = s.client.Read(fullPath)
		return readErr
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read '%s' from webdav: %w", identifier, err)
	}

	return readSeekNopCloser{bytes.NewReader(data)}, nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, identifier string) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid storage identifier: %s", identifier)
	}

	fullPath := s.fullPath(identifier)
	err := s.run(ctx, func() error {
		return s.client.Remove(fullPath)
	})
	if err != nil {
		if isNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete '%s' from webdav: %w", identifier, err)
	}

	return nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	if !IsValidIdentifier(identifier) {
		return false, fmt.Errorf("invalid storage identifier: %s", identifier)
	}

	fullPath := s.fullPath(identifier)
	var exists bool
	err := s.run(ctx, func() error {
		_, statErr := s.client.Stat(fullPath)
		if statErr != nil {
			if isNotFoundError(statErr) {
				return nil
			}
			return statErr
		}
		exists = true
		return nil
	})
	return exists, err
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	return s.run(ctx, func() error {
		_, err := s.client.ReadDir(s.rootPath)
		return err
	})
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}
