package validator

import (
	"image"
	"io"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// allowedImageMimeTypes 允许上传的图片类型
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// IsImage 检查文件内容是否为允许的图片类型
func IsImage(file io.ReadSeeker) (bool, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return false, err
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return false, err
	}

	// 检测 MIME 类型
	mimeType := http.DetectContentType(buffer[:n])

	return allowedImageMimeTypes[mimeType], nil
}

// DecodeDimensions 读取图片宽高，不解码像素数据
func DecodeDimensions(file io.ReadSeeker) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}

	return cfg.Width, cfg.Height, nil
}
