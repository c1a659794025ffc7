package mime

import (
	"errors"
	"io"
	"net/http"
)

// sniffLen http.DetectContentType 最多检查的字节数
const sniffLen = 512

// SniffContentType 从流的前几百字节探测 MIME 类型。
// 探测后流被重置到起点，调用方可以继续完整读取。
func SniffContentType(stream io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(stream, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}

	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(head[:n]), nil
}
