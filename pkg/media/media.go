// Package media 保存抓拍与员工参考照片，业务表中只记录返回的引用 URL。
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"timeface/config"
)

var (
	ErrUnsupportedImage = errors.New("不支持的图片格式，仅支持 jpeg/png/webp")
	ErrEmptyImage       = errors.New("图片内容为空")
	ErrInvalidReference = errors.New("无效的照片引用")
)

// 照片分类，对应存储子目录
const (
	KindCapture   = "captures"
	KindReference = "references"
)

// Store 本地文件系统照片存储
type Store struct {
	dir     string
	baseURL string
	maxEdge int
	quality int
	logger  *zap.Logger
	now     func() time.Time
}

// NewStore 创建照片存储，目录不存在时自动创建
func NewStore(cfg *config.MediaConfig, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建照片目录失败: %w", err)
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Store{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		maxEdge: cfg.MaxEdge,
		quality: quality,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Dir 返回存储根目录（用于静态文件路由）
func (s *Store) Dir() string { return s.dir }

// Save 归一化图片后写入磁盘，返回可持久化的引用 URL
func (s *Store) Save(ctx context.Context, kind string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized, err := Normalize(data, s.maxEdge, s.quality)
	if err != nil {
		return "", err
	}

	rel := path.Join(kind, s.now().Format("2006/01"), uuid.NewString()+".jpg")
	full := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("创建照片目录失败: %w", err)
	}
	if err := os.WriteFile(full, normalized, 0o644); err != nil {
		return "", fmt.Errorf("写入照片失败: %w", err)
	}

	s.logger.Debug("照片已保存", zap.String("kind", kind), zap.Int("bytes", len(normalized)))
	return s.baseURL + "/" + rel, nil
}

// Load 根据 Save 返回的引用读取照片内容
func (s *Store) Load(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("读取照片失败: %w", err)
	}
	return data, nil
}

// Delete 删除引用对应的照片，文件已不存在视为成功
func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除照片失败: %w", err)
	}
	s.logger.Debug("照片已删除", zap.String("ref", ref))
	return nil
}

// resolve 引用 URL 转为存储目录内的绝对路径，拒绝越界引用
func (s *Store) resolve(ref string) (string, error) {
	rel := strings.TrimPrefix(ref, s.baseURL+"/")
	if rel == ref || rel == "" {
		return "", ErrInvalidReference
	}
	clean := path.Clean(rel)
	if strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return "", ErrInvalidReference
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

// Normalize 解码 jpeg/png/webp，长边缩放到 maxEdge 以内并重新编码为 JPEG
// maxEdge <= 0 时不缩放
func Normalize(data []byte, maxEdge, quality int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxEdge > 0 && (w > maxEdge || h > maxEdge) {
		tw, th := maxEdge, maxEdge
		if w >= h {
			th = h * maxEdge / w
		} else {
			tw = w * maxEdge / h
		}
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("编码照片失败: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	if decoded, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
		return decoded, nil
	}
	return nil, ErrUnsupportedImage
}
