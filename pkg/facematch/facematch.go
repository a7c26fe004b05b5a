// Package facematch 封装外部人脸比对能力。
// 比对结果只有“是/否”，调用失败由上层按“不匹配”处理。
package facematch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"timeface/config"
)

// ErrDisabled 未配置人脸比对
var ErrDisabled = errors.New("人脸比对未启用")

// Matcher 比对实时抓拍与参考照片是否为同一人
type Matcher interface {
	Match(ctx context.Context, live, reference []byte) (bool, error)
}

// New 根据配置创建比对器，provider=none 时返回始终报错的实现
func New(ctx context.Context, cfg *config.FaceMatchConfig, logger *zap.Logger) (Matcher, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiMatcher(ctx, cfg, logger)
	default:
		logger.Warn("人脸比对未启用，所有抓拍都将视为未匹配")
		return disabled{}, nil
	}
}

type disabled struct{}

func (disabled) Match(context.Context, []byte, []byte) (bool, error) { return false, ErrDisabled }

// ════════════════════════════════════════════════════════════
// Gemini 实现
// ════════════════════════════════════════════════════════════

const comparePrompt = `You are a strict face verification system.
The first image is a live capture, the second image is the reference photo of an employee.
Answer with exactly one word: YES if both images show the same person, NO otherwise.
If either image does not contain a clear face, answer NO.`

type generateFunc func(ctx context.Context, parts []*genai.Part) (string, error)

// GeminiMatcher 通过 Gemini 多模态模型比对两张照片
type GeminiMatcher struct {
	generate generateFunc
	timeout  time.Duration
	logger   *zap.Logger
}

// NewGeminiMatcher 创建 Gemini 比对器
func NewGeminiMatcher(ctx context.Context, cfg *config.FaceMatchConfig, logger *zap.Logger) (*GeminiMatcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("face_match.api_key 不能为空")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}

	model := cfg.Model
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: 4,
	}
	generate := func(ctx context.Context, parts []*genai.Part) (string, error) {
		contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
		resp, err := client.Models.GenerateContent(ctx, model, contents, genCfg)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}

	return &GeminiMatcher{generate: generate, timeout: cfg.Timeout, logger: logger}, nil
}

// Match 实现 Matcher
func (m *GeminiMatcher) Match(ctx context.Context, live, reference []byte) (bool, error) {
	if len(live) == 0 || len(reference) == 0 {
		return false, fmt.Errorf("比对图片不能为空")
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	parts := []*genai.Part{
		genai.NewPartFromText(comparePrompt),
		genai.NewPartFromBytes(live, http.DetectContentType(live)),
		genai.NewPartFromBytes(reference, http.DetectContentType(reference)),
	}

	text, err := m.generate(ctx, parts)
	if err != nil {
		return false, fmt.Errorf("调用 Gemini 失败: %w", err)
	}

	matched := ParseVerdict(text)
	m.logger.Debug("人脸比对完成", zap.String("answer", text), zap.Bool("matched", matched))
	return matched, nil
}

// ParseVerdict 仅当回答以 YES 开头时视为匹配
func ParseVerdict(text string) bool {
	answer := strings.ToUpper(strings.TrimSpace(text))
	return strings.HasPrefix(answer, "YES")
}
