package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"timeface/config"
	"timeface/internal/dto"
	"timeface/internal/model"
	"timeface/internal/repository"
	pkgerrors "timeface/pkg/errors"
)

// ── 应用配置模块业务错误 ──

var (
	ErrInvalidWeeklyLimit = fmt.Errorf("%w: 周工时上限必须为正整数", pkgerrors.ErrInvalid)
)

// SettingService 应用配置业务接口（app_settings 键值对）
type SettingService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error)
	// WeeklyHoursLimit 库中未配置或取值非法时退回配置文件
	WeeklyHoursLimit(ctx context.Context) (int, error)
}

type settingService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingService 创建 SettingService 实例
func NewSettingService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) SettingService {
	return &settingService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *settingService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	list, err := s.repo.Setting.List(ctx)
	if err != nil {
		s.logger.Error("查询应用配置失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(list), nil
}

// ────────────────────── Update ──────────────────────

func (s *settingService) Update(ctx context.Context, req *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error) {
	var changes []model.AppSetting
	if req.WeeklyHoursLimit != nil {
		if *req.WeeklyHoursLimit <= 0 {
			return nil, ErrInvalidWeeklyLimit
		}
		changes = append(changes, model.AppSetting{
			Key:         model.SettingWeeklyHoursLimit,
			Value:       strconv.Itoa(*req.WeeklyHoursLimit),
			Description: "每周法定工时上限",
		})
	}
	if req.LawReference != nil {
		changes = append(changes, model.AppSetting{
			Key:         model.SettingLawReference,
			Value:       *req.LawReference,
			Description: "工时上限依据",
		})
	}
	now := time.Now()
	for i := range changes {
		changes[i].UpdatedAt = now
		changes[i].UpdatedBy = &callerID
	}

	if err := s.repo.Setting.Upsert(ctx, changes); err != nil {
		s.logger.Error("更新应用配置失败", zap.Error(err))
		return nil, err
	}
	if len(changes) > 0 {
		s.logger.Info("应用配置已更新", zap.Int("keys", len(changes)), zap.String("by", callerID))
	}
	return s.Get(ctx)
}

// ────────────────────── WeeklyHoursLimit ──────────────────────

func (s *settingService) WeeklyHoursLimit(ctx context.Context) (int, error) {
	list, err := s.repo.Setting.List(ctx)
	if err != nil {
		return 0, err
	}
	return s.toResponse(list).WeeklyHoursLimit, nil
}

func (s *settingService) toResponse(list []model.AppSetting) *dto.SettingsResponse {
	resp := &dto.SettingsResponse{WeeklyHoursLimit: s.cfg.Attendance.WeeklyHoursLimit}
	var latest time.Time
	for _, item := range list {
		switch item.Key {
		case model.SettingWeeklyHoursLimit:
			n, err := strconv.Atoi(item.Value)
			if err != nil || n <= 0 {
				s.logger.Warn("周工时上限配置非法，使用默认值", zap.String("value", item.Value))
				continue
			}
			resp.WeeklyHoursLimit = n
		case model.SettingLawReference:
			resp.LawReference = item.Value
		default:
			continue
		}
		if item.UpdatedAt.After(latest) {
			latest = item.UpdatedAt
		}
	}
	resp.UpdatedAt = dto.FormatTime(latest)
	return resp
}
