package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timeface/internal/dto"
	"timeface/internal/model"
	"timeface/internal/repository"
	pkgerrors "timeface/pkg/errors"
	"timeface/pkg/media"
)

// ── 员工模块业务错误 ──

var (
	ErrCollaboratorNotFound = fmt.Errorf("%w: 员工不存在", pkgerrors.ErrNotFound)
	ErrPhotoStoreDisabled   = errors.New("照片存储未配置")
)

// CollaboratorService 员工目录业务接口
type CollaboratorService interface {
	Create(ctx context.Context, req *dto.CreateCollaboratorRequest, callerID string) (*dto.CollaboratorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CollaboratorResponse, error)
	List(ctx context.Context, activeOnly bool) ([]dto.CollaboratorResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCollaboratorRequest, callerID string) (*dto.CollaboratorResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// SetReferencePhoto 保存人脸比对参考照，只在库中记录引用
	SetReferencePhoto(ctx context.Context, id string, photo []byte, callerID string) (*dto.CollaboratorResponse, error)
}

type collaboratorService struct {
	repo   *repository.Repository
	photos PhotoStore
	logger *zap.Logger
}

// NewCollaboratorService 创建 CollaboratorService 实例
func NewCollaboratorService(repo *repository.Repository, photos PhotoStore, logger *zap.Logger) CollaboratorService {
	return &collaboratorService{repo: repo, photos: photos, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *collaboratorService) Create(ctx context.Context, req *dto.CreateCollaboratorRequest, callerID string) (*dto.CollaboratorResponse, error) {
	c := &model.Collaborator{
		Name:     req.Name,
		Position: req.Position,
		Active:   true,
	}
	c.CreatedBy = &callerID
	c.UpdatedBy = &callerID

	if err := s.repo.Collaborator.Create(ctx, c); err != nil {
		s.logger.Error("创建员工失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工已创建", zap.String("collaborator_id", c.ID))
	return toCollaboratorResponse(c), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *collaboratorService) GetByID(ctx context.Context, id string) (*dto.CollaboratorResponse, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCollaboratorResponse(c), nil
}

// ────────────────────── List ──────────────────────

func (s *collaboratorService) List(ctx context.Context, activeOnly bool) ([]dto.CollaboratorResponse, error) {
	list, err := s.repo.Collaborator.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CollaboratorResponse, 0, len(list))
	for i := range list {
		result = append(result, *toCollaboratorResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *collaboratorService) Update(ctx context.Context, id string, req *dto.UpdateCollaboratorRequest, callerID string) (*dto.CollaboratorResponse, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Position != nil {
		c.Position = *req.Position
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	c.UpdatedBy = &callerID

	if err := s.repo.Collaborator.Update(ctx, c); err != nil {
		s.logger.Error("更新员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCollaboratorResponse(c), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 软删除，历史考勤记录保留员工姓名快照
func (s *collaboratorService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Collaborator.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除员工失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("员工已删除", zap.String("collaborator_id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── SetReferencePhoto ──────────────────────

func (s *collaboratorService) SetReferencePhoto(ctx context.Context, id string, photo []byte, callerID string) (*dto.CollaboratorResponse, error) {
	if s.photos == nil {
		return nil, ErrPhotoStoreDisabled
	}
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	ref, err := s.photos.Save(ctx, media.KindReference, photo)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImage) || errors.Is(err, media.ErrEmptyImage) {
			return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalid, err)
		}
		s.logger.Error("保存参考照失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	c.ReferencePhotoURL = &ref
	c.UpdatedBy = &callerID
	if err := s.repo.Collaborator.Update(ctx, c); err != nil {
		s.logger.Error("更新参考照失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("参考照已更新", zap.String("collaborator_id", id), zap.String("ref", ref))
	return toCollaboratorResponse(c), nil
}

// ── 内部方法 ──

func (s *collaboratorService) get(ctx context.Context, id string) (*model.Collaborator, error) {
	c, err := s.repo.Collaborator.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollaboratorNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func toCollaboratorResponse(c *model.Collaborator) *dto.CollaboratorResponse {
	return &dto.CollaboratorResponse{
		ID:                c.ID,
		Name:              c.Name,
		Position:          c.Position,
		ReferencePhotoURL: c.ReferencePhotoURL,
		Active:            c.Active,
		CreatedAt:         dto.FormatTime(c.CreatedAt),
		UpdatedAt:         dto.FormatTime(c.UpdatedAt),
	}
}

func toCollaboratorBrief(c *model.Collaborator) dto.CollaboratorBrief {
	return dto.CollaboratorBrief{ID: c.ID, Name: c.Name, Position: c.Position}
}
