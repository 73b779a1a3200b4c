package branch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	brancherrors "go-institute/internal/branch/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	BranchOptionsKey = "branches:options"
	optionsTTL       = time.Hour
)

//go:generate mockgen -source=branch_service.go -destination=mock/branch_service_mock.go -package=mock
type Service interface {
	GetOptions(ctx context.Context) ([]BranchResponse, error)
	GetByID(ctx context.Context, id string) (BranchResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("branch.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("branch.service")
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

// GetOptions serves the active branch directory. Branches change rarely, so
// the list is cached; access decisions never read from this cache.
func (s *service) GetOptions(ctx context.Context) ([]BranchResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, BranchOptionsKey).Result(); err == nil {
			var resp []BranchResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(BranchOptionsKey, func() (interface{}, error) {
		branches, err := s.repo.FindAllActive(ctx)
		if err != nil {
			s.logger.Error("list active branches failed", zap.Error(err))
			return nil, err
		}

		resp := mapToListResponse(branches)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, BranchOptionsKey, jsonData, optionsTTL).Err(); err != nil {
					s.logger.Warn("cache branch options failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]BranchResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (BranchResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return BranchResponse{}, brancherrors.ErrBranchNotFound
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BranchResponse{}, brancherrors.ErrBranchNotFound
		}
		s.logger.Error("get branch failed", zap.String("branch_id", id), zap.Error(err))
		return BranchResponse{}, err
	}
	return mapToResponse(*b), nil
}

func mapToResponse(b Branch) BranchResponse {
	return BranchResponse{
		ID:       b.ID.String(),
		Code:     b.Code,
		Name:     b.Name,
		Location: b.Location,
		Phone:    b.Phone,
		Email:    b.Email,
		IsActive: b.IsActive,
	}
}

func mapToListResponse(branches []Branch) []BranchResponse {
	resp := make([]BranchResponse, len(branches))
	for i, b := range branches {
		resp[i] = mapToResponse(b)
	}
	return resp
}
