package contextutil_test

import (
	"context"
	"testing"

	"go-institute/internal/domain"
	"go-institute/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetadata(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	ctx = contextutil.WithAccountID(ctx, "acc-1")

	md := contextutil.ExtractMetadata(ctx)

	assert.Equal(t, "rid-1", md.RequestID)
	assert.Equal(t, "acc-1", md.AccountID)
}

func TestActor(t *testing.T) {
	_, ok := contextutil.GetActor(context.Background())
	assert.False(t, ok)

	actor := domain.NewActor("acc-1", domain.NewRoleSet(domain.RoleTeacher), domain.BranchScope("b-1", ""))
	ctx := contextutil.WithActor(context.Background(), actor)

	got, ok := contextutil.GetActor(ctx)
	assert.True(t, ok)
	assert.Equal(t, "acc-1", got.AccountID)
	assert.True(t, got.HasRole(domain.RoleTeacher))
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))

	l := zap.NewNop().Named("x")
	ctx := contextutil.WithLogger(context.Background(), l)
	assert.Same(t, l, contextutil.GetLogger(ctx, nil))
}
