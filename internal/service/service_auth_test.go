package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/mock"
	"github.com/MKhiriev/go-assembly-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_CreateAndParseToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockModelsRepository(ctrl)
	ctx := context.Background()

	cfg := config.App{TokenSignKey: "secret", TokenIssuer: "assembly", TokenDuration: time.Hour}
	svc := NewAuthService(repo, cfg, logger.Nop())
	require.True(t, svc.Enabled())

	repo.EXPECT().GetModels(ctx, models.CollectionUser, []int{7}).
		Return([]models.ModelRecord{{Collection: "user", ID: 7, Data: json.RawMessage(`{}`)}}, nil)

	token, err := svc.CreateToken(ctx, 7)
	require.NoError(t, err)
	assert.NotEmpty(t, token.SignedString)

	parsed, err := svc.ParseToken(ctx, token.SignedString)
	require.NoError(t, err)
	assert.EqualValues(t, 7, parsed.UserID)

	_, err = svc.ParseToken(ctx, token.SignedString+"x")
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)

	other := NewAuthService(repo, config.App{TokenSignKey: "secret", TokenIssuer: "someone-else", TokenDuration: time.Hour}, logger.Nop())
	_, err = other.ParseToken(ctx, token.SignedString)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestAuthService_CreateToken_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockModelsRepository(ctrl)
	ctx := context.Background()

	disabled := NewAuthService(repo, config.App{}, logger.Nop())
	_, err := disabled.CreateToken(ctx, 1)
	assert.ErrorIs(t, err, ErrAuthDisabled)

	svc := NewAuthService(repo, config.App{TokenSignKey: "secret", TokenIssuer: "assembly", TokenDuration: time.Hour}, logger.Nop())
	repo.EXPECT().GetModels(ctx, models.CollectionUser, []int{2}).Return(nil, nil)
	_, err = svc.CreateToken(ctx, 2)
	assert.ErrorIs(t, err, ErrUnknownUser)
}
