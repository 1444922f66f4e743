package handler

import (
	"context"
	"fmt"

	"github.com/hitoshi/habitd/internal/model"
	"github.com/hitoshi/habitd/internal/repository"
	"github.com/hitoshi/habitd/internal/user"
)

// AuthServiceAdapter は user.Service と repository.SessionRepository を
// AuthServiceInterface に適合させるアダプタ。
type AuthServiceAdapter struct {
	userSvc     *user.Service
	sessionRepo repository.SessionRepository
}

// NewAuthServiceAdapter はAuthServiceAdapterを生成する。
func NewAuthServiceAdapter(userSvc *user.Service, sessionRepo repository.SessionRepository) *AuthServiceAdapter {
	return &AuthServiceAdapter{
		userSvc:     userSvc,
		sessionRepo: sessionRepo,
	}
}

// Login は既存ユーザーにセッションを発行する。
func (a *AuthServiceAdapter) Login(ctx context.Context, email string) (*model.Session, error) {
	return a.userSvc.Login(ctx, email)
}

// Logout は指定IDのセッションを破棄する。
func (a *AuthServiceAdapter) Logout(ctx context.Context, sessionID string) error {
	return a.userSvc.Logout(ctx, sessionID)
}

// GetCurrentUser はセッションIDからログインユーザーを取得する。
// セッションが無効または期限切れの場合はエラーを返す。
func (a *AuthServiceAdapter) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	session, err := a.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("セッションが無効です")
	}
	return a.userSvc.Get(ctx, session.UserID)
}

// --- compile-time interface checks ---

var _ AuthServiceInterface = (*AuthServiceAdapter)(nil)
