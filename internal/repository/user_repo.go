package repository

import (
	"context"
	"errors"
	"strings"

	"sheetpos/internal/coerce"
	"sheetpos/internal/model"
	"sheetpos/internal/schema"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, u model.User) error
}

type userRepo struct{ sheets SheetRepository }

func NewUserRepository(sheets SheetRepository) UserRepository { return &userRepo{sheets: sheets} }

// FindByUsername matches case-insensitively. Rows without a username or hash
// are skipped.
func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	t, err := r.sheets.Fetch(ctx, schema.Users, 0)
	if err != nil {
		return nil, err
	}
	want := strings.TrimSpace(username)
	for _, row := range t.Rows {
		name := coerce.Text(t.Cell(row, schema.Username), "")
		if name == "" || !strings.EqualFold(name, want) {
			continue
		}
		hash := coerce.Text(t.Cell(row, schema.PasswordHash), "")
		if hash == "" {
			continue
		}
		return &model.User{
			Username:     name,
			PasswordHash: hash,
			Role:         strings.ToLower(coerce.Text(t.Cell(row, schema.Role), model.RoleCashier)),
			DisplayName:  coerce.Text(t.Cell(row, schema.DisplayName), name),
		}, nil
	}
	return nil, ErrUserNotFound
}

func (r *userRepo) Create(ctx context.Context, u model.User) error {
	return r.sheets.Append(ctx, schema.Users, map[schema.Field]any{
		schema.Username:     u.Username,
		schema.PasswordHash: u.PasswordHash,
		schema.Role:         u.Role,
		schema.DisplayName:  u.DisplayName,
	})
}
