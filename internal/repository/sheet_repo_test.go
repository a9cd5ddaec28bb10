package repository

import (
	"context"
	"net/http"
	"testing"
	"time"

	"sheetpos/internal/infra"
	"sheetpos/internal/model"
	"sheetpos/internal/schema"
	"sheetpos/internal/sheetstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func header(width int) []any {
	h := make([]any, width)
	for i := range h {
		h[i] = "col"
	}
	return h
}

func newRepo(t *testing.T) (SheetRepository, *sheetstest.Server) {
	t.Helper()
	srv := sheetstest.NewServer(t)
	client := infra.NewSheetsClient(srv.URL, "", 2*time.Second, nil)
	return NewSheetRepository(client, schema.Default()), srv
}

func TestFetchValidatesAndCaps(t *testing.T) {
	repo, srv := newRepo(t)
	rows := [][]any{header(12)}
	for i := 0; i < 200; i++ {
		rows = append(rows, []any{"S", "R", "2024-01-01"})
	}
	srv.Seed(schema.Sales, rows...)

	tbl, err := repo.Fetch(context.Background(), schema.Sales, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, tbl.Len())
	assert.Equal(t, 1, tbl.Rows[0].Index)
}

func TestFetchSchemaError(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Seed(schema.Sales, header(5), []any{"a"})

	_, err := repo.Fetch(context.Background(), schema.Sales, 0)
	var schemaErr *schema.Error
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, schema.Sales, schemaErr.Sheet)
}

func TestFetchUnknownSheet(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.Fetch(context.Background(), "Nope", 0)
	assert.ErrorIs(t, err, ErrUnknownSheet)
}

func TestFetchAllJoinsSheets(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Seed(schema.Sales, header(12), []any{"S-1"})
	srv.Seed(schema.Purchases, header(11), []any{"P-1"}, []any{"P-2"})
	srv.Seed(schema.Expenses, header(8))

	tables, err := repo.FetchAll(context.Background(),
		Fetch{Sheet: schema.Sales}, Fetch{Sheet: schema.Purchases, Limit: 1}, Fetch{Sheet: schema.Expenses})
	require.NoError(t, err)
	assert.Equal(t, 1, tables[schema.Sales].Len())
	assert.Equal(t, 1, tables[schema.Purchases].Len())
	assert.Equal(t, 0, tables[schema.Expenses].Len())
}

func TestFetchAllFailsAsOne(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Seed(schema.Sales, header(12))
	srv.Seed(schema.Purchases, header(11))
	srv.Fail(schema.Purchases, http.StatusServiceUnavailable)

	tables, err := repo.FetchAll(context.Background(), Fetch{Sheet: schema.Sales}, Fetch{Sheet: schema.Purchases})
	assert.Nil(t, tables, "no partial data")
	var upErr *infra.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusServiceUnavailable, upErr.Status)
}

func TestAppendEncodesBySchema(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Seed(schema.Expenses, header(8))

	err := repo.Append(context.Background(), schema.Expenses, map[schema.Field]any{
		schema.ID: "E-1", schema.Amount: "150", schema.Description: "Rent",
	})
	require.NoError(t, err)

	rows := srv.Rows(schema.Expenses)
	require.Len(t, rows, 2)
	assert.Len(t, rows[1], 8)
	assert.Equal(t, "E-1", rows[1][0])
	assert.Equal(t, "Rent", rows[1][4])
	assert.Equal(t, "150", rows[1][5])
}

func TestUserRepository(t *testing.T) {
	repo, srv := newRepo(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	srv.Seed(schema.Users, header(4),
		[]any{"", "x", "admin", ""},
		[]any{"Amina", string(hash), "Manager", "Amina M."},
		[]any{"juma", string(hash), "", ""},
	)
	users := NewUserRepository(repo)
	ctx := context.Background()

	u, err := users.FindByUsername(ctx, " amina ")
	require.NoError(t, err)
	assert.Equal(t, "Amina", u.Username)
	assert.Equal(t, "manager", u.Role)
	assert.Equal(t, "Amina M.", u.DisplayName)

	u, err = users.FindByUsername(ctx, "juma")
	require.NoError(t, err)
	assert.Equal(t, "cashier", u.Role)
	assert.Equal(t, "juma", u.DisplayName)

	_, err = users.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, users.Create(ctx, model.User{Username: "neema", PasswordHash: "h", Role: "cashier"}))
	assert.Len(t, srv.Rows(schema.Users), 5)
}
