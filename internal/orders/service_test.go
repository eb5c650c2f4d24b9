package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloraworld/velora-backend/pkg/db/models"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	Repository
	rows      []models.Order
	lastQuery ListQuery
}

func (s *stubOrdersRepo) List(ctx context.Context, query ListQuery) ([]models.Order, error) {
	s.lastQuery = query
	return s.rows, nil
}

func makeOrders(n int) []models.Order {
	rows := make([]models.Order, n)
	base := time.Now().UTC()
	for i := range rows {
		rows[i] = models.Order{ID: uuid.New(), CreatedAt: base.Add(-time.Duration(i) * time.Minute)}
	}
	return rows
}

func TestListOrdersTrimsBufferAndEncodesCursor(t *testing.T) {
	repo := &stubOrdersRepo{rows: makeOrders(3)}
	svc, err := NewService(repo)
	require.NoError(t, err)

	page, err := svc.ListOrders(context.Background(), pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)

	assert.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := pagination.ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, repo.rows[2].ID, cursor.ID)
}

func TestListOrdersLastPageHasNoCursor(t *testing.T) {
	repo := &stubOrdersRepo{rows: makeOrders(2)}
	svc, err := NewService(repo)
	require.NoError(t, err)

	page, err := svc.ListOrders(context.Background(), pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)

	assert.Len(t, page.Orders, 2)
	assert.Empty(t, page.NextCursor)
}

func TestListOrdersRejectsBadCursor(t *testing.T) {
	svc, err := NewService(&stubOrdersRepo{})
	require.NoError(t, err)

	_, err = svc.ListOrders(context.Background(), pagination.Params{Cursor: "!!"}, ListFilters{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
