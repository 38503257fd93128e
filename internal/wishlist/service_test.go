package wishlist

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/catalog"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/dbtest"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

func TestWishlist(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, catalog.NewService(catalog.NewGormRepository(db)))
	ctx := context.Background()
	const owner int64 = 7

	p := &domain.Product{ID: 11, Name: "Kettle", Category: "Home", Price: decimal.NewFromInt(900), Mrp: decimal.NewFromInt(1000), Stock: 4}
	require.NoError(t, db.Create(p).Error)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.Add(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kettle", list[0].Name)

	_, err = svc.Add(ctx, owner, p.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Equal(t, "Product already in wishlist", domain.MessageOf(err))

	list, err = svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	ok, err := svc.Contains(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Add(ctx, owner, 999)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	list, err = svc.Remove(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Remove(ctx, owner, p.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	ok, err = svc.Contains(ctx, 8, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
