package application_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/shopfront/internal/catalog/application"
	"github.com/wyfcoding/shopfront/internal/catalog/domain"
	"github.com/wyfcoding/shopfront/internal/shoptest"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/outbox"
)

func TestCreateStore_Uniqueness(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()

	_, err := app.Catalog.CreateStore(ctx, application.CreateStoreCommand{Code: "corner", Name: "Corner"})
	require.NoError(t, err)

	_, err = app.Catalog.CreateStore(ctx, application.CreateStoreCommand{Code: "corner", Name: "Other"})
	assert.Equal(t, bizerr.KindValidation, bizerr.KindOf(err))

	_, err = app.Catalog.CreateStore(ctx, application.CreateStoreCommand{Code: "other", Name: "Corner"})
	assert.Equal(t, bizerr.KindValidation, bizerr.KindOf(err))

	_, err = app.Catalog.CreateStore(ctx, application.CreateStoreCommand{Code: "bad-code", Name: "Bad"})
	assert.Equal(t, bizerr.KindValidation, bizerr.KindOf(err))

	var events int64
	require.NoError(t, app.DB.Model(&outbox.Message{}).Where("topic = ?", domain.TopicStoreCreated).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestListProduct(t *testing.T) {
	app := shoptest.NewApp(t)
	ctx := context.Background()
	store := app.SeedStore(t, "corner")
	_, err := app.Catalog.CreateProduct(ctx, application.CreateProductCommand{Code: "mug", Name: "Mug"})
	require.NoError(t, err)

	listing, err := app.Catalog.ListProduct(ctx, application.ListProductCommand{
		StoreCode:   "corner",
		ProductCode: "mug",
		Price:       decimal.RequireFromString("4.20"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, listing.UUID)

	t.Run("listed once per store", func(t *testing.T) {
		_, err := app.Catalog.ListProduct(ctx, application.ListProductCommand{StoreCode: "corner", ProductCode: "mug", Price: decimal.NewFromInt(5)})
		assert.Equal(t, bizerr.KindValidation, bizerr.KindOf(err))
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := app.Catalog.CreateProduct(ctx, application.CreateProductCommand{Code: "tea", Name: "Tea"})
		require.NoError(t, err)
		_, err = app.Catalog.ListProduct(ctx, application.ListProductCommand{StoreCode: "corner", ProductCode: "tea", Price: decimal.NewFromInt(-1)})
		assert.Equal(t, bizerr.KindValidation, bizerr.KindOf(err))
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := app.Catalog.ListProduct(ctx, application.ListProductCommand{StoreCode: "nowhere", ProductCode: "mug", Price: decimal.NewFromInt(1)})
		require.Error(t, err)
		assert.Equal(t, "Shop nowhere does not exist", err.Error())
	})

	t.Run("lookup is scoped to store", func(t *testing.T) {
		found, err := app.Catalog.GetListing(ctx, store.ID, listing.UUID)
		require.NoError(t, err)
		assert.Equal(t, "4.20", found.Price.StringFixed(2))
		require.NotNil(t, found.Product)
		assert.Equal(t, "mug", found.Product.Code)

		other := app.SeedStore(t, "market")
		_, err = app.Catalog.GetListing(ctx, other.ID, listing.UUID)
		assert.Equal(t, bizerr.KindNotFound, bizerr.KindOf(err))
	})
}
