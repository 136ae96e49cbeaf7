package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/vyaparlabs/gstbill/internal/catalog/domain"
	"github.com/vyaparlabs/gstbill/internal/catalog/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (catalogdomain.CatalogService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE services (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		hsn_code TEXT NOT NULL,
		unit_price NUMERIC NOT NULL,
		gst_rate NUMERIC NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE transaction_items (
		id INTEGER PRIMARY KEY,
		transaction_id INTEGER NOT NULL,
		service_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		hsn_code TEXT,
		unit_price NUMERIC NOT NULL,
		quantity INTEGER NOT NULL,
		gst_rate NUMERIC NOT NULL,
		line_total NUMERIC NOT NULL,
		discount_share NUMERIC NOT NULL DEFAULT 0,
		taxable_amount NUMERIC NOT NULL DEFAULT 0,
		gst_amount NUMERIC NOT NULL DEFAULT 0
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(serviceParams{
		In:    fx.In{},
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.NewRepository(db),
	})
	return svc, db
}

func TestCreateAndGetService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, catalogdomain.CreateRequest{
		Name:      "Haircut Premium",
		HSNCode:   "999721",
		UnitPrice: 500,
		GSTRate:   18,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.Active)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Haircut Premium", got.Name)
	assert.Equal(t, 500.0, got.UnitPrice)
	assert.Equal(t, 18.0, got.GSTRate)
}

func TestCreateServiceValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  catalogdomain.CreateRequest
		want error
	}{
		{"missing name", catalogdomain.CreateRequest{HSNCode: "999721", UnitPrice: 100, GSTRate: 18}, catalogdomain.ErrInvalidName},
		{"missing hsn", catalogdomain.CreateRequest{Name: "Facial", UnitPrice: 100, GSTRate: 18}, catalogdomain.ErrInvalidHSNCode},
		{"zero price", catalogdomain.CreateRequest{Name: "Facial", HSNCode: "999721", UnitPrice: 0, GSTRate: 18}, catalogdomain.ErrInvalidUnitPrice},
		{"negative rate", catalogdomain.CreateRequest{Name: "Facial", HSNCode: "999721", UnitPrice: 100, GSTRate: -1}, catalogdomain.ErrInvalidGSTRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateServiceRejectsDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, catalogdomain.CreateRequest{
		Name: "Hair Spa", HSNCode: "999721", UnitPrice: 1200, GSTRate: 18,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, catalogdomain.CreateRequest{
		Name: "Hair Spa", HSNCode: "999721", UnitPrice: 1500, GSTRate: 18,
	})
	assert.ErrorIs(t, err, catalogdomain.ErrDuplicateName)
}

func TestUpdateService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, catalogdomain.CreateRequest{
		Name: "Pedicure", HSNCode: "999721", UnitPrice: 800, GSTRate: 18,
	})
	require.NoError(t, err)

	price := 900.0
	inactive := false
	updated, err := svc.Update(ctx, catalogdomain.UpdateRequest{
		ID:        created.ID,
		UnitPrice: &price,
		Active:    &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, 900.0, updated.UnitPrice)
	assert.False(t, updated.Active)
}

func TestDeleteServiceGuardedByReferences(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, catalogdomain.CreateRequest{
		Name: "Manicure", HSNCode: "999721", UnitPrice: 600, GSTRate: 18,
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		`INSERT INTO transaction_items (id, transaction_id, service_id, name, unit_price, quantity, gst_rate, line_total)
		 VALUES (1, 10, ?, 'Manicure', 600, 1, 18, 600)`,
		created.ID,
	).Error)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, catalogdomain.ErrServiceInUse)

	require.NoError(t, db.Exec(`DELETE FROM transaction_items`).Error)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)
}
