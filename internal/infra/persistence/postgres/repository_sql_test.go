package postgres

import (
	"context"
	"testing"

	"storefront/internal/domain/entity"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// newDryRunDB returns a handle that renders SQL without a server.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db
}

func TestOwnerScope(t *testing.T) {
	db := newDryRunDB(t)
	userID := uuid.New()
	guestID := uuid.New()

	tests := []struct {
		name  string
		owner entity.CartOwner
		want  string
	}{
		{name: "user", owner: entity.UserOwner(userID), want: `user_id = '` + userID.String() + `'`},
		{name: "guest", owner: entity.GuestOwner(guestID), want: `guest_id = '` + guestID.String() + `'`},
		{name: "nobody", owner: entity.CartOwner{}, want: `1 = 0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var carts []*model.CartModel

				return tx.Scopes(ownerScope(tt.owner)).Find(&carts)
			})

			assert.Contains(t, sql, `FROM "carts"`)
			assert.Contains(t, sql, tt.want)
		})
	}
}

func TestCartLockingQuery(t *testing.T) {
	db := newDryRunDB(t)
	owner := entity.UserOwner(uuid.New())

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var carts []*model.CartModel

		return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Scopes(ownerScope(owner)).
			Order("updated_at DESC").
			Find(&carts)
	})

	assert.Contains(t, sql, "ORDER BY updated_at DESC")
	assert.Contains(t, sql, "FOR UPDATE")
}

func TestUpsertLineItemStatement(t *testing.T) {
	db := newDryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_variant_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			}),
		}).Create(&model.CartItemModel{ID: uuid.New(), CartID: uuid.New(), ProductVariantID: uuid.New(), Quantity: 2})
	})

	assert.Contains(t, sql, `INSERT INTO "cart_items"`)
	assert.Contains(t, sql, `ON CONFLICT ("cart_id","product_variant_id") DO UPDATE SET`)
	assert.Contains(t, sql, "cart_items.quantity + EXCLUDED.quantity")
}

func TestConstraintErrors(t *testing.T) {
	unique := errors.Wrap(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: idxCartsUserID}, "insert")

	assert.True(t, isUniqueConstraintViolation(unique))
	assert.True(t, isUniqueViolationOn(unique, idxCartsUserID))
	assert.False(t, isUniqueViolationOn(unique, idxOrdersSessionRef))
	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))

	assert.True(t, isForeignKeyConstraintViolation(&pgconn.PgError{Code: pgForeignKeyViolation}))
	assert.True(t, isCheckConstraintViolation(&pgconn.PgError{Code: pgCheckViolation}))
	assert.True(t, isNotNullConstraintViolation(&pgconn.PgError{Code: pgNotNullViolation}))
	assert.False(t, isUniqueConstraintViolation(errors.New("connection reset")))
}

func TestCartMapping(t *testing.T) {
	userID := uuid.New()
	code := "SAVE10"
	cartM := &model.CartModel{ID: uuid.New(), UserID: &userID, CouponCode: &code}

	cart := toCartDomain(cartM)
	assert.Equal(t, entity.UserOwner(userID), cart.Owner)
	assert.Equal(t, "SAVE10", cart.CouponCode)

	setOwner(cartM, entity.GuestOwner(uuid.New()))
	assert.Nil(t, cartM.UserID)
	require.NotNil(t, cartM.GuestID)

	variantID := uuid.New()
	stale := toLineItemDomain(&model.CartItemModel{ID: uuid.New(), ProductVariantID: variantID, Quantity: 1}, nil)
	assert.True(t, stale.IsStale())
}

func TestOrderAddressMapping(t *testing.T) {
	raw, err := marshalAddress(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = marshalAddress(&entity.PostalAddress{City: "Taipei", Country: "TW"})
	require.NoError(t, err)

	address, err := unmarshalAddress(raw)
	require.NoError(t, err)
	assert.Equal(t, "Taipei", address.City)

	address, err = unmarshalAddress([]byte("null"))
	require.NoError(t, err)
	assert.Nil(t, address)
}

// captureSQL records every statement the handle renders for creates, deletes and queries.
func captureSQL(t *testing.T, db *gorm.DB) *[]string {
	t.Helper()

	var statements []string
	record := func(tx *gorm.DB) {
		statements = append(statements, tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...))
	}
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_create", record))
	require.NoError(t, db.Callback().Delete().After("gorm:delete").Register("test:capture_delete", record))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_query", record))

	return &statements
}

func TestWishlistRepository_Statements(t *testing.T) {
	db := newDryRunDB(t)
	statements := captureSQL(t, db)
	repo := NewWishlistRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	_, err := repo.Add(ctx, userID, productID)
	require.NoError(t, err)
	_, err = repo.Exists(ctx, userID, productID)
	require.NoError(t, err)
	_, err = repo.Remove(ctx, userID, productID)
	require.NoError(t, err)

	require.Len(t, *statements, 3)
	insert, exists, remove := (*statements)[0], (*statements)[1], (*statements)[2]

	assert.Contains(t, insert, `INSERT INTO "wishlists"`)
	assert.Contains(t, insert, `ON CONFLICT ("user_id","product_id") DO NOTHING`)
	assert.NotContains(t, insert, `INSERT INTO "products"`)

	assert.Contains(t, exists, `SELECT count(*) FROM "wishlists"`)
	assert.Contains(t, exists, `user_id = '`+userID.String()+`' AND product_id = '`+productID.String()+`'`)

	assert.Contains(t, remove, `DELETE FROM "wishlists"`)
	assert.Contains(t, remove, `product_id = '`+productID.String()+`'`)
}

func TestWishlistMapping(t *testing.T) {
	productID := uuid.New()
	entryM := &model.WishlistModel{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ProductID: productID,
		Product:   &model.ProductModel{ID: productID, Name: "Tee"},
	}
	variant := &entity.ProductVariant{ID: uuid.New(), ProductID: productID, Price: "25.00"}

	item := toWishlistDomain(entryM, variant)
	assert.Equal(t, productID, item.ProductID)
	require.NotNil(t, item.Product)
	assert.Equal(t, "Tee", item.Product.Name)
	assert.Same(t, variant, item.Variant)

	bare := toWishlistDomain(&model.WishlistModel{ID: uuid.New(), ProductID: productID}, nil)
	assert.Nil(t, bare.Product)
	assert.Nil(t, bare.Variant)
}
