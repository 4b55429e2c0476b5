package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCartOwner_Kinds(t *testing.T) {
	userID := uuid.New()
	guestID := uuid.New()

	tests := []struct {
		name    string
		owner   CartOwner
		isZero  bool
		isUser  bool
		isGuest bool
		str     string
	}{
		{name: "zero value", owner: CartOwner{}, isZero: true, str: "none"},
		{name: "user", owner: UserOwner(userID), isUser: true, str: "user:" + userID.String()},
		{name: "guest", owner: GuestOwner(guestID), isGuest: true, str: "guest:" + guestID.String()},
		{name: "user kind without id", owner: CartOwner{Kind: OwnerKindUser}, isZero: true, str: "none"},
		{name: "guest kind without id", owner: CartOwner{Kind: OwnerKindGuest}, isZero: true, str: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isZero, tt.owner.IsZero())
			assert.Equal(t, tt.isUser, tt.owner.IsUser())
			assert.Equal(t, tt.isGuest, tt.owner.IsGuest())
			assert.Equal(t, tt.str, tt.owner.String())
		})
	}
}

func TestCart_Lookups(t *testing.T) {
	variantA := uuid.New()
	variantB := uuid.New()
	itemA := &CartLineItem{ID: uuid.New(), ProductVariantID: variantA, Quantity: 2}
	itemB := &CartLineItem{ID: uuid.New(), ProductVariantID: variantB, Quantity: 3}
	cart := &Cart{ID: uuid.New(), Items: []*CartLineItem{itemA, itemB}}

	assert.False(t, cart.IsEmpty())
	assert.Same(t, itemB, cart.Item(itemB.ID))
	assert.Nil(t, cart.Item(uuid.New()))
	assert.Same(t, itemA, cart.ItemByVariant(variantA))
	assert.Nil(t, cart.ItemByVariant(uuid.New()))
	assert.Equal(t, 5, cart.ItemCount())

	var missing *Cart
	assert.True(t, missing.IsEmpty())
	assert.Nil(t, missing.Item(itemA.ID))
	assert.Zero(t, missing.ItemCount())
	assert.True(t, (&Cart{}).IsEmpty())
}

func TestCartLineItem_IsStale(t *testing.T) {
	assert.True(t, (&CartLineItem{}).IsStale())
	assert.False(t, (&CartLineItem{Variant: &ProductVariant{}}).IsStale())
}
