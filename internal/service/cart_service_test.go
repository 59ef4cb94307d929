package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddProductIncrementsExistingLine(t *testing.T) {
	env := setupServiceTestDB(t)
	user := env.createUser(t, "alice")
	category := env.createCategory(t, "Shirts", "shirts")
	shirt := env.createProduct(t, category.ID, "Shirt", "shirt", "19.99", 10, true)

	_, err := env.cartService.AddProduct(user.ID, shirt.ID, 0)
	require.NoError(t, err)
	view, err := env.cartService.AddProduct(user.ID, shirt.ID, 2)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, "59.97", view.Items[0].TotalPrice.String())
	assert.Equal(t, "59.97", view.Totals.Subtotal.String())
	assert.Equal(t, "10.00", view.Totals.Shipping.String())
	assert.Equal(t, "6.00", view.Totals.Tax.String())
	assert.Equal(t, "75.97", view.Totals.Total.String())
}

func TestCartAddProductRejectsMissingOrUnavailable(t *testing.T) {
	env := setupServiceTestDB(t)
	user := env.createUser(t, "bob")
	category := env.createCategory(t, "Misc", "misc")
	hidden := env.createProduct(t, category.ID, "Hidden", "hidden", "5.00", 1, false)

	_, err := env.cartService.AddProduct(user.ID, 12345, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = env.cartService.AddProduct(user.ID, hidden.ID, 1)
	assert.ErrorIs(t, err, ErrProductNotAvailable)
	_, err = env.cartService.AddProduct(user.ID, hidden.ID, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartGetCartCreatesOnce(t *testing.T) {
	env := setupServiceTestDB(t)
	user := env.createUser(t, "carol")

	first, err := env.cartService.GetCart(user.ID)
	require.NoError(t, err)
	second, err := env.cartService.GetCart(user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.CartID, second.CartID)
	assert.Empty(t, second.Items)
	assert.True(t, second.Totals.IsEmpty())
	assert.Equal(t, "0.00", second.Totals.Shipping.String())
}

func TestCartUpdateItemQuantityRules(t *testing.T) {
	env := setupServiceTestDB(t)
	owner := env.createUser(t, "dave")
	stranger := env.createUser(t, "erin")
	category := env.createCategory(t, "Mugs", "mugs")
	mug := env.createProduct(t, category.ID, "Mug", "mug", "8.00", 10, true)

	view, err := env.cartService.AddProduct(owner.ID, mug.ID, 1)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	_, err = env.cartService.UpdateItem(owner.ID, itemID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = env.cartService.UpdateItem(stranger.ID, itemID, 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	result, err := env.cartService.UpdateItem(owner.ID, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, "32.00", result.ItemTotal.String())
	assert.Equal(t, "45.20", result.Totals.Total.String())
}

func TestCartRemoveLastItemZeroesTotals(t *testing.T) {
	env := setupServiceTestDB(t)
	user := env.createUser(t, "frank")
	category := env.createCategory(t, "Hats", "hats")
	hat := env.createProduct(t, category.ID, "Hat", "hat", "15.00", 10, true)

	view, err := env.cartService.AddProduct(user.ID, hat.ID, 1)
	require.NoError(t, err)

	totals, err := env.cartService.RemoveItem(user.ID, view.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, totals.IsEmpty())
	assert.Equal(t, "0.00", totals.Shipping.String())
	assert.Equal(t, "0.00", totals.Tax.String())
	assert.Equal(t, "0.00", totals.Total.String())

	_, err = env.cartService.RemoveItem(user.ID, view.Items[0].ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartAdminOperations(t *testing.T) {
	env := setupServiceTestDB(t)
	user := env.createUser(t, "gwen")
	category := env.createCategory(t, "Pens", "pens")
	pen := env.createProduct(t, category.ID, "Pen", "pen", "2.00", 10, true)
	view, err := env.cartService.AddProduct(user.ID, pen.ID, 1)
	require.NoError(t, err)

	carts, total, err := env.cartService.ListCarts(CartAdminListInput{Search: "gwen"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, carts, 1)

	item, err := env.cartService.UpdateItemQuantityAdmin(view.Items[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	detail, err := env.cartService.GetCartAdmin(view.CartID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", detail.Totals.Subtotal.String())

	require.NoError(t, env.cartService.DeleteCart(view.CartID))
	_, err = env.cartService.GetCartAdmin(view.CartID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}
