package repository

import "testing"

func TestCartGetOrCreateIsIdempotent(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewCartRepository(db)
	user := createTestUser(t, db, "alice")

	first, err := repo.GetOrCreateByUser(user.ID)
	if err != nil {
		t.Fatalf("get or create cart failed: %v", err)
	}
	second, err := repo.GetOrCreateByUser(user.ID)
	if err != nil {
		t.Fatalf("get or create cart again failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected single cart per user, got %d and %d", first.ID, second.ID)
	}
}

func TestCartAddOrIncrementDoesNotDuplicateRows(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewCartRepository(db)
	user := createTestUser(t, db, "bob")
	category := createTestCategory(t, db, "Cat", "cat")
	product := createTestProduct(t, db, category.ID, "Mug", "mug", "12.00", 10, true)
	cart, _ := repo.GetOrCreateByUser(user.ID)

	if _, err := repo.AddOrIncrement(cart.ID, product.ID, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	item, err := repo.AddOrIncrement(cart.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("increment item failed: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", item.Quantity)
	}
	if item.Product == nil || item.Product.ID != product.ID {
		t.Fatalf("expected product preloaded")
	}

	items, err := repo.ListItems(cart.ID)
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one row, got %d", len(items))
	}
}

func TestCartGetItemForUserRejectsOtherUsers(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewCartRepository(db)
	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	category := createTestCategory(t, db, "Cat", "cat-owner")
	product := createTestProduct(t, db, category.ID, "Pen", "pen", "2.00", 10, true)
	cart, _ := repo.GetOrCreateByUser(owner.ID)
	item, _ := repo.AddOrIncrement(cart.ID, product.ID, 1)

	got, err := repo.GetItemForUser(item.ID, stranger.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for other user's item")
	}
	got, err = repo.GetItemForUser(item.ID, owner.ID)
	if err != nil || got == nil {
		t.Fatalf("expected owner to see item, err=%v", err)
	}
}

func TestCartListCartsSearchByUsername(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewCartRepository(db)
	for _, name := range []string{"carol", "dave"} {
		user := createTestUser(t, db, name)
		if _, err := repo.GetOrCreateByUser(user.ID); err != nil {
			t.Fatalf("create cart failed: %v", err)
		}
	}

	carts, total, err := repo.ListCarts(CartListFilter{Search: "car", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list carts failed: %v", err)
	}
	if total != 1 || carts[0].User == nil || carts[0].User.Username != "carol" {
		t.Fatalf("unexpected carts: total=%d", total)
	}
}
