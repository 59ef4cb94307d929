package repository

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductListFiltersAndSort(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	shoes := createTestCategory(t, db, "Shoes", "shoes")
	hats := createTestCategory(t, db, "Hats", "hats")

	createTestProduct(t, db, shoes.ID, "Trail Runner", "trail-runner", "80.00", 5, true)
	createTestProduct(t, db, shoes.ID, "City Sneaker", "city-sneaker", "45.50", 5, true)
	createTestProduct(t, db, shoes.ID, "Old Boot", "old-boot", "30.00", 5, false)
	createTestProduct(t, db, hats.ID, "Sun Hat", "sun-hat", "20.00", 5, true)

	available := true
	min := decimal.RequireFromString("40")
	products, total, err := repo.List(ProductListFilter{
		CategoryID: shoes.ID,
		Available:  &available,
		MinPrice:   &min,
		Sort:       "price",
		Page:       1,
		PageSize:   12,
	})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 2 || len(products) != 2 {
		t.Fatalf("expected 2 products, got total=%d len=%d", total, len(products))
	}
	if products[0].Slug != "city-sneaker" || products[1].Slug != "trail-runner" {
		t.Fatalf("unexpected order: %s, %s", products[0].Slug, products[1].Slug)
	}

	max := decimal.RequireFromString("50")
	products, total, err = repo.List(ProductListFilter{Available: &available, MaxPrice: &max, Sort: "-price"})
	if err != nil {
		t.Fatalf("list products by max price failed: %v", err)
	}
	if total != 2 || products[0].Slug != "city-sneaker" || products[1].Slug != "sun-hat" {
		t.Fatalf("unexpected max price result: total=%d first=%s", total, products[0].Slug)
	}
}

func TestProductListSearchIsCaseInsensitive(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	category := createTestCategory(t, db, "Books", "books")
	createTestProduct(t, db, category.ID, "Go Programming", "go-programming", "39.00", 1, true)
	createTestProduct(t, db, category.ID, "Cooking", "cooking", "19.00", 1, true)
	if err := db.Exec("UPDATE products SET description = ? WHERE slug = ?", "Recipes for GOPHERS", "cooking").Error; err != nil {
		t.Fatalf("update description failed: %v", err)
	}

	products, total, err := repo.List(ProductListFilter{Search: "gopher"})
	if err != nil {
		t.Fatalf("search products failed: %v", err)
	}
	if total != 1 || products[0].Slug != "cooking" {
		t.Fatalf("expected description match, got total=%d", total)
	}

	products, total, err = repo.List(ProductListFilter{Search: "PROGRAMMING"})
	if err != nil {
		t.Fatalf("search products failed: %v", err)
	}
	if total != 1 || products[0].Slug != "go-programming" {
		t.Fatalf("expected name match, got total=%d", total)
	}
}

func TestProductListUnknownSortFallsBack(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	category := createTestCategory(t, db, "Misc", "misc")
	createTestProduct(t, db, category.ID, "A", "a", "1.00", 1, true)

	if _, _, err := repo.List(ProductListFilter{Sort: "-password; DROP TABLE products"}); err != nil {
		t.Fatalf("unknown sort should fall back, got %v", err)
	}
}

func TestProductListRelatedExcludesSelf(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	category := createTestCategory(t, db, "Tea", "tea")
	other := createTestCategory(t, db, "Coffee", "coffee")
	self := createTestProduct(t, db, category.ID, "Green", "green", "5.00", 1, true)
	for _, slug := range []string{"black", "white", "oolong", "puer", "herbal"} {
		createTestProduct(t, db, category.ID, slug, slug, "5.00", 1, true)
	}
	createTestProduct(t, db, other.ID, "Espresso", "espresso", "3.00", 1, true)

	related, err := repo.ListRelated(self, 4)
	if err != nil {
		t.Fatalf("list related failed: %v", err)
	}
	if len(related) != 4 {
		t.Fatalf("expected 4 related products, got %d", len(related))
	}
	for _, product := range related {
		if product.ID == self.ID || product.CategoryID != category.ID {
			t.Fatalf("unexpected related product: %+v", product)
		}
	}
}

func TestProductDecrementStockFloorsAtZero(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	category := createTestCategory(t, db, "Stock", "stock")
	product := createTestProduct(t, db, category.ID, "Item", "item", "5.00", 3, true)

	if err := repo.DecrementStock(product.ID, 2); err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	got, _ := repo.GetByID(product.ID)
	if got.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", got.Stock)
	}

	if err := repo.DecrementStock(product.ID, 5); err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	got, _ = repo.GetByID(product.ID)
	if got.Stock != 0 {
		t.Fatalf("expected stock floored at 0, got %d", got.Stock)
	}
}

func TestProductApplyEditablePatch(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	category := createTestCategory(t, db, "Edit", "edit")
	product := createTestProduct(t, db, category.ID, "Item", "item-edit", "5.00", 3, true)

	price := decimal.RequireFromString("7.25")
	unavailable := false
	affected, err := repo.ApplyEditablePatch(ProductEditablePatch{ID: product.ID, Price: &price, Available: &unavailable})
	if err != nil {
		t.Fatalf("apply patch failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}
	got, _ := repo.GetByID(product.ID)
	if got.Price.String() != "7.25" || got.Available || got.Stock != 3 {
		t.Fatalf("unexpected patched product: price=%s available=%v stock=%d", got.Price, got.Available, got.Stock)
	}
}

func TestProductCountBySlugIncludesSoftDeleted(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	category := createTestCategory(t, db, "Soft", "soft")
	product := createTestProduct(t, db, category.ID, "Gone", "gone", "5.00", 1, true)
	if err := repo.Delete(product.ID); err != nil {
		t.Fatalf("delete product failed: %v", err)
	}

	count, err := repo.CountBySlug("gone", 0)
	if err != nil {
		t.Fatalf("count slug failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected soft deleted slug to be counted, got %d", count)
	}
}
