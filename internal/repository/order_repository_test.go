package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

func createTestOrder(t *testing.T, db *gorm.DB, userID uint, orderNo, intentID, status string) *models.Order {
	t.Helper()
	repo := NewOrderRepository(db)
	slug := strings.ToLower(orderNo)
	category := createTestCategory(t, db, "Order "+orderNo, "cat-"+slug)
	product := createTestProduct(t, db, category.ID, "Widget", "widget-"+slug, "10.00", 5, true)
	order := &models.Order{
		OrderNo:             orderNo,
		UserID:              userID,
		FirstName:           "Ada",
		LastName:            "Lovelace",
		Email:               "ada@example.com",
		Currency:            "usd",
		Subtotal:            models.MustMoney("20.00"),
		Shipping:            models.MustMoney("10.00"),
		Tax:                 models.MustMoney("2.00"),
		TotalPrice:          models.MustMoney("32.00"),
		Status:              status,
		StripePaymentIntent: intentID,
	}
	items := []models.OrderItem{{ProductID: product.ID, ProductName: "Widget", Price: models.MustMoney("10.00"), Quantity: 2}}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderCreateAndLookupByIntent(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	user := createTestUser(t, db, "erin")
	created := createTestOrder(t, db, user.ID, "SF0001", "pi_1", constants.OrderStatusPaid)

	got, err := repo.GetByPaymentIntent("pi_1")
	if err != nil {
		t.Fatalf("get by intent failed: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("expected order by intent")
	}
	if len(got.Items) != 1 || got.Items[0].TotalPrice().String() != "20.00" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}

	missing, err := repo.GetByPaymentIntent("pi_missing")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown intent, err=%v", err)
	}
}

func TestOrderPaymentIntentIsUnique(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	user := createTestUser(t, db, "frank")
	createTestOrder(t, db, user.ID, "SF0002", "pi_dup", constants.OrderStatusPaid)

	dup := &models.Order{OrderNo: "SF0003", UserID: user.ID, Status: constants.OrderStatusPaid, StripePaymentIntent: "pi_dup"}
	if err := repo.Create(dup, nil); err == nil {
		t.Fatalf("expected unique violation for duplicate intent")
	}
}

func TestOrderUpdateStatusIsConditional(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	user := createTestUser(t, db, "gina")
	order := createTestOrder(t, db, user.ID, "SF0004", "pi_2", constants.OrderStatusPending)

	ok, err := repo.UpdateStatus(order.ID, constants.OrderStatusPaid, constants.OrderStatusShipped, nil)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if ok {
		t.Fatalf("expected no update when current status mismatches")
	}

	ok, err = repo.UpdateStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid, nil)
	if err != nil || !ok {
		t.Fatalf("expected pending->paid update, ok=%v err=%v", ok, err)
	}
	got, _ := repo.GetByID(order.ID)
	if got.Status != constants.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}
}

func TestOrderListAdminFilterAndSearch(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	henry := createTestUser(t, db, "henry")
	iris := createTestUser(t, db, "iris")
	createTestOrder(t, db, henry.ID, "SF0005", "pi_3", constants.OrderStatusPaid)
	createTestOrder(t, db, iris.ID, "SF0006", "pi_4", constants.OrderStatusCanceled)

	orders, total, err := repo.ListAdmin(OrderListFilter{Status: constants.OrderStatusPaid})
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if total != 1 || orders[0].OrderNo != "SF0005" {
		t.Fatalf("unexpected status filter result: total=%d", total)
	}

	orders, total, err = repo.ListAdmin(OrderListFilter{Search: "iris"})
	if err != nil {
		t.Fatalf("search admin failed: %v", err)
	}
	if total != 1 || orders[0].OrderNo != "SF0006" {
		t.Fatalf("unexpected username search result: total=%d", total)
	}

	_, total, err = repo.ListAdmin(OrderListFilter{Search: "lovelace"})
	if err != nil {
		t.Fatalf("search by last name failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected last name search to match both, got %d", total)
	}
}

func TestOrderListItemsByStatus(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	user := createTestUser(t, db, "jack")
	createTestOrder(t, db, user.ID, "SF0007", "pi_5", constants.OrderStatusPaid)
	createTestOrder(t, db, user.ID, "SF0008", "pi_6", constants.OrderStatusCanceled)

	items, total, err := repo.ListItems(OrderItemListFilter{OrderStatus: constants.OrderStatusCanceled})
	if err != nil {
		t.Fatalf("list order items failed: %v", err)
	}
	if total != 1 || items[0].Order == nil || items[0].Order.OrderNo != "SF0008" {
		t.Fatalf("unexpected order items: total=%d", total)
	}
}

func TestOrderListPendingBefore(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	user := createTestUser(t, db, "hank")
	stale := createTestOrder(t, db, user.ID, "SF0010", "pi_10", constants.OrderStatusPending)
	createTestOrder(t, db, user.ID, "SF0011", "pi_11", constants.OrderStatusPaid)
	fresh := createTestOrder(t, db, user.ID, "SF0012", "pi_12", constants.OrderStatusPending)

	old := time.Now().Add(-2 * time.Hour)
	if err := db.Model(&models.Order{}).Where("id = ?", stale.ID).Update("created_at", old).Error; err != nil {
		t.Fatalf("backdate order failed: %v", err)
	}

	orders, err := repo.ListPendingBefore(time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != stale.ID {
		t.Fatalf("expected only stale order, got %+v", orders)
	}
	for _, order := range orders {
		if order.ID == fresh.ID {
			t.Fatalf("fresh order should not be listed")
		}
	}
}
