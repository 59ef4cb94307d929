package service

import (
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// CartItemView 购物车项（含行小计）
type CartItemView struct {
	ID         uint            `json:"id"`
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice models.Money    `json:"total_price"`
	Product    *models.Product `json:"product"`
}

// CartView 购物车视图
type CartView struct {
	CartID uint           `json:"cart_id"`
	UserID uint           `json:"user_id"`
	Items  []CartItemView `json:"items"`
	Totals Totals         `json:"totals"`
}

// CartItemUpdateResult 修改数量后的行小计与购物车总额
type CartItemUpdateResult struct {
	ItemTotal models.Money `json:"item_total"`
	Totals    Totals       `json:"totals"`
}

// CartAdminListInput 后台购物车列表输入
type CartAdminListInput struct {
	Page     int
	PageSize int
	Search   string
}

// CartItemAdminListInput 后台购物车项列表输入
type CartItemAdminListInput struct {
	Page     int
	PageSize int
	Search   string
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	pricing     PricingPolicy
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, pricing PricingPolicy) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		pricing:     pricing,
	}
}

// GetCart 获取用户购物车（不存在则创建）
func (s *CartService) GetCart(userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	return s.buildView(cart, items), nil
}

// AddProduct 加入购物车，已存在的商品累加数量
func (s *CartService) AddProduct(userID, productID uint, quantity int) (*CartView, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.Available {
		return nil, ErrProductNotAvailable
	}
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.cartRepo.AddOrIncrement(cart.ID, product.ID, quantity); err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	return s.buildView(cart, items), nil
}

// UpdateItem 修改购物车项数量
func (s *CartService) UpdateItem(userID, itemID uint, quantity int) (*CartItemUpdateResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.cartRepo.GetItemForUser(itemID, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity

	totals, err := s.cartTotals(item.CartID)
	if err != nil {
		return nil, err
	}
	return &CartItemUpdateResult{ItemTotal: item.TotalPrice(), Totals: totals}, nil
}

// RemoveItem 移除购物车项，返回新的总额
func (s *CartService) RemoveItem(userID, itemID uint) (Totals, error) {
	item, err := s.cartRepo.GetItemForUser(itemID, userID)
	if err != nil {
		return Totals{}, err
	}
	if item == nil {
		return Totals{}, ErrCartItemNotFound
	}
	if err := s.cartRepo.DeleteItem(item.ID); err != nil {
		return Totals{}, err
	}
	return s.cartTotals(item.CartID)
}

// Clear 清空用户购物车
func (s *CartService) Clear(userID uint) error {
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.cartRepo.ClearItems(cart.ID)
}

// ListCarts 后台购物车列表
func (s *CartService) ListCarts(input CartAdminListInput) ([]models.Cart, int64, error) {
	return s.cartRepo.ListCarts(repository.CartListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Search:   input.Search,
	})
}

// GetCartAdmin 后台购物车详情
func (s *CartService) GetCartAdmin(id uint) (*CartView, error) {
	cart, err := s.cartRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return s.buildView(cart, cart.Items), nil
}

// DeleteCart 后台删除购物车（连同购物车项）
func (s *CartService) DeleteCart(id uint) error {
	cart, err := s.cartRepo.GetByID(id)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrCartNotFound
	}
	return s.cartRepo.DeleteCart(id)
}

// ListItems 后台购物车项列表
func (s *CartService) ListItems(input CartItemAdminListInput) ([]models.CartItem, int64, error) {
	return s.cartRepo.ListAllItems(repository.CartItemListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Search:   input.Search,
	})
}

// UpdateItemQuantityAdmin 后台修改购物车项数量
func (s *CartService) UpdateItemQuantityAdmin(itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.cartRepo.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

// DeleteItemAdmin 后台删除购物车项
func (s *CartService) DeleteItemAdmin(itemID uint) error {
	item, err := s.cartRepo.GetItemByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}
	return s.cartRepo.DeleteItem(item.ID)
}

func (s *CartService) cartTotals(cartID uint) (Totals, error) {
	items, err := s.cartRepo.ListItems(cartID)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(CartLines(items), s.pricing), nil
}

func (s *CartService) buildView(cart *models.Cart, items []models.CartItem) *CartView {
	view := &CartView{
		CartID: cart.ID,
		UserID: cart.UserID,
		Items:  make([]CartItemView, 0, len(items)),
		Totals: ComputeTotals(CartLines(items), s.pricing),
	}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		view.Items = append(view.Items, CartItemView{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice(),
			Product:    item.Product,
		})
	}
	return view
}
