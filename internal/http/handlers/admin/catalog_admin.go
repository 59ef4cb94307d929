package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ====================  分类管理  ====================

// CategoryRequest 创建/更新分类请求，slug 为空时由名称生成
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Slug: r.Slug, Description: r.Description}
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	categories, total, err := h.CategoryService.ListAdmin(service.CategoryAdminListInput{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, categories, response.BuildPagination(page, pageSize, total))
}

// GetCategory 分类详情
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "error.category_not_found")
	if !ok {
		return
	}
	category, err := h.CategoryService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_fetch_failed")
		return
	}
	response.Success(c, category)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_save_failed")
		return
	}
	requestLog(c).Infow("admin_category_created", "admin_id", currentAdminID(c), "category_id", category.ID, "slug", category.Slug)
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "error.category_not_found")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Update(id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_save_failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类（仍有商品时拒绝）
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "error.category_not_found")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_delete_failed")
		return
	}
	requestLog(c).Infow("admin_category_deleted", "admin_id", currentAdminID(c), "category_id", id)
	response.Success(c, nil)
}

// ====================  商品管理  ====================

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	CategoryID  uint   `json:"category_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Stock       int    `json:"stock"`
	Available   *bool  `json:"available"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Available:   r.Available,
	}
}

// ProductPatchItem 列表内编辑单行
type ProductPatchItem struct {
	ID        uint    `json:"id" binding:"required"`
	Price     *string `json:"price"`
	Stock     *int    `json:"stock"`
	Available *bool   `json:"available"`
}

// ProductBulkPatchRequest 列表内批量编辑请求
type ProductBulkPatchRequest struct {
	Items []ProductPatchItem `json:"items" binding:"required,dive"`
}

// ListProducts 商品列表（分类、上架状态、关键字筛选）
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	input := service.ProductAdminListInput{
		Page:      page,
		PageSize:  pageSize,
		Search:    strings.TrimSpace(c.Query("search")),
		Available: handlershared.ParseBoolQuery(c, "available"),
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			input.CategoryID = uint(parsed)
		}
	}
	products, total, err := h.ProductService.ListAdmin(input)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "error.product_not_found")
	if !ok {
		return
	}
	product, err := h.ProductService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_save_failed")
		return
	}
	requestLog(c).Infow("admin_product_created", "admin_id", currentAdminID(c), "product_id", product.ID, "slug", product.Slug)
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "error.product_not_found")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_save_failed")
		return
	}
	response.Success(c, product)
}

// BulkPatchProducts 列表内批量修改价格、库存与上架状态
func (h *Handler) BulkPatchProducts(c *gin.Context) {
	var req ProductBulkPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	patches := make([]service.ProductBulkPatch, 0, len(req.Items))
	for _, item := range req.Items {
		patches = append(patches, service.ProductBulkPatch{
			ID:        item.ID,
			Price:     item.Price,
			Stock:     item.Stock,
			Available: item.Available,
		})
	}
	updated, err := h.ProductService.BulkUpdate(patches)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_save_failed")
		return
	}
	requestLog(c).Infow("admin_product_bulk_patched", "admin_id", currentAdminID(c), "items", len(patches), "updated", updated)
	response.Success(c, gin.H{"updated": updated})
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "error.product_not_found")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_delete_failed")
		return
	}
	requestLog(c).Infow("admin_product_deleted", "admin_id", currentAdminID(c), "product_id", id)
	response.Success(c, nil)
}
