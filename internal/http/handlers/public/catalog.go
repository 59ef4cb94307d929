package public

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetHome 首页：分类与推荐商品
func (h *Handler) GetHome(c *gin.Context) {
	view, err := h.ProductService.Home(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.Success(c, view)
}

// GetProducts 商品列表（搜索、价格区间、排序、分页）
func (h *Handler) GetProducts(c *gin.Context) {
	h.listProducts(c, "")
}

// GetCategoryProducts 分类下的商品列表
func (h *Handler) GetCategoryProducts(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeNotFound, "error.category_not_found", nil)
		return
	}
	h.listProducts(c, slug)
}

func (h *Handler) listProducts(c *gin.Context, categorySlug string) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = -1
	}
	result, err := h.ProductService.ListPublic(service.ProductListInput{
		CategorySlug: categorySlug,
		Query:        c.Query("q"),
		MinPrice:     c.Query("min_price"),
		MaxPrice:     c.Query("max_price"),
		Sort:         c.Query("sort"),
		Page:         page,
	})
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, "error.product_fetch_failed")
		return
	}

	pagination := response.BuildPagination(result.Page, result.PageSize, result.Total)
	data := gin.H{
		"products": result.Products,
		"sort":     result.Sort,
		"query":    strings.TrimSpace(c.Query("q")),
	}
	if result.Category != nil {
		data["category"] = result.Category
	}
	response.SuccessWithPage(c, data, pagination)
}

// GetProductBySlug 商品详情与同类推荐
func (h *Handler) GetProductBySlug(c *gin.Context) {
	detail, err := h.ProductService.GetDetail(c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	response.Success(c, detail)
}

// GetCategories 全部分类
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}
