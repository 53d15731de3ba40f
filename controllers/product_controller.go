package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Bishal-code0731/ecom/repository"
	"github.com/Bishal-code0731/ecom/services"
)

type ProductController struct {
	productService *services.ProductService
	logger         *zap.Logger
}

func NewProductController(productService *services.ProductService, logger *zap.Logger) *ProductController {
	return &ProductController{productService: productService, logger: logger}
}

func (pc *ProductController) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filters := repository.ProductFilters{
		Search:     c.Query("search"),
		ActiveOnly: true,
	}
	if raw := c.Query("featured"); raw != "" {
		featured := raw == "true" || raw == "1"
		filters.Featured = &featured
	}

	result, err := pc.productService.ListProducts(c.Request.Context(), filters, page, limit)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondOK(c, result)
}

func (pc *ProductController) Show(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid product id")
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondOK(c, product)
}

func (pc *ProductController) Store(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	product, err := pc.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondCreated(c, product)
}

func (pc *ProductController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid product id")
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	product, err := pc.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondOK(c, product)
}

func (pc *ProductController) Destroy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid product id")
		return
	}

	if err := pc.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondMessage(c, "product deleted")
}
