package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/service"
	apperrors "github.com/rbautista/tindahan-backend/internal/errors"
	"github.com/rbautista/tindahan-backend/internal/middleware"
	qrcode "github.com/skip2/go-qrcode"
)

const labelQRSize = 256

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Barcode     string `json:"barcode" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// ListProducts returns the catalog with optional substring search
// GET /api/v1/products?search=&limit=&offset=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := ctrl.productService.ListProducts(service.ProductListOptions{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list products")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct returns a single product by barcode
// GET /api/v1/products/:barcode
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	barcode := c.Param("barcode")
	product, err := ctrl.productService.GetProductByBarcode(c.Request.Context(), barcode)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to get product", err, map[string]interface{}{
			"barcode": barcode,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct registers a new catalog entry. Products are immutable
// once created; there is no update endpoint.
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Barcode and name are required")
		return
	}

	userID, _ := middleware.GetUserID(c)
	product := &model.Product{
		Barcode:     req.Barcode,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CreatedBy:   &userID,
	}

	if err := ctrl.productService.CreateProduct(c.Request.Context(), product); err != nil {
		if errors.Is(err, service.ErrProductBarcodeExists) {
			apperrors.Conflict(c, apperrors.ProductBarcodeExists, "A product with this barcode already exists")
			return
		}
		if errors.Is(err, service.ErrInvalidBarcode) {
			apperrors.BadRequest(c, apperrors.ScanEmptyBarcode, "Barcode must not be empty")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"barcode": req.Barcode,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create product")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"barcode":    product.Barcode,
		"created_by": userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// GetProductLabel renders a printable QR label for a product barcode.
// Owners print these for shelves so shoppers can scan with any camera.
// GET /api/v1/products/:barcode/label
func (ctrl *ProductController) GetProductLabel(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	barcode := c.Param("barcode")
	product, err := ctrl.productService.GetProductByBarcode(c.Request.Context(), barcode)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to get product for label", err, map[string]interface{}{
			"barcode": barcode,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get product")
		return
	}

	png, err := qrcode.Encode(product.Barcode, qrcode.Medium, labelQRSize)
	if err != nil {
		log.Error("Failed to render QR label", err, map[string]interface{}{
			"barcode": barcode,
		})
		apperrors.InternalError(c, "Failed to render the product label")
		return
	}

	c.Header("Content-Disposition", "inline; filename=label-"+product.Barcode+".png")
	c.Data(http.StatusOK, "image/png", png)
}
