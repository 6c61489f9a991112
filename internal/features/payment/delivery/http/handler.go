package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"trading-portal-backend/internal/common/middleware"
	"trading-portal-backend/internal/common/validation"
	"trading-portal-backend/internal/features/payment/models"
	"trading-portal-backend/internal/features/payment/service"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(service service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(api *gin.RouterGroup) {
	payment := api.Group("/payment")
	payment.Use(middleware.RequireAuth())
	{
		payment.POST("/initiate", h.initiateDeposit)
		payment.POST("/simulate/:id", h.simulateGateway)
		payment.POST("/upload-screenshot/:id", h.uploadScreenshot)
	}

	withdrawal := api.Group("/withdrawal")
	withdrawal.Use(middleware.RequireAuth())
	{
		withdrawal.POST("/initiate", h.initiateWithdrawal)
		withdrawal.GET("/status/:id", h.withdrawalStatus)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/pending-payments", h.listPending)
		admin.POST("/approve-payment/:id", h.approve)
		admin.POST("/reject-payment/:id", h.reject)
	}
}

func (h *PaymentHandler) initiateDeposit(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var input models.InitiateDepositRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Account id and amount are required"})
		return
	}
	if err := validation.ValidateID(input.AccountID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	payment, err := h.service.InitiateDeposit(c.Request.Context(), user.ID, user.Email, &input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"payment_id": payment.ID,
		"currency":   payment.Currency,
	})
}

func (h *PaymentHandler) initiateWithdrawal(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var input models.InitiateWithdrawalRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Account id, amount and UPI id are required"})
		return
	}
	if err := validation.ValidateID(input.AccountID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	payment, err := h.service.InitiateWithdrawal(c.Request.Context(), user.ID, user.Email, &input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"withdrawal_id": payment.ID,
	})
}

func (h *PaymentHandler) simulateGateway(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var input models.SimulateGatewayRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Status is required"})
		return
	}

	payment, err := h.service.SimulateGateway(c.Request.Context(), user.ID, id, input.Status == "success")
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"status":         payment.Status,
		"transaction_id": payment.TransactionID,
	})
}

func (h *PaymentHandler) uploadScreenshot(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	file, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Screenshot file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read screenshot"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read screenshot"})
		return
	}

	if err := h.service.UploadScreenshot(c.Request.Context(), user.ID, id, file.Filename, data); err != nil {
		h.respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PaymentHandler) withdrawalStatus(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	status, err := h.service.WithdrawalStatus(c.Request.Context(), user.ID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Withdrawal not found"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *PaymentHandler) listPending(c *gin.Context) {
	payments, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payments": payments})
}

func (h *PaymentHandler) approve(c *gin.Context) {
	admin, _ := middleware.CurrentUser(c)

	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	payment, err := h.service.Approve(c.Request.Context(), admin.ID, id)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": payment.Status})
}

func (h *PaymentHandler) reject(c *gin.Context) {
	admin, _ := middleware.CurrentUser(c)

	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	payment, err := h.service.Reject(c.Request.Context(), admin.ID, id)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": payment.Status})
}

func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error) {
	switch err {
	case models.ErrPaymentNotFound:
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Payment not found"})
	case models.ErrPaymentNotPending:
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	case models.ErrInsufficientFunds, models.ErrScreenshotTooBig:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	}
}
