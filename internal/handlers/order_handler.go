package handlers

import (
	"net/http"
	"time"

	"cheflink/internal/apperror"
	"cheflink/internal/models"
	"cheflink/internal/repository"
	"cheflink/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/get_all_orders", h.ListOrders)
	rg.GET("/get_order_by_id/:id", h.GetOrderByID)
	rg.POST("/create_order", h.CreateOrder)
	rg.POST("/update_order_by_id/:id", h.UpdateOrder)
	rg.POST("/update_order_status_by_id/:id", h.UpdateOrderStatus)
	rg.POST("/update_payment_status_by_id/:id", h.UpdatePaymentStatus)
	rg.POST("/delete_order_by_id/:id", h.DeleteOrder)
}

type listOrdersQuery struct {
	DateStart string `form:"date_start"`
	DateEnd   string `form:"date_end"`
	Skip      int    `form:"skip,default=0" binding:"min=0"`
	Limit     int    `form:"limit,default=100" binding:"min=1,max=1000"`
}

// orderRequest is the create/update body. Quantity and price are pointers so
// that an absent value fails "required" instead of binding as zero.
type orderRequest struct {
	CustomerName string            `json:"customer_name" binding:"required"`
	Phone        string            `json:"phone" binding:"required"`
	Email        string            `json:"email" binding:"required,email"`
	Items        []lineItemRequest `json:"item" binding:"required,min=1,dive"`
}

type lineItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required,gt=0"`
	Price     *int   `json:"price" binding:"required,gte=0"`
}

func (r orderRequest) fields() models.OrderFields {
	items := make([]models.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, models.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  *it.Quantity,
			Price:     *it.Price,
		})
	}
	return models.OrderFields{
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Email:        r.Email,
		Items:        items,
	}
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

type updatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required"`
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	start, err := parseBound(q.DateStart, false)
	if err != nil {
		respondError(c, apperror.Validation("date_start must be YYYY-MM-DD or RFC3339"))
		return
	}
	end, err := parseBound(q.DateEnd, true)
	if err != nil {
		respondError(c, apperror.Validation("date_end must be YYYY-MM-DD or RFC3339"))
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), repository.OrderFilter{
		DateStart: start,
		DateEnd:   end,
		Skip:      q.Skip,
		Limit:     q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondOK(c, http.StatusOK, "orders retrieved", orders)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order retrieved", order)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req.fields())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "order created", order)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req.fields())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order updated", order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order status updated", order)
}

func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	var req updatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "payment status updated", order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	order, err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order deleted", order)
}

// parseBound accepts RFC3339, a zone-less datetime or a plain date, the latter
// two read in StoreZone. A plain date used as an upper bound covers that whole day.
func parseBound(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, models.StoreZone); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, models.StoreZone)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
