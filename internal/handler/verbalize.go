package handler

import (
	"net/http"

	"github.com/chequeflow/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type VerbalizeHandler struct {
	cheques *service.ChequeService
}

func NewVerbalizeHandler(cheques *service.ChequeService) *VerbalizeHandler {
	return &VerbalizeHandler{cheques: cheques}
}

func (h *VerbalizeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/verbalize", h.Verbalize)
}

type VerbalizeRequest struct {
	Amount *float64 `json:"amount"`
	Payee  string   `json:"payee"`
}

// Verbalize 金额转英文大写
func (h *VerbalizeHandler) Verbalize(c *gin.Context) {
	var req VerbalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	text, err := h.cheques.Verbalize(*req.Amount, req.Payee)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
