package router

import (
	"github.com/gin-gonic/gin"
	"github.com/phj1120/vibe-pay-sub000/internal/handler"
	"github.com/phj1120/vibe-pay-sub000/internal/logic"
)

func Setup(orderLogic *logic.OrderLogic, claimLogic *logic.ClaimLogic, pointLogic *logic.PointLogic, paylogLogic *logic.PayLogLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "vibe-pay",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 订单相关路由
		orderHandler := handler.NewOrderHandler(orderLogic)
		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.POST("/number", orderHandler.GenerateOrderNumber)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:orderNo", orderHandler.GetOrder)
			orders.GET("/:orderNo/settlements", orderHandler.GetOrderSettlements)
		}

		// 取消相关路由
		claimHandler := handler.NewClaimHandler(claimLogic)
		claims := v1.Group("/claims")
		{
			claims.POST("", claimHandler.CancelOrder)
		}

		// 支付相关路由
		paymentHandler := handler.NewPaymentHandler(orderLogic, paylogLogic)
		payments := v1.Group("/payments")
		{
			payments.POST("/initiate", paymentHandler.InitiatePayment)
			payments.GET("/:payNo/logs", paymentHandler.GetPayLogs)
		}

		// 积分相关路由
		pointHandler := handler.NewPointHandler(pointLogic)
		points := v1.Group("/points")
		{
			points.POST("", pointHandler.CreditPoint)
			points.POST("/signup", pointHandler.Signup)
			points.GET("/:memberNo/balance", pointHandler.GetBalance)
			points.GET("/:memberNo/history", pointHandler.GetHistory)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
