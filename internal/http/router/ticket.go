package router

import (
	"github.com/gin-gonic/gin"

	"tickevo.app/backend/internal/http/handler"
)

func TicketRouter(rg *gin.RouterGroup, h *handler.TicketHandler, mh *handler.MessageHandler) {
	rg.POST("/create-ticket", h.Create)
	rg.GET("/tickets", h.List)

	tickets := rg.Group("/tickets/:id")
	tickets.GET("", h.Get)
	tickets.PUT("/stage", h.UpdateStage)
	tickets.POST("/join-queue", h.JoinQueue)
	tickets.GET("/turn", h.Turn)
	tickets.POST("/end-turn", h.EndTurn)
	tickets.GET("/messages", mh.List)
	tickets.POST("/messages", mh.Post)
}

func LobbyRouter(rg *gin.RouterGroup, h *handler.MessageHandler) {
	rg.GET("", h.ListLobby)
	rg.POST("", h.PostLobby)
}
