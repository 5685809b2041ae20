package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tickevo.app/backend/internal/http/dto"
	"tickevo.app/backend/internal/service"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Post(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ticketID, ok := ticketParam(c)
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if _, err := h.messageService.Post(c.Request.Context(), ticketID, userID, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *MessageHandler) List(c *gin.Context) {
	ticketID, ok := ticketParam(c)
	if !ok {
		return
	}

	msgs, err := h.messageService.List(c.Request.Context(), ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMessageResponses(msgs))
}

func (h *MessageHandler) PostLobby(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if _, err := h.messageService.PostLobby(c.Request.Context(), userID, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *MessageHandler) ListLobby(c *gin.Context) {
	msgs, err := h.messageService.ListLobby(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMessageResponses(msgs))
}
