package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tickevo.app/backend/common/id"
	"tickevo.app/backend/common/logger"
	"tickevo.app/backend/internal/http/dto"
	"tickevo.app/backend/internal/model"
	"tickevo.app/backend/internal/service"
)

type TicketHandler struct {
	ticketService service.TicketService
}

func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

func (h *TicketHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), userID, req.Title, req.Description, model.Priority(req.Priority))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreateTicketResponse{Success: true, TicketID: ticket.ID})
}

func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.ticketService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTicketResponses(tickets))
}

func (h *TicketHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ticketID, ok := ticketParam(c)
	if !ok {
		return
	}

	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{TicketID: &ticketID})
	ticket, err := h.ticketService.Get(ctx, ticketID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) UpdateStage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ticketID, ok := ticketParam(c)
	if !ok {
		return
	}

	var req dto.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.ticketService.UpdateStage(c.Request.Context(), ticketID, userID, model.Stage(req.Stage)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *TicketHandler) JoinQueue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ticketID, ok := ticketParam(c)
	if !ok {
		return
	}

	if err := h.ticketService.JoinQueue(c.Request.Context(), ticketID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *TicketHandler) Turn(c *gin.Context) {
	ticketID, ok := ticketParam(c)
	if !ok {
		return
	}

	state, err := h.ticketService.Turn(c.Request.Context(), ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTurnResponse(state))
}

func (h *TicketHandler) EndTurn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ticketID, ok := ticketParam(c)
	if !ok {
		return
	}

	var req dto.EndTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	var nextUserID int64
	if req.NextUserID != "" {
		parsed, err := id.Parse(req.NextUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid next user id"})
			return
		}
		nextUserID = parsed
	}

	if err := h.ticketService.EndTurn(c.Request.Context(), ticketID, userID, nextUserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
