package controller

import (
	"wiki-chatbot-be/internal/dto"
	"wiki-chatbot-be/internal/pkg/serverutils"
	"wiki-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHistoryController interface {
	RegisterRoutes(r fiber.Router)
	ListSessions(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	RenameSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ClearSessions(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	CreateMessage(ctx *fiber.Ctx) error
	UpdateMessage(ctx *fiber.Ctx) error
	DeleteMessage(ctx *fiber.Ctx) error
}

type historyController struct {
	service   service.IChatHistoryService
	jwtSecret string
}

func NewHistoryController(service service.IChatHistoryService, jwtSecret string) IHistoryController {
	return &historyController{service: service, jwtSecret: jwtSecret}
}

func (c *historyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/history")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))

	h.Get("/sessions", c.ListSessions)
	h.Post("/sessions", c.CreateSession)
	// registered before :id so it is not parsed as an id
	h.Delete("/sessions/clear-all", c.ClearSessions)
	h.Get("/sessions/:id", c.GetSession)
	h.Put("/sessions/:id", c.RenameSession)
	h.Delete("/sessions/:id", c.DeleteSession)
	h.Get("/sessions/:id/messages", c.ListMessages)

	h.Post("/messages", c.CreateMessage)
	h.Put("/messages/:id", c.UpdateMessage)
	h.Delete("/messages/:id", c.DeleteMessage)
}

func (c *historyController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ListSessions(ctx.UserContext(), userID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat sessions", res))
}

func (c *historyController) GetSession(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetSession(ctx.UserContext(), userID(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat session", res))
}

func (c *historyController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateChatSessionRequest
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSession(ctx.UserContext(), userID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chat session", res))
}

func (c *historyController) RenameSession(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateChatSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RenameSession(ctx.UserContext(), userID(ctx), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update chat session", res))
}

func (c *historyController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.UserContext(), userID(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat session", nil))
}

func (c *historyController) ClearSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ClearSessions(ctx.UserContext(), userID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clear chat sessions", res))
}

func (c *historyController) ListMessages(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.ListMessages(ctx.UserContext(), userID(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat messages", res))
}

func (c *historyController) CreateMessage(ctx *fiber.Ctx) error {
	var req dto.CreateChatHistoryRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateMessage(ctx.UserContext(), userID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chat message", res))
}

func (c *historyController) UpdateMessage(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateChatHistoryRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateMessage(ctx.UserContext(), userID(ctx), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update chat message", res))
}

func (c *historyController) DeleteMessage(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.DeleteMessage(ctx.UserContext(), userID(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat message", nil))
}
