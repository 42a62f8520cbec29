package controller

import (
	"wiki-chatbot-be/internal/dto"
	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/pkg/serverutils"
	"wiki-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminChatController interface {
	RegisterRoutes(r fiber.Router)
	ListSessions(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	DeleteUserSessions(ctx *fiber.Ctx) error
	GetStats(ctx *fiber.Ctx) error
}

type adminChatController struct {
	service   service.IAdminChatService
	jwtSecret string
}

func NewAdminChatController(service service.IAdminChatService, jwtSecret string) IAdminChatController {
	return &adminChatController{service: service, jwtSecret: jwtSecret}
}

func (c *adminChatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret), serverutils.RequireRole(entity.UserRoleAdmin))

	h.Get("/chat-sessions", c.ListSessions)
	h.Get("/chat-sessions/:id", c.GetSession)
	h.Delete("/chat-sessions/:id", c.DeleteSession)
	h.Delete("/users/:id/chat-sessions", c.DeleteUserSessions)
	h.Get("/stats", c.GetStats)
}

func (c *adminChatController) ListSessions(ctx *fiber.Ctx) error {
	var query dto.AdminChatSessionQuery
	if err := ctx.QueryParser(&query); err != nil {
		return err
	}

	res, err := c.service.ListSessions(ctx.UserContext(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat sessions", res))
}

func (c *adminChatController) GetSession(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetSession(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat session", res))
}

func (c *adminChatController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat session", nil))
}

func (c *adminChatController) DeleteUserSessions(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.DeleteUserSessions(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete user chat sessions", res))
}

func (c *adminChatController) GetStats(ctx *fiber.Ctx) error {
	res, err := c.service.GetStats(ctx.UserContext(), ctx.QueryInt("days", 0))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat statistics", res))
}
