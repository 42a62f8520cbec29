package controller

import (
	"strconv"
	"strings"

	"wiki-chatbot-be/internal/dto"
	"wiki-chatbot-be/internal/pkg/serverutils"
	"wiki-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const SessionHeader = "X-Session-Id"

type IQuestionController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	GetDocument(ctx *fiber.Ctx) error
	DeleteDocument(ctx *fiber.Ctx) error
	GetJobStatus(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type questionController struct {
	chatService service.IChatService
	ragService  service.IRagService
	jwtSecret   string
}

func NewQuestionController(chatService service.IChatService, ragService service.IRagService, jwtSecret string) IQuestionController {
	return &questionController{
		chatService: chatService,
		ragService:  ragService,
		jwtSecret:   jwtSecret,
	}
}

func (c *questionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/question")
	h.Get("/health", c.Health)
	h.Post("", serverutils.OptionalJwtMiddleware(c.jwtSecret), c.Ask)

	auth := serverutils.JwtMiddleware(c.jwtSecret)
	h.Post("/search", auth, c.Search)
	h.Post("/upload", auth, c.Upload)
	h.Get("/documents", auth, c.ListDocuments)
	h.Get("/documents/:id", auth, c.GetDocument)
	h.Delete("/documents/:id", auth, c.DeleteDocument)
	h.Get("/status/:jobId", auth, c.GetJobStatus)
}

func (c *questionController) Ask(ctx *fiber.Ctx) error {
	var req dto.QuestionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	token := strings.TrimSpace(ctx.Get(SessionHeader))
	res, err := c.chatService.Ask(ctx.UserContext(), serverutils.CurrentIdentity(ctx), token, &req)
	if err != nil {
		return err
	}

	body := dto.QuestionResponse{
		Question:     res.Question,
		Answer:       res.Answer,
		Metadata:     res.Metadata,
		SessionId:    res.SessionToken,
		HistorySaved: res.HistorySaved(),
	}
	if res.Session != nil {
		body.ChatSessionId = &res.Session.Id
	}
	if res.History != nil {
		body.HistoryId = &res.History.Id
	}

	ctx.Set(SessionHeader, res.SessionToken)
	return ctx.JSON(serverutils.SuccessResponse("Success answer question", body))
}

func (c *questionController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ragService.Search(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search documents", res))
}

func (c *questionController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		file = nil
	}

	chunkSize := formInt(ctx, "chunk_size", 0)
	chunkOverlap := formInt(ctx, "chunk_overlap", -1)

	res, err := c.ragService.UploadDocument(ctx.UserContext(), file, chunkSize, chunkOverlap)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document accepted for processing", res))
}

func (c *questionController) ListDocuments(ctx *fiber.Ctx) error {
	var req dto.ListDocumentsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	res, err := c.ragService.ListDocuments(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get documents", res))
}

func (c *questionController) GetDocument(ctx *fiber.Ctx) error {
	res, err := c.ragService.GetDocument(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get document", res))
}

func (c *questionController) DeleteDocument(ctx *fiber.Ctx) error {
	if err := c.ragService.DeleteDocument(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *questionController) GetJobStatus(ctx *fiber.Ctx) error {
	res, err := c.ragService.GetJobStatus(ctx.UserContext(), ctx.Params("jobId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get job status", res))
}

func (c *questionController) Health(ctx *fiber.Ctx) error {
	res := c.ragService.Health(ctx.UserContext())
	if !res.Healthy {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.BaseResponse[*dto.RagHealthResponse]{
			Success: false,
			Code:    fiber.StatusServiceUnavailable,
			Message: "RAG service is unavailable",
			Data:    res,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("RAG service is healthy", res))
}

// formInt returns def when the field is absent or not a number.
func formInt(ctx *fiber.Ctx, key string, def int) int {
	raw := strings.TrimSpace(ctx.FormValue(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
