package handler

import (
	"errors"
	"time"

	"github.com/fadilmartias/job-portal/internal/dto"
	"github.com/fadilmartias/job-portal/internal/middleware"
	"github.com/fadilmartias/job-portal/internal/service"
	"github.com/fadilmartias/job-portal/internal/usecase"
	"github.com/fadilmartias/job-portal/internal/util"
	"github.com/gofiber/fiber/v2"
)

type RankingHandler struct {
	ranking *usecase.RankingUsecase
	summary *usecase.SummaryUsecase
}

func NewRankingHandler(ranking *usecase.RankingUsecase, summary *usecase.SummaryUsecase) *RankingHandler {
	return &RankingHandler{ranking: ranking, summary: summary}
}

func (h *RankingHandler) RegisterRoutes(app *fiber.App) {
	// Ranking fans out to extraction and model calls, so it gets a much
	// tighter limit than the global one.
	app.Get("/jobs/:jobId/rankedApplicants", middleware.RateLimiter(5, 1*time.Minute), h.RankedApplicants)
	app.Get("/application/:applicationId", h.CandidateSummary)
	app.Get("/application/:applicationId/summary", h.CandidateSummary)
	app.Post("/emailTemplate", h.EmailTemplate)
}

func (h *RankingHandler) RankedApplicants(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	result, err := h.ranking.GetRankedApplicants(c.UserContext(), jobID)
	if err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "Job not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to rank applicants",
		}, err)
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"job":              result.Job,
		"rankedApplicants": result.RankedApplicants,
	})
}

func (h *RankingHandler) CandidateSummary(c *fiber.Ctx) error {
	applicationID := c.Params("applicationId")

	result, err := h.summary.GetCandidateSummary(c.UserContext(), applicationID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrApplicationNotFound):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "Application not found",
			})
		case errors.Is(err, service.ErrGeminiUnavailable):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "GEMINI_API_KEY not set",
			})
		case errors.Is(err, service.ErrMalformedResponse):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadGateway,
				Message: "AI response parsing failed",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to build candidate summary",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get candidate summary",
		Data:    result,
	})
}

func (h *RankingHandler) EmailTemplate(c *fiber.Ctx) error {
	var req dto.EmailTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	template, err := h.summary.GenerateEmailTemplate(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGeminiUnavailable):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "GEMINI_API_KEY not set",
			})
		case errors.Is(err, service.ErrMalformedResponse):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadGateway,
				Message: "AI response parsing failed",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to generate email template",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success generate email template",
		Data:    fiber.Map{"template": template},
	})
}
