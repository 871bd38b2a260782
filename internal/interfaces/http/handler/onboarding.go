package handler

import (
	"context"

	apponboarding "github.com/documentiulia/backend/internal/application/onboarding"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OnboardingService interface {
	Get(ctx context.Context, tenantID, userID uuid.UUID) (*apponboarding.ProgressResponse, error)
	SaveStep(ctx context.Context, tenantID, userID uuid.UUID, step string, req apponboarding.StepRequest) (*apponboarding.ProgressResponse, error)
	CompleteStep(ctx context.Context, tenantID, userID uuid.UUID, step string, req apponboarding.StepRequest) (*apponboarding.ProgressResponse, error)
	SkipStep(ctx context.Context, tenantID, userID uuid.UUID, step string) (*apponboarding.ProgressResponse, error)
	GoToStep(ctx context.Context, tenantID, userID uuid.UUID, step string) (*apponboarding.ProgressResponse, error)
	Finish(ctx context.Context, tenantID, userID uuid.UUID) (*apponboarding.ProgressResponse, error)
	Reset(ctx context.Context, tenantID, userID uuid.UUID) (*apponboarding.ProgressResponse, error)
}

// OnboardingHandler drives the signed-in user's setup wizard
type OnboardingHandler struct {
	BaseHandler
	service OnboardingService
}

func NewOnboardingHandler(service OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

type onboardingAction func(ctx context.Context, tenantID, userID uuid.UUID) (*apponboarding.ProgressResponse, error)

// Get godoc
// @ID           getOnboarding
// @Summary      Get the wizard progress
// @Description  Starts a new wizard on first access.
// @Tags         onboarding
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[apponboarding.ProgressResponse]
// @Router       /onboarding [get]
func (h *OnboardingHandler) Get(c *gin.Context) {
	h.run(c, h.service.Get)
}

// SaveStep godoc
// @ID           saveOnboardingStep
// @Summary      Save step data without completing it
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        step path string true "company, profile, banking, documents or settings"
// @Param        request body apponboarding.StepRequest true "Step data"
// @Success      200 {object} APIResponse[apponboarding.ProgressResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /onboarding/steps/{step} [put]
func (h *OnboardingHandler) SaveStep(c *gin.Context) {
	var req apponboarding.StepRequest
	if !h.BindJSON(c, &req) {
		return
	}
	step := c.Param("step")
	h.run(c, func(ctx context.Context, tenantID, userID uuid.UUID) (*apponboarding.ProgressResponse, error) {
		return h.service.SaveStep(ctx, tenantID, userID, step, req)
	})
}

// CompleteStep godoc
// @ID           completeOnboardingStep
// @Summary      Complete a step
// @Description  Completing the company step with a name and CUI creates the first company.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        step path string true "Step ID"
// @Param        request body apponboarding.StepRequest false "Step data"
// @Success      200 {object} APIResponse[apponboarding.ProgressResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /onboarding/steps/{step}/complete [post]
func (h *OnboardingHandler) CompleteStep(c *gin.Context) {
	var req apponboarding.StepRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	step := c.Param("step")
	h.run(c, func(ctx context.Context, tenantID, userID uuid.UUID) (*apponboarding.ProgressResponse, error) {
		return h.service.CompleteStep(ctx, tenantID, userID, step, req)
	})
}

// SkipStep godoc
// @ID           skipOnboardingStep
// @Summary      Skip an optional step
// @Tags         onboarding
// @Produce      json
// @Security     BearerAuth
// @Param        step path string true "Step ID"
// @Success      200 {object} APIResponse[apponboarding.ProgressResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /onboarding/steps/{step}/skip [post]
func (h *OnboardingHandler) SkipStep(c *gin.Context) {
	step := c.Param("step")
	h.run(c, func(ctx context.Context, tenantID, userID uuid.UUID) (*apponboarding.ProgressResponse, error) {
		return h.service.SkipStep(ctx, tenantID, userID, step)
	})
}

// GoToStep godoc
// @ID           goToOnboardingStep
// @Summary      Move the wizard to a step
// @Tags         onboarding
// @Produce      json
// @Security     BearerAuth
// @Param        step path string true "Step ID"
// @Success      200 {object} APIResponse[apponboarding.ProgressResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /onboarding/steps/{step}/goto [post]
func (h *OnboardingHandler) GoToStep(c *gin.Context) {
	step := c.Param("step")
	h.run(c, func(ctx context.Context, tenantID, userID uuid.UUID) (*apponboarding.ProgressResponse, error) {
		return h.service.GoToStep(ctx, tenantID, userID, step)
	})
}

// Finish godoc
// @ID           finishOnboarding
// @Summary      Finish the wizard
// @Description  Fails while a required step is incomplete.
// @Tags         onboarding
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[apponboarding.ProgressResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /onboarding/finish [post]
func (h *OnboardingHandler) Finish(c *gin.Context) {
	h.run(c, h.service.Finish)
}

// Reset godoc
// @ID           resetOnboarding
// @Summary      Start the wizard over
// @Tags         onboarding
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[apponboarding.ProgressResponse]
// @Router       /onboarding/reset [post]
func (h *OnboardingHandler) Reset(c *gin.Context) {
	h.run(c, h.service.Reset)
}

func (h *OnboardingHandler) run(c *gin.Context, action onboardingAction) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	progress, err := action(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, progress)
}
