package planner

import (
	"context"
	"errors"
	"net/http"

	"bachat-planner/internal/core/ai/queue"
	"bachat-planner/internal/core/mealplan"
	"bachat-planner/internal/core/schedule"
	"bachat-planner/internal/core/session"
	"bachat-planner/internal/core/wizard"
	"bachat-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 精靈 session 與匯出的處理程序
type Handler struct {
	sessions *session.Manager
	deriver  *schedule.Deriver
	debug    bool
}

// NewHandler 創建新的處理程序
func NewHandler(sessions *session.Manager, deriver *schedule.Deriver, debug bool) *Handler {
	return &Handler{
		sessions: sessions,
		deriver:  deriver,
		debug:    debug,
	}
}

// SessionResponse 精靈狀態與推導欄位
type SessionResponse struct {
	ID string `json:"id"`
	*wizard.State
	StepValid     bool                  `json:"stepValid"`
	DailyBudget   float64               `json:"dailyBudget"`
	Feasibility   mealplan.BudgetStatus `json:"feasibility"`
	ActiveDayPlan *mealplan.DayPlan     `json:"activeDayPlan,omitempty"`
	Changed       *bool                 `json:"changed,omitempty"`
}

func newSessionResponse(id string, state *wizard.State) SessionResponse {
	resp := SessionResponse{
		ID:          id,
		State:       state,
		StepValid:   state.StepValid(),
		DailyBudget: state.Preferences.DailyBudget(),
		Feasibility: state.Preferences.Feasibility(),
	}
	if dp, err := state.ActiveDayPlan(); err == nil {
		resp.ActiveDayPlan = dp
	}
	return resp
}

// mapError 將領域錯誤轉為 API 錯誤
func mapError(err error) *common.CustomError {
	var (
		ce      *common.CustomError
		genErr  *wizard.GenerationError
		swapErr *wizard.SwapError
	)

	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, session.ErrNotFound):
		return common.ErrSessionNotFound.WithErr(err)
	case errors.Is(err, session.ErrStoreFull):
		return common.ErrSessionStoreFull.WithErr(err)
	case errors.Is(err, session.ErrSwapInFlight):
		return common.ErrSwapInFlight.WithErr(err)
	case errors.Is(err, session.ErrGenerationInFlight):
		return common.ErrGenerationInFlight.WithErr(err)
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrClosed):
		return common.ErrServiceUnavailable.WithErr(err)
	case errors.As(err, &genErr):
		return common.ErrGenerationFailed.WithErr(err)
	case errors.As(err, &swapErr):
		if swapErr.Kind == wizard.SwapZeroPrep {
			return common.ErrZeroPrepFailed.WithErr(err)
		}
		return common.ErrSwapFailed.WithErr(err)
	case errors.Is(err, wizard.ErrInsufficientInput):
		return common.ErrInsufficientIngredients.WithErr(err)
	case errors.Is(err, wizard.ErrStepIncomplete):
		return common.ErrStepIncomplete.WithErr(err)
	case errors.Is(err, wizard.ErrInvalidTransition):
		return common.ErrInvalidTransition.WithErr(err)
	case errors.Is(err, wizard.ErrNoPlan):
		return common.ErrNoPlan.WithErr(err)
	case errors.Is(err, wizard.ErrMealNotFound):
		return common.ErrMealNotFound.WithErr(err)
	case errors.Is(err, wizard.ErrDayNotFound), errors.Is(err, schedule.ErrDayNotFound):
		return common.ErrNotFound.WithMessage("Day not found in plan").WithErr(err)
	case errors.Is(err, wizard.ErrUnknownList):
		return common.ErrInvalidRequest.WithMessage("Unknown ingredient list").WithErr(err)
	case common.IsValidationError(err):
		return common.ErrValidation.WithMessage(err.Error()).WithErr(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.WithErr(err)
	default:
		return common.ErrInternalError.WithErr(err)
	}
}

// writeError 記錄並回傳錯誤
func (h *Handler) writeError(c *gin.Context, err error) {
	ce := mapError(err)
	_ = c.Error(err)

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.String("session_id", c.Param("id")),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求被拒絕", fields...)
	}

	c.AbortWithStatusJSON(ce.Status, ce.Response(h.debug))
}

// badRequest 請求格式錯誤
func (h *Handler) badRequest(c *gin.Context, message string, err error) {
	h.writeError(c, common.ErrInvalidRequest.WithMessage(message).WithErr(err))
}

// update 執行同步轉換並回傳最新狀態
func (h *Handler) update(c *gin.Context, fn func(*wizard.State) error) {
	id := c.Param("id")
	state, err := h.sessions.Update(c.Request.Context(), id, fn)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(id, state))
}

// GetOptions 問卷選項目錄
func (h *Handler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, mealplan.Options())
}
