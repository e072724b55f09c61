package planner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bachat-planner/internal/core/mealplan"
	"bachat-planner/internal/core/schedule"
	"bachat-planner/internal/core/wizard"
	"bachat-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// GroceryResponse 採買清單分區
type GroceryResponse struct {
	MustAcquire []mealplan.GroceryItem `json:"mustAcquire"`
	InStorage   []mealplan.GroceryItem `json:"inStorage"`
}

// EventLinkResponse 單一事件與行事曆連結
type EventLinkResponse struct {
	Event schedule.Event `json:"event"`
	Link  string         `json:"link"`
}

// ShareResponse 分享文字與連結
type ShareResponse struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// planState 讀取已有計畫的 session
func (h *Handler) planState(ctx context.Context, id string) (*wizard.State, error) {
	state, err := h.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Plan == nil {
		return nil, wizard.ErrNoPlan
	}
	return state, nil
}

// Grocery 需購買與已有的項目
func (h *Handler) Grocery(c *gin.Context) {
	state, err := h.planState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, GroceryResponse{
		MustAcquire: state.Plan.MustAcquire(),
		InStorage:   state.Plan.InStorage(),
	})
}

// Calendar 下載所有事件的 .ics 檔
func (h *Handler) Calendar(c *gin.Context) {
	state, err := h.planState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	doc, err := h.deriver.CalendarDocument(state.Plan, state.Preferences)
	if err != nil {
		h.writeError(c, common.NewValidationError(err.Error()))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", schedule.CalendarFilename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(doc))
}

// CalendarLink 單一事件的 Google Calendar 連結；cooking 預設使用目前天數
func (h *Handler) CalendarLink(c *gin.Context) {
	state, err := h.planState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	var event schedule.Event
	switch schedule.EventKind(c.Query("event")) {
	case schedule.KindShopping:
		event = h.deriver.GroceryEvent(state.Plan)
	case schedule.KindCooking:
		day := state.ActiveDay
		if raw := c.Query("day"); raw != "" {
			if day, err = strconv.Atoi(raw); err != nil {
				h.badRequest(c, "Invalid day", err)
				return
			}
		}
		if event, err = h.deriver.CookingEvent(state.Plan, state.Preferences, day); err != nil {
			if !errors.Is(err, schedule.ErrDayNotFound) {
				err = common.NewValidationError(err.Error())
			}
			h.writeError(c, err)
			return
		}
	case schedule.KindPrep:
		var ok bool
		if event, ok = h.deriver.PrepEvent(state.Plan); !ok {
			h.writeError(c, common.ErrNotFound.WithMessage("This plan has no meal prep note"))
			return
		}
	default:
		h.badRequest(c, "event must be shopping, cooking or prep", nil)
		return
	}

	c.JSON(http.StatusOK, EventLinkResponse{
		Event: event,
		Link:  schedule.SingleEventLink(event),
	})
}

// Share 採買清單分享文字
func (h *Handler) Share(c *gin.Context) {
	state, err := h.planState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ShareResponse{
		Text: schedule.ShareText(state.Plan),
		Link: schedule.ShareLink(state.Plan),
	})
}
