package planner

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"bachat-planner/internal/core/mealplan"
	"bachat-planner/internal/core/wizard"
	"bachat-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TagRequest 加入或切換食材
type TagRequest struct {
	Tag string `json:"tag"`
}

// GenerateRequest 提交或重新生成，constraint 可省略
type GenerateRequest struct {
	Constraint string `json:"constraint,omitempty"`
}

// ActiveDayRequest 切換顯示天數
type ActiveDayRequest struct {
	Day int `json:"day"`
}

// CreateSession 建立新的精靈 session
func (h *Handler) CreateSession(c *gin.Context) {
	id, state, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(id, state))
}

// GetSession 目前狀態與每日預算
func (h *Handler) GetSession(c *gin.Context) {
	id := c.Param("id")
	state, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(id, state))
}

// DeleteSession 放棄 session
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePreferences 部分更新偏好
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var patch wizard.PreferencesPatch
	if err := common.DecodeJSONStrict(c.Request.Body, &patch); err != nil {
		h.badRequest(c, "Invalid preferences payload", err)
		return
	}
	h.update(c, func(s *wizard.State) error {
		return s.UpdatePreferences(patch)
	})
}

// Advance 前進一步
func (h *Handler) Advance(c *gin.Context) {
	h.update(c, (*wizard.State).Advance)
}

// Retreat 回到上一步
func (h *Handler) Retreat(c *gin.Context) {
	h.update(c, func(s *wizard.State) error {
		s.Retreat()
		return nil
	})
}

// Reset 回到初始狀態
func (h *Handler) Reset(c *gin.Context) {
	h.update(c, func(s *wizard.State) error {
		s.Reset()
		return nil
	})
}

// tagOp 執行食材清單操作並回傳是否有變動
func (h *Handler) tagOp(c *gin.Context, op func(s *wizard.State, list wizard.List) (bool, error)) {
	id := c.Param("id")
	list := wizard.List(c.Param("list"))

	var changed bool
	state, err := h.sessions.Update(c.Request.Context(), id, func(s *wizard.State) error {
		var err error
		changed, err = op(s, list)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := newSessionResponse(id, state)
	resp.Changed = &changed
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bindTag(c *gin.Context) (string, bool) {
	var req TagRequest
	if err := common.DecodeJSONStrict(c.Request.Body, &req); err != nil {
		h.badRequest(c, "Invalid tag payload", err)
		return "", false
	}
	return req.Tag, true
}

// AddIngredient 加入食材
func (h *Handler) AddIngredient(c *gin.Context) {
	tag, ok := h.bindTag(c)
	if !ok {
		return
	}
	h.tagOp(c, func(s *wizard.State, list wizard.List) (bool, error) {
		return s.AddTag(list, tag)
	})
}

// ToggleIngredient 快速選取食材
func (h *Handler) ToggleIngredient(c *gin.Context) {
	tag, ok := h.bindTag(c)
	if !ok {
		return
	}
	h.tagOp(c, func(s *wizard.State, list wizard.List) (bool, error) {
		return s.ToggleTag(list, tag)
	})
}

// RemoveIngredient 移除指定位置的食材
func (h *Handler) RemoveIngredient(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.badRequest(c, "Invalid ingredient index", err)
		return
	}
	h.tagOp(c, func(s *wizard.State, list wizard.List) (bool, error) {
		return s.RemoveTag(list, index)
	})
}

// RemoveLastIngredient 移除最後一個食材
func (h *Handler) RemoveLastIngredient(c *gin.Context) {
	h.tagOp(c, (*wizard.State).RemoveLastTag)
}

// bindConstraint 讀取可省略的最佳化條件
func (h *Handler) bindConstraint(c *gin.Context) (*mealplan.Optimization, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.badRequest(c, "Invalid request body", err)
		return nil, false
	}

	var req GenerateRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := common.ParseJSONBytesStrict(body, &req); err != nil {
			h.badRequest(c, "Invalid generate payload", err)
			return nil, false
		}
	}

	constraint, ok := mealplan.ParseOptimization(req.Constraint)
	if !ok {
		h.writeError(c, common.ErrValidation.WithMessage("Unknown optimization constraint: "+req.Constraint))
		return nil, false
	}
	return constraint, true
}

// Submit 從食材步驟產生計畫
func (h *Handler) Submit(c *gin.Context) {
	constraint, ok := h.bindConstraint(c)
	if !ok {
		return
	}

	id := c.Param("id")
	common.LogInfo("開始生成計畫", zap.String("session_id", id))

	state, err := h.sessions.Submit(c.Request.Context(), id, constraint)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(id, state))
}

// Regenerate 在結果頁重新生成
func (h *Handler) Regenerate(c *gin.Context) {
	constraint, ok := h.bindConstraint(c)
	if !ok {
		return
	}

	id := c.Param("id")
	common.LogInfo("重新生成計畫", zap.String("session_id", id))

	state, err := h.sessions.Regenerate(c.Request.Context(), id, constraint)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(id, state))
}

// SetActiveDay 切換顯示天數
func (h *Handler) SetActiveDay(c *gin.Context) {
	var req ActiveDayRequest
	if err := common.DecodeJSONStrict(c.Request.Body, &req); err != nil {
		h.badRequest(c, "Invalid active day payload", err)
		return
	}
	h.update(c, func(s *wizard.State) error {
		return s.SetActiveDay(req.Day)
	})
}

// SwapMeal 替換目前天數的一道餐點
func (h *Handler) SwapMeal(c *gin.Context) {
	h.swap(c, wizard.SwapAlternative)
}

// ZeroPrepSwap 以現有食材替換
func (h *Handler) ZeroPrepSwap(c *gin.Context) {
	h.swap(c, wizard.SwapZeroPrep)
}

func (h *Handler) swap(c *gin.Context, kind wizard.SwapKind) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.badRequest(c, "Invalid meal index", err)
		return
	}

	id := c.Param("id")
	state, err := h.sessions.Swap(c.Request.Context(), id, kind, index)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(id, state))
}
