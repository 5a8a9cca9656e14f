package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openclass/member-service/internal/model"
	"github.com/openclass/member-service/internal/service"
)

// Handler wires the member services into HTTP endpoints on both surfaces.
type Handler struct {
	accounts service.AccountService
	reader   service.ProjectionService
	tr       *Translator
	signKey  []byte
}

// NewHandler constructs a Handler with injected services.
func NewHandler(accounts service.AccountService, reader service.ProjectionService, tr *Translator, signKey []byte) *Handler {
	return &Handler{accounts: accounts, reader: reader, tr: tr, signKey: signKey}
}

func v2OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": V2SuccessCode, "data": data})
}

func backendOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"status": BackendSuccessCode, "data": data})
}

func parseExpandQuery(c *gin.Context) model.Expand {
	return model.ParseExpand(strings.Split(c.Query("with"), ","))
}

func pageQuery(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "15"))
	return page, pageSize
}

// --- public API v2 ---

// Profile returns the authenticated member, optionally expanded.
func (h *Handler) Profile(c *gin.Context) {
	detail, err := h.accounts.Find(c.Request.Context(), accountID(c), parseExpandQuery(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	v2OK(c, detail)
}

type resetPasswordForm struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetPassword rotates the member's secret after checking the old one.
func (h *Handler) ResetPassword(c *gin.Context) {
	var form resetPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.renderError(c, err)
		return
	}
	if err := h.accounts.ResetSecret(c.Request.Context(), accountID(c), form.OldPassword, form.NewPassword); err != nil {
		h.renderError(c, err)
		return
	}
	v2OK(c, nil)
}

type findPasswordForm struct {
	Mobile      string `json:"mobile" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// FindPassword overwrites a forgotten secret. The SMS verification gate sits
// upstream of this endpoint.
func (h *Handler) FindPassword(c *gin.Context) {
	var form findPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.renderError(c, err)
		return
	}
	if err := h.accounts.RecoverSecretWithIP(c.Request.Context(), form.Mobile, form.NewPassword, c.ClientIP()); err != nil {
		h.renderError(c, err)
		return
	}
	v2OK(c, nil)
}

type bindMobileForm struct {
	Mobile string `json:"mobile" binding:"required"`
}

// BindMobile attaches a real mobile number to the authenticated member.
func (h *Handler) BindMobile(c *gin.Context) {
	var form bindMobileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.renderError(c, err)
		return
	}
	if err := h.accounts.BindMobile(c.Request.Context(), accountID(c), form.Mobile); err != nil {
		h.renderError(c, err)
		return
	}
	v2OK(c, nil)
}

type updateAvatarForm struct {
	Avatar string `json:"avatar" binding:"required"`
}

// UpdateAvatar sets the authenticated member's avatar.
func (h *Handler) UpdateAvatar(c *gin.Context) {
	var form updateAvatarForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.renderError(c, err)
		return
	}
	if err := h.accounts.UpdateAvatar(c.Request.Context(), accountID(c), form.Avatar); err != nil {
		h.renderError(c, err)
		return
	}
	v2OK(c, nil)
}

// Notifications pages the member's notifications, newest first.
func (h *Handler) Notifications(c *gin.Context) {
	page, pageSize := pageQuery(c)
	res, err := h.reader.PaginateNotifications(c.Request.Context(), accountID(c), page, pageSize)
	if err != nil {
		h.renderError(c, err)
		return
	}
	v2OK(c, res)
}

// BuyCourses pages the member's course purchases, newest first.
func (h *Handler) BuyCourses(c *gin.Context) {
	page, pageSize := pageQuery(c)
	res, err := h.reader.PaginateCoursePurchases(c.Request.Context(), accountID(c), page, pageSize)
	if err != nil {
		h.renderError(c, err)
		return
	}
	v2OK(c, res)
}

// BuyVideos pages the member's video purchases, newest first.
func (h *Handler) BuyVideos(c *gin.Context) {
	page, pageSize := pageQuery(c)
	res, err := h.reader.PaginateVideoPurchases(c.Request.Context(), accountID(c), page, pageSize)
	if err != nil {
		h.renderError(c, err)
		return
	}
	v2OK(c, res)
}

// --- backend administration API ---

type createMemberForm struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
	NickName string `json:"nick_name"`
}

// CreateMember registers a member with a real mobile.
func (h *Handler) CreateMember(c *gin.Context) {
	var form createMemberForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.renderError(c, err)
		return
	}
	a, err := h.accounts.CreateWithMobile(c.Request.Context(), form.Mobile, form.Password, form.NickName)
	if err != nil {
		h.renderError(c, err)
		return
	}
	backendOK(c, a)
}

type createAnonymousForm struct {
	Avatar   string `json:"avatar"`
	NickName string `json:"nick_name"`
}

// CreateAnonymous registers a member with a synthetic placeholder mobile.
func (h *Handler) CreateAnonymous(c *gin.Context) {
	var form createAnonymousForm
	// an empty body is fine: every field has a default
	_ = c.ShouldBindJSON(&form)
	a, err := h.accounts.CreateAnonymous(c.Request.Context(), form.Avatar, form.NickName)
	if err != nil {
		h.renderError(c, err)
		return
	}
	backendOK(c, a)
}

// GetMember returns one member by id, optionally expanded.
func (h *Handler) GetMember(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderError(c, err)
		return
	}
	detail, err := h.accounts.Find(c.Request.Context(), id, parseExpandQuery(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	backendOK(c, detail)
}

// ListMembers returns the subset of the requested ids that exist.
func (h *Handler) ListMembers(c *gin.Context) {
	var ids []int64
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.renderError(c, err)
			return
		}
		ids = append(ids, id)
	}
	list, err := h.accounts.FindMany(c.Request.Context(), ids)
	if err != nil {
		h.renderError(c, err)
		return
	}
	backendOK(c, list)
}

// GetMemberByMobile returns the member bearing mobile, or null when unknown.
func (h *Handler) GetMemberByMobile(c *gin.Context) {
	a, err := h.accounts.FindByMobile(c.Request.Context(), c.Param("mobile"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	backendOK(c, a)
}
