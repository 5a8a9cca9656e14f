package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter assembles the gin engine with both API surfaces mounted.
func NewRouter(log *zap.Logger, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logging(log), Recover(log, h))

	v2 := r.Group(apiV2Prefix)
	{
		// gated upstream by an SMS verification step, so no bearer token here
		v2.POST("/member/password/find", h.FindPassword)

		m := v2.Group("/member", h.AuthRequired())
		{
			m.GET("", h.Profile)
			m.POST("/password/reset", h.ResetPassword)
			m.POST("/mobile/bind", h.BindMobile)
			m.PUT("/avatar", h.UpdateAvatar)
			m.GET("/notifications", h.Notifications)
			m.GET("/courses", h.BuyCourses)
			m.GET("/videos", h.BuyVideos)
		}
	}

	b := r.Group(backendPrefix, h.AuthRequired())
	{
		b.POST("/members", h.CreateMember)
		b.POST("/members/anonymous", h.CreateAnonymous)
		b.GET("/members", h.ListMembers)
		b.GET("/members/:id", h.GetMember)
		b.GET("/members/mobile/:mobile", h.GetMemberByMobile)
	}

	return r
}
