package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/logic"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/log"
)

func (rt *Router) inviteRouter(r *gin.RouterGroup, auth gin.HandlerFunc) {
	inviteGroup := r.Group("/invite", auth)
	{
		inviteGroup.GET("/list", rt.listInvites)
		inviteGroup.POST("/create", rt.createInvite)
		inviteGroup.POST("/claim", rt.claimInvite)
		inviteGroup.POST("/verify", rt.verifyInvite)
	}
}

type createInviteReq struct {
	Note string `json:"note"`
}

type claimInviteReq struct {
	Code string `json:"code" binding:"required"`
}

// listInvites returns the most recent invites with creator and claimer.
func (rt *Router) listInvites(c *gin.Context) {
	inviteLogic := logic.NewInviteLogic(rt.Ctx, rt.Repos.Invite, rt.Repos.User, rt.Conf.IsDevelopment())

	result, err := inviteLogic.List()
	if err != nil {
		log.Errorf("list invites failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, result)
}

// createInvite generates a new invite code owned by the caller.
func (rt *Router) createInvite(c *gin.Context) {
	var req createInviteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorf("create invite failed: %v", err)
		http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Request.URL.Path)
		return
	}

	user, err := rt.Repos.User.GetByUserId(c.GetString("userId"))
	if err != nil {
		http.WithRepErrMsg(c, http.UserNotExist.Code, http.UserNotExist.Msg, c.Request.URL.Path)
		return
	}

	inviteLogic := logic.NewInviteLogic(rt.Ctx, rt.Repos.Invite, rt.Repos.User, rt.Conf.IsDevelopment())

	result, err := inviteLogic.CreateCode(user, req.Note)
	if err != nil {
		log.Errorf("create invite failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, result)
}

// claimInvite claims a code for the caller without changing their approval
// state.
func (rt *Router) claimInvite(c *gin.Context) {
	rt.claim(c, func(il *logic.InviteLogic, user *model.User, code string) (bool, error) {
		return il.ClaimCode(user, code)
	})
}

// verifyInvite claims a code and marks the caller invite-approved.
func (rt *Router) verifyInvite(c *gin.Context) {
	rt.claim(c, func(il *logic.InviteLogic, user *model.User, code string) (bool, error) {
		return il.VerifyAndClaimCode(user, code)
	})
}

func (rt *Router) claim(c *gin.Context, fn func(*logic.InviteLogic, *model.User, string) (bool, error)) {
	var req claimInviteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorf("claim invite failed: %v", err)
		http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Request.URL.Path)
		return
	}

	user, err := rt.Repos.User.GetByUserId(c.GetString("userId"))
	if err != nil {
		http.WithRepErrMsg(c, http.UserNotExist.Code, http.UserNotExist.Msg, c.Request.URL.Path)
		return
	}

	inviteLogic := logic.NewInviteLogic(rt.Ctx, rt.Repos.Invite, rt.Repos.User, rt.Conf.IsDevelopment())

	ok, err := fn(inviteLogic, user, req.Code)
	if err != nil {
		log.Errorf("claim invite failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}
	if !ok {
		http.WithRepErrMsg(c, http.InviteCodeInvalid.Code, http.InviteCodeInvalid.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.OPERATION, req.Code)
}
