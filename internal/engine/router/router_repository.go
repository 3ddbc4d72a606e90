package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/log"
)

func (rt *Router) repositoryRouter(r *gin.RouterGroup, auth gin.HandlerFunc) {
	repoGroup := r.Group("/repository", auth)
	{
		repoGroup.GET("/:repoId", rt.getRepository)
	}
}

// getRepository returns a repository by id. Only members of the owning
// organization can see it; non-members get the same not-found as a missing
// repository.
func (rt *Router) getRepository(c *gin.Context) {
	repoId := c.Param("repoId")

	repository, err := rt.Repos.Repository.GetByRepoId(repoId)
	if err != nil {
		log.Errorf("get repository failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}
	if repository == nil {
		http.WithRepErrMsg(c, http.NotFound.Code, http.NotFound.Msg, c.Request.URL.Path)
		return
	}

	member, err := rt.Repos.Organization.GetMember(repository.OrgId, c.GetString("userId"))
	if err != nil {
		log.Errorf("get repository failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}
	if member == nil {
		http.WithRepErrMsg(c, http.NotFound.Code, http.NotFound.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, repository)
}
