package brandcommit

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// memberParam resolves the acting member from the request and verifies it
// belongs to the session's tenant. Likes and reads are per member, and the
// session only authenticates the company.
func (a *App) memberParam(c echo.Context) (Member, error) {
	id := c.FormValue("member_id")
	if id == "" {
		id = c.QueryParam("member_id")
	}
	if id == "" {
		return Member{}, echo.NewHTTPError(http.StatusBadRequest, "member_id is required")
	}
	member, err := a.Store.GetMember(companyFromContext(c), id)
	if err != nil {
		if err == ErrNotFound {
			return Member{}, echo.NewHTTPError(http.StatusNotFound, "member not found")
		}
		return Member{}, err
	}
	return member, nil
}

// timelineListResponse wraps the post list with the caller's unread count
// when a member identity was supplied.
type timelineListResponse struct {
	Posts       []TimelinePost `json:"posts"`
	UnreadCount *int           `json:"unread_count,omitempty"`
}

func (a *App) handleTimelineList(c echo.Context) error {
	companyID := companyFromContext(c)
	posts, err := a.Store.ListTimelinePosts(companyID)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []TimelinePost{}
	}
	resp := timelineListResponse{Posts: posts}
	if memberID := c.QueryParam("member_id"); memberID != "" {
		unread, err := a.Store.UnreadTimelineCount(companyID, memberID)
		if err != nil {
			return err
		}
		resp.UnreadCount = &unread
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleTimelineCreate(c echo.Context) error {
	var p TimelinePost
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid post payload"})
	}
	if strings.TrimSpace(p.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	companyID := companyFromContext(c)
	if p.AuthorID != "" {
		if _, err := a.Store.GetMember(companyID, p.AuthorID); err != nil {
			if err == ErrNotFound {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "author not found"})
			}
			return err
		}
	}
	p.CompanyID = companyID
	saved, err := a.Store.CreateTimelinePost(p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

func (a *App) handleTimelineDelete(c echo.Context) error {
	if err := a.Store.DeleteTimelinePost(companyFromContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// getOwnedPost loads a post and enforces tenant ownership in one step.
func (a *App) getOwnedPost(c echo.Context) (TimelinePost, error) {
	post, err := a.Store.GetTimelinePost(companyFromContext(c), c.Param("id"))
	if err != nil {
		if err == ErrNotFound {
			return TimelinePost{}, echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return TimelinePost{}, err
	}
	return post, nil
}

func (a *App) handleTimelineLike(c echo.Context) error {
	post, err := a.getOwnedPost(c)
	if err != nil {
		return err
	}
	member, err := a.memberParam(c)
	if err != nil {
		return err
	}
	if err := a.Store.LikeTimelinePost(post.ID, member.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleTimelineUnlike(c echo.Context) error {
	post, err := a.getOwnedPost(c)
	if err != nil {
		return err
	}
	member, err := a.memberParam(c)
	if err != nil {
		return err
	}
	if err := a.Store.UnlikeTimelinePost(post.ID, member.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleTimelineRead(c echo.Context) error {
	post, err := a.getOwnedPost(c)
	if err != nil {
		return err
	}
	member, err := a.memberParam(c)
	if err != nil {
		return err
	}
	if err := a.Store.MarkTimelinePostRead(post.ID, member.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleTimelineReaders(c echo.Context) error {
	post, err := a.getOwnedPost(c)
	if err != nil {
		return err
	}
	readers, err := a.Store.ListTimelineReaders(post.ID)
	if err != nil {
		return err
	}
	if readers == nil {
		readers = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"readers": readers})
}
