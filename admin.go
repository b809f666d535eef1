package brandcommit

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if CompanyID(c) == "" {
		if a.Views.AdminLogin != nil {
			return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, map[string]string{"company_id": CompanyID(c)})
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	slug := strings.TrimSpace(c.FormValue("company"))
	pass := c.FormValue("password")
	company, err := a.Store.GetCompanyBySlug(slug)
	if err == nil && CheckPassword(company.PasswordHash, pass) {
		if err := setCompanySession(c, company.ID); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if a.Views.AdminLogin != nil {
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
	}
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid company or password"})
}

func handleAdminLogout(c echo.Context) error {
	if err := clearCompanySession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// ---- member admin API ----

func (a *App) handleMemberList(c echo.Context) error {
	members, err := a.Store.ListMembers(companyFromContext(c))
	if err != nil {
		return err
	}
	if members == nil {
		members = []Member{}
	}
	return c.JSON(http.StatusOK, members)
}

func (a *App) handleMemberGet(c echo.Context) error {
	member, err := a.Store.GetMember(companyFromContext(c), c.Param("id"))
	if err != nil {
		if err == ErrNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "member not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (a *App) handleMemberSave(c echo.Context) error {
	var m Member
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid member payload"})
	}
	if strings.TrimSpace(m.Name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	companyID := companyFromContext(c)
	if m.ID != "" {
		// Updates must target a row the session owns; the avatar survives
		// saves that omit it.
		existing, err := a.Store.GetMember(companyID, m.ID)
		if err != nil {
			if err == ErrNotFound {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "member not found"})
			}
			return err
		}
		if m.Avatar == "" {
			m.Avatar = existing.Avatar
		}
		m.CreatedAt = existing.CreatedAt
	}
	m.CompanyID = companyID
	saved, err := a.Store.SaveMember(m)
	if err == ErrSlugTaken {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "slug is already in use"})
	}
	if err != nil {
		return err
	}
	a.invalidateMemberCaches(companyID)
	return c.JSON(http.StatusOK, saved)
}

func (a *App) handleMemberDelete(c echo.Context) error {
	companyID := companyFromContext(c)
	if err := a.Store.DeleteMember(companyID, c.Param("id")); err != nil {
		return err
	}
	a.invalidateMemberCaches(companyID)
	return c.NoContent(http.StatusNoContent)
}
