package brandcommit

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var guideKinds = map[string]bool{
	KindMission: true,
	KindVision:  true,
	KindValues:  true,
	KindPersona: true,
	KindVisual:  true,
	KindVerbal:  true,
}

func (a *App) handleGuideSectionList(c echo.Context) error {
	sections, err := a.Store.ListGuideSections(companyFromContext(c), c.QueryParam("kind"))
	if err != nil {
		return err
	}
	if sections == nil {
		sections = []GuideSection{}
	}
	return c.JSON(http.StatusOK, sections)
}

func (a *App) handleGuideSectionSave(c echo.Context) error {
	var g GuideSection
	if err := c.Bind(&g); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid section payload"})
	}
	if !guideKinds[g.Kind] {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown section kind"})
	}
	if strings.TrimSpace(g.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	g.CompanyID = companyFromContext(c)
	// An update must target a row the session owns; a foreign id is a 404,
	// never a takeover of another tenant's section.
	if g.ID != "" {
		if _, err := a.Store.GetGuideSection(g.CompanyID, g.ID); err != nil {
			if err == ErrNotFound {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "section not found"})
			}
			return err
		}
	}
	saved, err := a.Store.SaveGuideSection(g)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

func (a *App) handleGuideSectionDelete(c echo.Context) error {
	if err := a.Store.DeleteGuideSection(companyFromContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleBrandColorList(c echo.Context) error {
	colors, err := a.Store.ListBrandColors(companyFromContext(c))
	if err != nil {
		return err
	}
	if colors == nil {
		colors = []BrandColor{}
	}
	return c.JSON(http.StatusOK, colors)
}

func (a *App) handleBrandColorSave(c echo.Context) error {
	var col BrandColor
	if err := c.Bind(&col); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid color payload"})
	}
	col.Hex = strings.TrimSpace(col.Hex)
	if !ValidHexColor(col.Hex) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "hex must be #RGB or #RRGGBB"})
	}
	col.CompanyID = companyFromContext(c)
	if col.ID != "" {
		if _, err := a.Store.GetBrandColor(col.CompanyID, col.ID); err != nil {
			if err == ErrNotFound {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "color not found"})
			}
			return err
		}
	}
	saved, err := a.Store.SaveBrandColor(col)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

func (a *App) handleBrandColorDelete(c echo.Context) error {
	if err := a.Store.DeleteBrandColor(companyFromContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
