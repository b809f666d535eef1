package brandcommit

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// escapeVCard escapes the characters vCard 3.0 reserves in text values.
func escapeVCard(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
		"\r", "",
	)
	return r.Replace(s)
}

// buildVCard renders a vCard 3.0 for a member. Lines end with CRLF as the
// format requires; empty fields are omitted.
func buildVCard(m Member, orgName, cardURL string) string {
	var b strings.Builder
	write := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	write("BEGIN:VCARD")
	write("VERSION:3.0")
	write("N:" + escapeVCard(m.Name) + ";;;;")
	write("FN:" + escapeVCard(m.Name))
	if orgName != "" {
		write("ORG:" + escapeVCard(orgName))
	}
	if m.Title != "" {
		write("TITLE:" + escapeVCard(m.Title))
	}
	if m.Phone != "" {
		write("TEL;TYPE=WORK,VOICE:" + escapeVCard(m.Phone))
	}
	if m.Email != "" {
		write("EMAIL;TYPE=WORK:" + escapeVCard(m.Email))
	}
	if m.Website != "" {
		write("URL:" + escapeVCard(m.Website))
	}
	if cardURL != "" {
		write("URL:" + escapeVCard(cardURL))
	}
	write("END:VCARD")
	return b.String()
}

func (a *App) handleVCard(c echo.Context) error {
	member, err := a.Members.GetBySlug(c.Param("slug"))
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}
	company, err := a.Store.GetCompany(member.CompanyID)
	if err != nil {
		return err
	}
	card := buildVCard(member, company.Name, BuildURL(a.Config.URL, "card", member.Slug))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+member.Slug+`.vcf"`)
	return c.Blob(http.StatusOK, "text/vcard; charset=utf-8", []byte(card))
}
