package brandcommit

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrMinSize     = 128
	qrMaxSize     = 1024
	qrDefaultSize = 512
)

// qrSize parses and clamps the ?size= query parameter.
func qrSize(raw string) int {
	size, err := strconv.Atoi(raw)
	if err != nil {
		return qrDefaultSize
	}
	if size < qrMinSize {
		return qrMinSize
	}
	if size > qrMaxSize {
		return qrMaxSize
	}
	return size
}

// cardQRPNG encodes the canonical card URL of a member as a PNG.
func (a *App) cardQRPNG(m Member, size int) ([]byte, error) {
	png, err := qrcode.Encode(BuildURL(a.Config.URL, "card", m.Slug), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (a *App) handleCardQR(c echo.Context) error {
	member, err := a.Members.GetBySlug(c.Param("slug"))
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}
	png, err := a.cardQRPNG(member, qrSize(c.QueryParam("size")))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// handleQRZip streams a zip with one QR PNG per published member, named by
// slug so re-exports are stable.
func (a *App) handleQRZip(c echo.Context) error {
	members, err := a.Store.ListPublishedMembers(companyFromContext(c))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		png, err := a.cardQRPNG(m, qrDefaultSize)
		if err != nil {
			zw.Close()
			return err
		}
		w, err := zw.Create(m.Slug + ".png")
		if err != nil {
			zw.Close()
			return err
		}
		if _, err := w.Write(png); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="card-qr-codes.zip"`)
	return c.Blob(http.StatusOK, "application/zip", buf.Bytes())
}
