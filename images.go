package brandcommit

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxAvatarWidth = 512
	jpegQuality    = 80
	maxUploadSize  = 10 << 20 // 10MB
)

// processAvatar decodes an image, downscales it to maxAvatarWidth if wider,
// and re-encodes it as JPEG.
func processAvatar(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxAvatarWidth {
		newH := h * maxAvatarWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxAvatarWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// handleAvatarUpload replaces a member's avatar. The stored path is named
// after the member id so uploads overwrite instead of accumulating.
func (a *App) handleAvatarUpload(c echo.Context) error {
	companyID := companyFromContext(c)
	member, err := a.Store.GetMember(companyID, c.Param("id"))
	if err != nil {
		if err == ErrNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "member not found"})
		}
		return err
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no avatar file provided"})
	}
	if file.Size > maxUploadSize {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file too large (max 10MB)"})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := processAvatar(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid image"})
	}

	if err := os.MkdirAll(a.uploadsDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	filename := member.ID + ".jpg"
	if err := os.WriteFile(filepath.Join(a.uploadsDir, filename), data, 0o644); err != nil {
		return fmt.Errorf("write avatar: %w", err)
	}

	member.Avatar = filename
	saved, err := a.Store.SaveMember(member)
	if err != nil {
		return err
	}
	a.invalidateMemberCaches(companyID)
	return c.JSON(http.StatusOK, saved)
}
