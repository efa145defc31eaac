package utils

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const avatarMaxSize = 256

var ErrUnsupportedImage = errors.New("unsupported image format, expected jpeg or png")

// SaveAvatar decodes the uploaded image, scales it down to at most
// 256x256 and writes it into uploadDir. The filename is prefixed with
// the owning user's id and the upload timestamp so successive uploads
// never collide; superseded files are left in place.
func SaveAvatar(file *multipart.FileHeader, userID uint, uploadDir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return "", ErrUnsupportedImage
	}

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d_%d_%s%s",
		userID, time.Now().Unix(), strings.Split(uuid.NewString(), "-")[0], ext)
	path := filepath.Join(uploadDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	thumb := resize.Thumbnail(avatarMaxSize, avatarMaxSize, img, resize.Lanczos3)

	switch format {
	case "png":
		err = png.Encode(out, thumb)
	default:
		err = jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", err
	}

	return name, nil
}
