package domain

import (
	"io"
	"path"
	"strings"
)

// Допустимые расширения загружаемых изображений.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
}

// UploadFile - один файл из multipart запроса.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ImageExtension возвращает расширение файла в нижнем регистре или ошибку валидации.
func ImageExtension(filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := imageExtensions[ext]; !ok {
		return "", NewValidationError("unsupported image extension %q", ext)
	}
	return ext, nil
}

// UploadReport - результат пакетной загрузки: неудачные файлы пропускаются.
type UploadReport struct {
	URLs    []string
	Skipped []string
}
