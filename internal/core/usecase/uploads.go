package usecase

import (
	"context"
	"fmt"
	"time"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

const (
	propertyImagesPrefix = "property-images"
	companyLogosPrefix   = "company-logos"
)

// ObjectNamer генерирует имена объектов: <prefix>/<owner>/<unixmillis>-<random><ext>.
type ObjectNamer struct {
	Now    func() time.Time
	Random func() string
}

func NewObjectNamer() ObjectNamer {
	return ObjectNamer{
		Now:    time.Now,
		Random: func() string { return uuid.NewString()[:8] },
	}
}

func (n ObjectNamer) path(prefix string, owner uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s/%d-%s%s", prefix, owner, n.Now().UnixMilli(), n.Random(), ext)
}

type UploadPropertyImagesUseCase struct {
	access     propertyAccess
	properties port.PropertyRepositoryPort
	storage    port.ObjectStoragePort
	cache      port.ListingCachePort
	namer      ObjectNamer
}

func NewUploadPropertyImagesUseCase(
	identity usecases_port.ResolveIdentityUseCasePort,
	profiles port.ProfileRepositoryPort,
	companies port.CompanyRepositoryPort,
	properties port.PropertyRepositoryPort,
	storage port.ObjectStoragePort,
	cache port.ListingCachePort,
	namer ObjectNamer,
) *UploadPropertyImagesUseCase {
	return &UploadPropertyImagesUseCase{
		access:     newPropertyAccess(identity, profiles, companies),
		properties: properties,
		storage:    storage,
		cache:      cache,
		namer:      namer,
	}
}

// Execute загружает файлы по одному; неудачные пропускаются и перечисляются в отчете.
func (uc *UploadPropertyImagesUseCase) Execute(ctx context.Context, userID, propertyID uuid.UUID, files []domain.UploadFile) (*domain.UploadReport, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "UploadPropertyImages",
		"user_id":     userID,
		"property_id": propertyID,
		"files":       len(files),
	})
	ucLogger.Info("Use case started", nil)

	property, err := loadProperty(ctx, uc.properties, propertyID)
	if err != nil {
		return nil, err
	}
	if err := uc.access.authorize(ctx, userID, property); err != nil {
		ucLogger.Warn("Upload denied", port.Fields{"error": err.Error()})
		return nil, err
	}

	report := &domain.UploadReport{URLs: []string{}, Skipped: []string{}}
	for _, file := range files {
		ext, err := domain.ImageExtension(file.Filename)
		if err != nil {
			ucLogger.Warn("Skipping file with unsupported extension", port.Fields{"filename": file.Filename})
			report.Skipped = append(report.Skipped, file.Filename)
			continue
		}

		url, err := uc.storage.Put(ctx, uc.namer.path(propertyImagesPrefix, propertyID, ext), file.Content, file.ContentType)
		if err != nil {
			ucLogger.Warn("Skipping file that failed to upload", port.Fields{"filename": file.Filename, "error": err.Error()})
			report.Skipped = append(report.Skipped, file.Filename)
			continue
		}
		report.URLs = append(report.URLs, url)
	}

	if len(report.URLs) > 0 {
		if err := uc.properties.AppendImages(ctx, propertyID, report.URLs); err != nil {
			ucLogger.Error("Failed to attach uploaded images", err, nil)
			for _, url := range report.URLs {
				_ = uc.storage.DeleteByURL(ctx, url)
			}
			return nil, fmt.Errorf("failed to attach images: %w", err)
		}
		invalidateListings(ctx, uc.cache, ucLogger)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"uploaded": len(report.URLs), "skipped": len(report.Skipped)})
	return report, nil
}

type UploadLogoUseCase struct {
	storage port.ObjectStoragePort
	namer   ObjectNamer
}

func NewUploadLogoUseCase(storage port.ObjectStoragePort, namer ObjectNamer) *UploadLogoUseCase {
	return &UploadLogoUseCase{storage: storage, namer: namer}
}

func (uc *UploadLogoUseCase) Execute(ctx context.Context, userID uuid.UUID, file domain.UploadFile) (string, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "UploadLogo",
		"user_id":  userID,
		"filename": file.Filename,
	})
	ucLogger.Info("Use case started", nil)

	ext, err := domain.ImageExtension(file.Filename)
	if err != nil {
		return "", err
	}

	url, err := uc.storage.Put(ctx, uc.namer.path(companyLogosPrefix, userID, ext), file.Content, file.ContentType)
	if err != nil {
		ucLogger.Error("Failed to store logo", err, nil)
		return "", fmt.Errorf("failed to store logo: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"url": url})
	return url, nil
}
