package kb

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/shared/storage/object"
	"visaverse-backend/internal/shared/telemetry"
)

// SeedResult counts what Seed did.
type SeedResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Seed imports top-level markdown files from store as published documents
// titled after the file name. Titles that already exist are skipped.
func Seed(ctx context.Context, svc *Service, store object.Store, actor audit.Actor) (SeedResult, error) {
	var res SeedResult
	objects, err := store.List(ctx)
	if err != nil {
		return res, err
	}
	for _, obj := range objects {
		if strings.Contains(obj.Key, "/") || !strings.EqualFold(path.Ext(obj.Key), ".md") {
			continue
		}
		content, err := readAll(ctx, store, obj.Key)
		if err != nil {
			return res, err
		}
		meta, _ := SplitFrontMatter(content)
		_, created, err := svc.Import(ctx, actor, CreateInput{
			Title:              TitleFromKey(obj.Key),
			Content:            content,
			OriginCountry:      meta["origin_country"],
			DestinationCountry: meta["destination_country"],
			Purpose:            meta["purpose"],
			Language:           meta["language"],
			Tags:               meta["tags"],
		})
		if errors.Is(err, ErrInvalidInput) {
			telemetry.Warn("kb.seed.skip", map[string]any{"key": obj.Key, "err": err})
			res.Skipped++
			continue
		}
		if err != nil {
			return res, err
		}
		if created {
			res.Imported++
		} else {
			res.Skipped++
		}
	}
	telemetry.Info("kb.seed.complete", map[string]any{"imported": res.Imported, "skipped": res.Skipped})
	return res, nil
}

func readAll(ctx context.Context, store object.Store, key string) (string, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
