package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/db"
	"github.com/YogindraChaudhari/plantationDrive/internal/geo"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
	"github.com/YogindraChaudhari/plantationDrive/internal/report"
	"github.com/YogindraChaudhari/plantationDrive/pkg/cache"
	"github.com/YogindraChaudhari/plantationDrive/pkg/messagequeue"
)

const zoneSummaryCacheKey = "plants:zones"

// plantService implements the PlantService interface.
type plantService struct {
	docs     db.DocumentStore
	blobs    db.BlobStore
	images   ImageProcessor
	cache    cache.Cache
	cacheTTL time.Duration
	events   *eventPublisher
	logger   *zap.Logger
}

// NewPlantService creates a new PlantService. images, zoneCache and publisher may be nil:
// photos are then stored as uploaded, zone summaries are computed on every call and no
// events are published.
func NewPlantService(
	docs db.DocumentStore,
	blobs db.BlobStore,
	images ImageProcessor,
	zoneCache cache.Cache,
	cacheTTL time.Duration,
	publisher messagequeue.Publisher,
	logger *zap.Logger,
) PlantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &plantService{
		docs:     docs,
		blobs:    blobs,
		images:   images,
		cache:    zoneCache,
		cacheTTL: cacheTTL,
		events:   &eventPublisher{publisher: publisher, logger: logger, now: time.Now},
		logger:   logger,
	}
}

// imageKey is the blob key of a plant's photo. It reuses the record key, so a photo can
// only be stored once its record exists.
func imageKey(recordKey string) string {
	return "plants/" + recordKey
}

// Register validates and stores a new plant, then attaches its photo if one was supplied.
func (s *plantService) Register(ctx context.Context, in models.RegisterPlantInput) (*RecordRef, error) {
	plant, err := s.validateRegister(in)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, plant.Zone, plant.PlantNumber, ""); err != nil {
		return nil, err
	}

	key, err := s.docs.Create(ctx, db.PlantsCollection, plantFields(plant))
	if err != nil {
		return nil, storeError("create plant", err)
	}
	ref := &RecordRef{Key: key}
	s.logger.Info("Plant registered", zap.String("key", key),
		zap.String("zone", plant.Zone), zap.String("plantNumber", plant.PlantNumber))

	if in.Image != nil {
		url, err := s.attachImage(ctx, key, in.Image)
		if err != nil {
			s.logger.Warn("Plant saved without image", zap.String("key", key), zap.Error(err))
			ref.Warning = "plant saved without image: " + err.Error()
		} else {
			ref.ImageURL = url
		}
	}

	s.invalidateZones(ctx)
	s.events.publish(ctx, EventPlantRegistered, &PlantEvent{Key: key, Zone: plant.Zone, PlantNumber: plant.PlantNumber})
	return ref, nil
}

func (s *plantService) validateRegister(in models.RegisterPlantInput) (*models.Plant, error) {
	p := &models.Plant{
		Name:          strings.TrimSpace(in.Name),
		PlantNumber:   strings.TrimSpace(in.PlantNumber),
		Type:          strings.TrimSpace(in.Type),
		Height:        strings.TrimSpace(in.Height),
		Zone:          strings.TrimSpace(in.Zone),
		Insects:       in.Insects,
		Fertilizers:   in.Fertilizers,
		SoilLevel:     in.SoilLevel,
		TreeBurnt:     in.TreeBurnt,
		UnwantedGrass: in.UnwantedGrass,
		WaterLogging:  in.WaterLogging,
		Compound:      in.Compound,
	}
	for _, required := range []struct{ name, value string }{
		{fieldName, p.Name},
		{fieldPlantNumber, p.PlantNumber},
		{fieldType, p.Type},
		{fieldHeight, p.Height},
		{fieldZone, p.Zone},
	} {
		if required.value == "" {
			return nil, invalidInput("%s is required", required.name)
		}
	}

	var err error
	if p.Latitude, err = normalizeCoordinate(geo.Latitude, in.Latitude); err != nil {
		return nil, err
	}
	if p.Longitude, err = normalizeCoordinate(geo.Longitude, in.Longitude); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Health) == "" {
		p.Health = models.HealthGood
	} else if p.Health, err = parseHealth(in.Health); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.WaterSchedule) != "" {
		if p.WaterSchedule, err = parseWaterSchedule(in.WaterSchedule); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func normalizeCoordinate(field geo.Field, raw string) (float64, error) {
	v, err := geo.NormalizeField(field, raw)
	if err != nil {
		return 0, err
	}
	if err := geo.CheckRange(field, v); err != nil {
		return 0, err
	}
	return v, nil
}

func parseHealth(raw string) (models.Health, error) {
	h, ok := models.ParseHealth(raw)
	if !ok {
		return "", invalidInput("health must be one of Good, Deceased, Infected, got %q", raw)
	}
	return h, nil
}

func parseWaterSchedule(raw string) (models.WaterSchedule, error) {
	w, ok := models.ParseWaterSchedule(raw)
	if !ok {
		return "", invalidInput("waterSchedule must be one of daily, weekly, alternate, got %q", raw)
	}
	return w, nil
}

// ensureUnique fails with ErrDuplicateKey if a record other than exceptKey holds the pair.
func (s *plantService) ensureUnique(ctx context.Context, zone, plantNumber, exceptKey string) error {
	docs, err := s.docs.Query(ctx, db.PlantsCollection, db.Where(fieldZone, zone, fieldPlantNumber, plantNumber))
	if err != nil {
		return storeError("check plant uniqueness", err)
	}
	for _, d := range docs {
		if d.Key != exceptKey {
			return fmt.Errorf("%w: zone %s, plant number %s (record %s)", ErrDuplicateKey, zone, plantNumber, d.Key)
		}
	}
	return nil
}

// attachImage stores the photo under the record's key and patches imageUrl.
func (s *plantService) attachImage(ctx context.Context, key string, img *models.ImageUpload) (string, error) {
	data, contentType := img.Data, img.ContentType
	if s.images != nil {
		var err error
		if data, contentType, err = s.images.Process(img.Data); err != nil {
			return "", err
		}
	}
	blobKey := imageKey(key)
	if err := s.blobs.Put(ctx, blobKey, data, contentType); err != nil {
		return "", storeError("upload image", err)
	}
	url, err := s.blobs.URL(ctx, blobKey)
	if err != nil {
		return "", storeError("get image url", err)
	}
	if err := s.docs.Update(ctx, db.PlantsCollection, key, db.Fields{fieldImageURL: url}); err != nil {
		return "", storeError("set image url", err)
	}
	return url, nil
}

func (s *plantService) getDocument(ctx context.Context, key string) (*db.Document, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: empty record key", ErrPlantNotFound)
	}
	doc, err := s.docs.Get(ctx, db.PlantsCollection, key)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: record %s", ErrPlantNotFound, key)
		}
		return nil, storeError("get plant", err)
	}
	return doc, nil
}

// FindByZoneAndNumber looks a plant up by its natural key.
func (s *plantService) FindByZoneAndNumber(ctx context.Context, zone, plantNumber string) (*models.Plant, error) {
	zone, plantNumber = strings.TrimSpace(zone), strings.TrimSpace(plantNumber)
	if zone == "" || plantNumber == "" {
		return nil, invalidInput("zone and plantNumber are required")
	}
	docs, err := s.docs.Query(ctx, db.PlantsCollection, db.Where(fieldZone, zone, fieldPlantNumber, plantNumber))
	if err != nil {
		return nil, storeError("find plant", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: zone %s, plant number %s", ErrPlantNotFound, zone, plantNumber)
	}
	if len(docs) > 1 {
		s.logger.Warn("Multiple plants share a zone and plant number, returning the first",
			zap.String("zone", zone), zap.String("plantNumber", plantNumber), zap.Int("matches", len(docs)))
	}
	return plantFromDocument(docs[0]), nil
}

// GetByKey returns a plant by its record key.
func (s *plantService) GetByKey(ctx context.Context, key string) (*models.Plant, error) {
	doc, err := s.getDocument(ctx, key)
	if err != nil {
		return nil, err
	}
	return plantFromDocument(doc), nil
}

// Update merges the supplied fields into an existing plant and replaces its photo if a new
// one is given.
func (s *plantService) Update(ctx context.Context, key string, in models.UpdatePlantInput) (*RecordRef, error) {
	doc, err := s.getDocument(ctx, key)
	if err != nil {
		return nil, err
	}
	current := plantFromDocument(doc)

	fields, err := updateFields(in)
	if err != nil {
		return nil, err
	}

	zone, plantNumber := current.Zone, current.PlantNumber
	if v, ok := fields[fieldZone].(string); ok {
		zone = v
	}
	if v, ok := fields[fieldPlantNumber].(string); ok {
		plantNumber = v
	}
	zoneChanged := zone != current.Zone
	if zoneChanged || plantNumber != current.PlantNumber {
		if err := s.ensureUnique(ctx, zone, plantNumber, key); err != nil {
			return nil, err
		}
	}

	if len(fields) > 0 {
		fields[fieldUpdatedAt] = db.ServerTimestamp
		if err := s.docs.Update(ctx, db.PlantsCollection, key, fields); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: record %s", ErrPlantNotFound, key)
			}
			return nil, storeError("update plant", err)
		}
	}

	ref := &RecordRef{Key: key, ImageURL: current.ImageURL}
	if in.Image != nil {
		url, warning := s.replaceImage(ctx, key, current.ImageURL, in.Image)
		ref.ImageURL, ref.Warning = url, warning
	}

	if zoneChanged {
		s.invalidateZones(ctx)
	}
	s.events.publish(ctx, EventPlantUpdated, &PlantEvent{Key: key, Zone: zone, PlantNumber: plantNumber})
	return ref, nil
}

func updateFields(in models.UpdatePlantInput) (db.Fields, error) {
	fields := db.Fields{}
	for _, text := range []struct {
		name     string
		value    *string
		required bool
	}{
		{fieldName, in.Name, true},
		{fieldPlantNumber, in.PlantNumber, true},
		{fieldType, in.Type, true},
		{fieldHeight, in.Height, true},
		{fieldZone, in.Zone, true},
	} {
		if text.value == nil {
			continue
		}
		v := strings.TrimSpace(*text.value)
		if v == "" && text.required {
			return nil, invalidInput("%s cannot be empty", text.name)
		}
		fields[text.name] = v
	}

	if in.Latitude != nil {
		v, err := normalizeCoordinate(geo.Latitude, *in.Latitude)
		if err != nil {
			return nil, err
		}
		fields[fieldLatitude] = v
	}
	if in.Longitude != nil {
		v, err := normalizeCoordinate(geo.Longitude, *in.Longitude)
		if err != nil {
			return nil, err
		}
		fields[fieldLongitude] = v
	}
	if in.Health != nil {
		h, err := parseHealth(*in.Health)
		if err != nil {
			return nil, err
		}
		fields[fieldHealth] = string(h)
	}
	if in.WaterSchedule != nil {
		if strings.TrimSpace(*in.WaterSchedule) == "" {
			fields[fieldWaterSchedule] = db.DeleteField
		} else {
			w, err := parseWaterSchedule(*in.WaterSchedule)
			if err != nil {
				return nil, err
			}
			fields[fieldWaterSchedule] = string(w)
		}
	}

	for _, flag := range []struct {
		name  string
		value *bool
	}{
		{fieldInsects, in.Insects},
		{fieldFertilizers, in.Fertilizers},
		{fieldSoilLevel, in.SoilLevel},
		{fieldTreeBurnt, in.TreeBurnt},
		{fieldUnwantedGrass, in.UnwantedGrass},
		{fieldWaterLogging, in.WaterLogging},
		{fieldCompound, in.Compound},
	} {
		if flag.value != nil {
			fields[flag.name] = *flag.value
		}
	}
	return fields, nil
}

// replaceImage deletes the old photo, stores the new one and patches imageUrl. It returns
// the URL the record ends up with and a warning when the new photo could not be stored.
func (s *plantService) replaceImage(ctx context.Context, key, oldURL string, img *models.ImageUpload) (string, string) {
	oldRemoved := false
	if oldURL != "" {
		if err := s.blobs.Delete(ctx, imageKey(key)); err != nil {
			s.logger.Warn("Failed to delete previous plant image", zap.String("key", key), zap.Error(err))
		} else {
			oldRemoved = true
		}
	}

	url, err := s.attachImage(ctx, key, img)
	if err == nil {
		return url, ""
	}
	s.logger.Warn("Plant updated without new image", zap.String("key", key), zap.Error(err))
	warning := "plant updated without new image: " + err.Error()

	if !oldRemoved {
		return oldURL, warning
	}
	patch := db.Fields{fieldImageURL: db.DeleteField, fieldUpdatedAt: db.ServerTimestamp}
	if err := s.docs.Update(ctx, db.PlantsCollection, key, patch); err != nil {
		s.logger.Warn("Failed to clear stale image url", zap.String("key", key), zap.Error(err))
		return oldURL, warning
	}
	return "", warning
}

// Delete removes a plant and, best-effort, any photo stored under its key.
func (s *plantService) Delete(ctx context.Context, key string) error {
	doc, err := s.getDocument(ctx, key)
	if err != nil {
		return err
	}
	plant := plantFromDocument(doc)

	if err := s.blobs.Delete(ctx, imageKey(key)); err != nil {
		s.logger.Warn("Failed to delete plant image, deleting record anyway", zap.String("key", key), zap.Error(err))
	}

	if err := s.docs.Delete(ctx, db.PlantsCollection, key); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: record %s", ErrPlantNotFound, key)
		}
		return storeError("delete plant", err)
	}
	s.logger.Info("Plant deleted", zap.String("key", key))

	s.invalidateZones(ctx)
	s.events.publish(ctx, EventPlantDeleted, &PlantEvent{Key: key, Zone: plant.Zone, PlantNumber: plant.PlantNumber})
	return nil
}

// List returns plants ordered by zone and plant number.
func (s *plantService) List(ctx context.Context, opts ListOptions) ([]*models.Plant, error) {
	var q db.Query
	if zone := strings.TrimSpace(opts.Zone); zone != "" {
		q = db.Where(fieldZone, zone)
	}
	docs, err := s.docs.Query(ctx, db.PlantsCollection, q)
	if err != nil {
		return nil, storeError("list plants", err)
	}
	plants := make([]*models.Plant, 0, len(docs))
	for _, d := range docs {
		plants = append(plants, plantFromDocument(d))
	}
	sort.SliceStable(plants, func(i, j int) bool {
		a, b := plants[i], plants[j]
		if a.Zone != b.Zone {
			return db.NaturalLess(a.Zone, b.Zone)
		}
		if opts.Descending {
			return db.NaturalLess(b.PlantNumber, a.PlantNumber)
		}
		return db.NaturalLess(a.PlantNumber, b.PlantNumber)
	})
	return plants, nil
}

// Zones counts plants per zone. The summary is cached until a plant is added, removed or
// moved to another zone.
func (s *plantService) Zones(ctx context.Context) ([]models.ZoneSummary, error) {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, zoneSummaryCacheKey)
		if err != nil {
			s.logger.Warn("Zone summary cache read failed", zap.Error(err))
		} else if found {
			var summaries []models.ZoneSummary
			if err := json.Unmarshal([]byte(cached), &summaries); err == nil {
				return summaries, nil
			}
			s.logger.Warn("Discarding undecodable zone summary cache entry")
		}
	}

	docs, err := s.docs.Query(ctx, db.PlantsCollection, db.Query{})
	if err != nil {
		return nil, storeError("list zones", err)
	}
	counts := make(map[string]int)
	for _, d := range docs {
		counts[d.String(fieldZone)]++
	}
	summaries := make([]models.ZoneSummary, 0, len(counts))
	for zone, n := range counts {
		summaries = append(summaries, models.ZoneSummary{Zone: zone, Count: n})
	}
	sort.Slice(summaries, func(i, j int) bool { return db.NaturalLess(summaries[i].Zone, summaries[j].Zone) })

	if s.cache != nil {
		if body, err := json.Marshal(summaries); err == nil {
			if err := s.cache.Set(ctx, zoneSummaryCacheKey, string(body), s.cacheTTL); err != nil {
				s.logger.Warn("Zone summary cache write failed", zap.Error(err))
			}
		}
	}
	return summaries, nil
}

func (s *plantService) invalidateZones(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, zoneSummaryCacheKey); err != nil {
		s.logger.Warn("Zone summary cache invalidation failed", zap.Error(err))
	}
}

// Export writes the plants of zone, or all plants, as an XLSX workbook.
func (s *plantService) Export(ctx context.Context, zone string, w io.Writer) error {
	plants, err := s.List(ctx, ListOptions{Zone: zone})
	if err != nil {
		return err
	}
	return report.WriteZoneWorkbook(w, plants)
}
