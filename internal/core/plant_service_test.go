package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/db"
	"github.com/YogindraChaudhari/plantationDrive/internal/geo"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
	"github.com/YogindraChaudhari/plantationDrive/pkg/cache"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []PlantEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	var e PlantEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type passthroughImages struct{ err error }

func (p passthroughImages) Process(data []byte) ([]byte, string, error) {
	if p.err != nil {
		return nil, "", p.err
	}
	return data, "image/jpeg", nil
}

type plantFixture struct {
	svc    PlantService
	docs   *db.MemoryStore
	blobs  *db.MemoryBlobStore
	cache  *cache.MemoryCache
	events *recordingPublisher
}

func newPlantFixture(t *testing.T) *plantFixture {
	t.Helper()
	f := &plantFixture{
		docs:   db.NewMemoryStore(),
		blobs:  db.NewMemoryBlobStore(),
		cache:  cache.NewMemoryCache(),
		events: &recordingPublisher{},
	}
	f.svc = NewPlantService(f.docs, f.blobs, passthroughImages{}, f.cache, 0, f.events, zap.NewNop())
	return f
}

func registerInput(zone, number string) models.RegisterPlantInput {
	return models.RegisterPlantInput{
		Name:        "Neem",
		PlantNumber: number,
		Type:        "Tree",
		Height:      "6ft",
		Latitude:    "19° 6' 0\" N",
		Longitude:   "73° 6' 0\" E",
		Health:      "Good",
		Zone:        zone,
	}
}

func strPtr(s string) *string { return &s }

func TestRegisterThenFind(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()

	ref, err := f.svc.Register(ctx, registerInput("10", "5"))
	require.NoError(t, err)
	require.NotEmpty(t, ref.Key)
	assert.Empty(t, ref.Warning)

	plant, err := f.svc.FindByZoneAndNumber(ctx, "10", "5")
	require.NoError(t, err)
	assert.Equal(t, ref.Key, plant.ID)
	assert.InDelta(t, 19.1, plant.Latitude, 1e-9)
	assert.InDelta(t, 73.1, plant.Longitude, 1e-9)
	assert.Equal(t, models.HealthGood, plant.Health)
	assert.Empty(t, plant.ImageURL)
	assert.False(t, plant.CreatedAt.IsZero())

	_, err = f.svc.FindByZoneAndNumber(ctx, "10", "6")
	assert.True(t, errors.Is(err, ErrPlantNotFound))
	assert.Equal(t, []string{EventPlantRegistered}, f.events.types())
}

func TestRegister_ValidationPreventsWrite(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.RegisterPlantInput)
		wantErr error
	}{
		{name: "malformed latitude", mutate: func(in *models.RegisterPlantInput) { in.Latitude = "abc" }, wantErr: geo.ErrInvalidCoordinateFormat},
		{name: "malformed longitude", mutate: func(in *models.RegisterPlantInput) { in.Longitude = "73 6 0 E" }, wantErr: geo.ErrInvalidCoordinateFormat},
		{name: "latitude out of range", mutate: func(in *models.RegisterPlantInput) { in.Latitude = "91° 0' 0\" N" }, wantErr: geo.ErrCoordinateOutOfRange},
		{name: "missing name", mutate: func(in *models.RegisterPlantInput) { in.Name = "  " }, wantErr: ErrInvalidInput},
		{name: "bad health", mutate: func(in *models.RegisterPlantInput) { in.Health = "Wilting" }, wantErr: ErrInvalidInput},
		{name: "bad water schedule", mutate: func(in *models.RegisterPlantInput) { in.WaterSchedule = "hourly" }, wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPlantFixture(t)
			in := registerInput("1", "1")
			tt.mutate(&in)

			_, err := f.svc.Register(context.Background(), in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, 0, f.docs.Len(db.PlantsCollection))
		})
	}
}

func TestRegister_CoordinateErrorNamesField(t *testing.T) {
	f := newPlantFixture(t)
	in := registerInput("1", "1")
	in.Longitude = "east"

	_, err := f.svc.Register(context.Background(), in)
	var coordErr *geo.CoordinateError
	require.True(t, errors.As(err, &coordErr))
	assert.Equal(t, geo.Longitude, coordErr.Field)
	assert.Equal(t, "east", coordErr.Raw)
}

func TestRegister_DefaultsAndCanonicalEnums(t *testing.T) {
	f := newPlantFixture(t)
	in := registerInput("1", "1")
	in.Health = ""
	in.WaterSchedule = "WEEKLY"
	in.Latitude = "-33.5"

	ref, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	plant, err := f.svc.GetByKey(context.Background(), ref.Key)
	require.NoError(t, err)
	assert.Equal(t, models.HealthGood, plant.Health)
	assert.Equal(t, models.WaterWeekly, plant.WaterSchedule)
	assert.Equal(t, -33.5, plant.Latitude)
}

func TestRegister_DuplicateKey(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerInput("3", "7"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, registerInput("3", " 7 "))
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Equal(t, 1, f.docs.Len(db.PlantsCollection))

	_, err = f.svc.Register(ctx, registerInput("4", "7"))
	assert.NoError(t, err)
}

func TestRegister_WithImage(t *testing.T) {
	f := newPlantFixture(t)
	in := registerInput("2", "8")
	in.Image = &models.ImageUpload{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}

	ref, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, ref.Warning)
	assert.Equal(t, "memory://plants/"+ref.Key, ref.ImageURL)

	data, contentType, ok := f.blobs.Object("plants/" + ref.Key)
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", contentType)

	plant, err := f.svc.GetByKey(context.Background(), ref.Key)
	require.NoError(t, err)
	assert.Equal(t, ref.ImageURL, plant.ImageURL)
}

func TestRegister_ImageFailureIsWarning(t *testing.T) {
	t.Run("upload fails", func(t *testing.T) {
		f := newPlantFixture(t)
		f.blobs.PutErr = errors.New("bucket offline")
		in := registerInput("2", "9")
		in.Image = &models.ImageUpload{Data: []byte("x"), ContentType: "image/jpeg"}

		ref, err := f.svc.Register(context.Background(), in)
		require.NoError(t, err)
		assert.Contains(t, ref.Warning, "bucket offline")
		assert.Empty(t, ref.ImageURL)

		plant, err := f.svc.GetByKey(context.Background(), ref.Key)
		require.NoError(t, err)
		assert.Empty(t, plant.ImageURL)
	})

	t.Run("image rejected", func(t *testing.T) {
		f := newPlantFixture(t)
		f.svc = NewPlantService(f.docs, f.blobs, passthroughImages{err: ErrInvalidImage}, nil, 0, nil, nil)
		in := registerInput("2", "9")
		in.Image = &models.ImageUpload{Data: []byte("x")}

		ref, err := f.svc.Register(context.Background(), in)
		require.NoError(t, err)
		assert.NotEmpty(t, ref.Warning)
		assert.Equal(t, 1, f.docs.Len(db.PlantsCollection))
	})
}

func TestRegister_StoreUnavailable(t *testing.T) {
	f := newPlantFixture(t)
	f.docs.Err = errors.New("deadline exceeded")

	_, err := f.svc.Register(context.Background(), registerInput("1", "1"))
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.Contains(t, err.Error(), "deadline exceeded")
}

func TestUpdate_PreservesUnspecifiedFields(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	ref, err := f.svc.Register(ctx, registerInput("10", "5"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, ref.Key, models.UpdatePlantInput{Height: strPtr("12ft")})
	require.NoError(t, err)

	plant, err := f.svc.GetByKey(ctx, ref.Key)
	require.NoError(t, err)
	assert.Equal(t, "12ft", plant.Height)
	assert.Equal(t, models.HealthGood, plant.Health)
	assert.Equal(t, "Neem", plant.Name)
	assert.InDelta(t, 19.1, plant.Latitude, 1e-9)
	assert.False(t, plant.UpdatedAt.IsZero())
}

func TestUpdate_NormalizesCoordinates(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	ref, err := f.svc.Register(ctx, registerInput("1", "1"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, ref.Key, models.UpdatePlantInput{Latitude: strPtr("18° 30' 0\" S")})
	require.NoError(t, err)
	plant, err := f.svc.GetByKey(ctx, ref.Key)
	require.NoError(t, err)
	assert.InDelta(t, -18.5, plant.Latitude, 1e-9)

	_, err = f.svc.Update(ctx, ref.Key, models.UpdatePlantInput{Longitude: strPtr("abc"), Height: strPtr("20ft")})
	assert.True(t, errors.Is(err, geo.ErrInvalidCoordinateFormat))
	plant, err = f.svc.GetByKey(ctx, ref.Key)
	require.NoError(t, err)
	assert.Equal(t, "6ft", plant.Height, "a rejected update must not write any field")
}

func TestUpdate_Errors(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	first, err := f.svc.Register(ctx, registerInput("1", "1"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, registerInput("1", "2"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "missing", models.UpdatePlantInput{Height: strPtr("1ft")})
	assert.True(t, errors.Is(err, ErrPlantNotFound))

	_, err = f.svc.Update(ctx, first.Key, models.UpdatePlantInput{PlantNumber: strPtr("2")})
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	_, err = f.svc.Update(ctx, first.Key, models.UpdatePlantInput{PlantNumber: strPtr("1"), Zone: strPtr("1")})
	assert.NoError(t, err, "keeping the same natural key is not a duplicate")

	_, err = f.svc.Update(ctx, first.Key, models.UpdatePlantInput{Name: strPtr("")})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.svc.Update(ctx, first.Key, models.UpdatePlantInput{Health: strPtr("sick")})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUpdate_ReplacesImage(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	in := registerInput("5", "1")
	in.Image = &models.ImageUpload{Data: []byte("old"), ContentType: "image/jpeg"}
	ref, err := f.svc.Register(ctx, in)
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, ref.Key, models.UpdatePlantInput{
		Image: &models.ImageUpload{Data: []byte("new"), ContentType: "image/jpeg"},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Warning)
	assert.Equal(t, "memory://plants/"+ref.Key, updated.ImageURL)

	data, _, ok := f.blobs.Object("plants/" + ref.Key)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), data)
}

func TestUpdate_ReplacementUploadFailureClearsImageURL(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	in := registerInput("5", "1")
	in.Image = &models.ImageUpload{Data: []byte("old"), ContentType: "image/jpeg"}
	ref, err := f.svc.Register(ctx, in)
	require.NoError(t, err)

	f.blobs.PutErr = errors.New("quota exceeded")
	updated, err := f.svc.Update(ctx, ref.Key, models.UpdatePlantInput{
		Health: strPtr("Infected"),
		Image:  &models.ImageUpload{Data: []byte("new"), ContentType: "image/jpeg"},
	})
	require.NoError(t, err)
	assert.Contains(t, updated.Warning, "quota exceeded")
	assert.Empty(t, updated.ImageURL)

	plant, err := f.svc.GetByKey(ctx, ref.Key)
	require.NoError(t, err)
	assert.Empty(t, plant.ImageURL, "imageUrl must not point at a deleted blob")
	assert.Equal(t, models.HealthInfected, plant.Health)
}

func TestUpdate_OldImageDeleteFailureKeepsURL(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	in := registerInput("5", "1")
	in.Image = &models.ImageUpload{Data: []byte("old"), ContentType: "image/jpeg"}
	ref, err := f.svc.Register(ctx, in)
	require.NoError(t, err)

	f.blobs.DeleteErr = errors.New("permission denied")
	f.blobs.PutErr = errors.New("quota exceeded")
	updated, err := f.svc.Update(ctx, ref.Key, models.UpdatePlantInput{
		Image: &models.ImageUpload{Data: []byte("new")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Warning)
	assert.Equal(t, ref.ImageURL, updated.ImageURL)
}

func TestDelete_Twice(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	ref, err := f.svc.Register(ctx, registerInput("1", "1"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, ref.Key))
	err = f.svc.Delete(ctx, ref.Key)
	assert.True(t, errors.Is(err, ErrPlantNotFound))
	assert.Equal(t, []string{EventPlantRegistered, EventPlantDeleted}, f.events.types())
}

func TestDelete_ImageTolerance(t *testing.T) {
	t.Run("blob already missing", func(t *testing.T) {
		f := newPlantFixture(t)
		ctx := context.Background()
		in := registerInput("1", "1")
		in.Image = &models.ImageUpload{Data: []byte("img")}
		ref, err := f.svc.Register(ctx, in)
		require.NoError(t, err)
		require.NoError(t, f.blobs.Delete(ctx, "plants/"+ref.Key))

		require.NoError(t, f.svc.Delete(ctx, ref.Key))
		assert.Equal(t, 0, f.docs.Len(db.PlantsCollection))
	})

	t.Run("blob delete fails", func(t *testing.T) {
		f := newPlantFixture(t)
		ctx := context.Background()
		in := registerInput("1", "1")
		in.Image = &models.ImageUpload{Data: []byte("img")}
		ref, err := f.svc.Register(ctx, in)
		require.NoError(t, err)
		f.blobs.DeleteErr = errors.New("timeout")

		require.NoError(t, f.svc.Delete(ctx, ref.Key))
		assert.Equal(t, 0, f.docs.Len(db.PlantsCollection))
	})

	t.Run("blob without image url", func(t *testing.T) {
		f := newPlantFixture(t)
		ctx := context.Background()
		ref, err := f.svc.Register(ctx, registerInput("1", "1"))
		require.NoError(t, err)
		require.Empty(t, ref.ImageURL)
		require.NoError(t, f.blobs.Put(ctx, "plants/"+ref.Key, []byte("orphan"), "image/jpeg"))

		require.NoError(t, f.svc.Delete(ctx, ref.Key))
		_, _, ok := f.blobs.Object("plants/" + ref.Key)
		assert.False(t, ok)
		assert.Equal(t, 0, f.docs.Len(db.PlantsCollection))
	})
}

func TestFindByZoneAndNumber_MultipleMatchesReturnsFirst(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	require.NoError(t, f.docs.CreateWithKey(ctx, db.PlantsCollection, "a", db.Fields{"zone": "1", "plantNumber": "1", "name": "First"}))
	require.NoError(t, f.docs.CreateWithKey(ctx, db.PlantsCollection, "b", db.Fields{"zone": "1", "plantNumber": "1", "name": "Second"}))

	plant, err := f.svc.FindByZoneAndNumber(ctx, "1", "1")
	require.NoError(t, err)
	assert.Equal(t, "a", plant.ID)

	_, err = f.svc.FindByZoneAndNumber(ctx, "", "1")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestList_NaturalOrder(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	for _, p := range [][2]string{{"10", "1"}, {"2", "10"}, {"2", "9"}, {"2", "100"}} {
		_, err := f.svc.Register(ctx, registerInput(p[0], p[1]))
		require.NoError(t, err)
	}

	all, err := f.svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	var got []string
	for _, p := range all {
		got = append(got, p.Zone+"/"+p.PlantNumber)
	}
	assert.Equal(t, []string{"2/9", "2/10", "2/100", "10/1"}, got)

	zone2, err := f.svc.List(ctx, ListOptions{Zone: "2", Descending: true})
	require.NoError(t, err)
	got = nil
	for _, p := range zone2 {
		got = append(got, p.PlantNumber)
	}
	assert.Equal(t, []string{"100", "10", "9"}, got)
}

func TestZones_CachedAndInvalidated(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	ref, err := f.svc.Register(ctx, registerInput("2", "1"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, registerInput("10", "1"))
	require.NoError(t, err)

	zones, err := f.svc.Zones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ZoneSummary{{Zone: "2", Count: 1}, {Zone: "10", Count: 1}}, zones)

	_, found, _ := f.cache.Get(ctx, zoneSummaryCacheKey)
	assert.True(t, found)

	_, err = f.svc.Update(ctx, ref.Key, models.UpdatePlantInput{Zone: strPtr("10"), PlantNumber: strPtr("2")})
	require.NoError(t, err)
	_, found, _ = f.cache.Get(ctx, zoneSummaryCacheKey)
	assert.False(t, found, "moving a plant to another zone invalidates the summary")

	zones, err = f.svc.Zones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ZoneSummary{{Zone: "10", Count: 2}}, zones)
}

func TestEventsAreBestEffort(t *testing.T) {
	f := newPlantFixture(t)
	f.events.err = errors.New("broker down")

	_, err := f.svc.Register(context.Background(), registerInput("1", "1"))
	assert.NoError(t, err)
}

func TestExport(t *testing.T) {
	f := newPlantFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerInput("1", "2"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, registerInput("1", "1"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, registerInput("2", "1"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, "1", &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Zone 1"}, wb.GetSheetList())
	rows, err := wb.GetRows("Zone 1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "2", rows[2][0])
}
