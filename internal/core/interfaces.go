package core

import (
	"context"
	"io"

	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

// RecordRef identifies a written plant. Warning is set when the record was saved but its
// image could not be stored.
type RecordRef struct {
	Key      string `json:"key"`
	ImageURL string `json:"imageUrl,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// ListOptions filters and orders plant listings. Plants are ordered by zone, then by plant
// number with numeric-aware comparison.
type ListOptions struct {
	Zone       string
	Descending bool
}

// PlantService manages plant records and their photos.
type PlantService interface {
	Register(ctx context.Context, in models.RegisterPlantInput) (*RecordRef, error)
	FindByZoneAndNumber(ctx context.Context, zone, plantNumber string) (*models.Plant, error)
	GetByKey(ctx context.Context, key string) (*models.Plant, error)
	Update(ctx context.Context, key string, in models.UpdatePlantInput) (*RecordRef, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, opts ListOptions) ([]*models.Plant, error)
	Zones(ctx context.Context) ([]models.ZoneSummary, error)
	// Export writes an XLSX workbook of the plants of zone, or of every zone when zone is empty.
	Export(ctx context.Context, zone string, w io.Writer) error
}

// UserService manages the profiles stored next to Firebase Auth accounts.
type UserService interface {
	CreateProfile(ctx context.Context, uid, email string, req models.CreateProfileRequest) (*models.User, error)
	GetByID(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context, zone string) ([]*models.User, error)
	Update(ctx context.Context, uid string, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, uid string) error
	SendPasswordReset(ctx context.Context, uid string) error
}

// AttendanceService records and lists work check-ins.
type AttendanceService interface {
	CheckIn(ctx context.Context, userID string, req models.CheckInRequest) (*models.AttendanceEntry, error)
	List(ctx context.Context, zone, userID string) ([]*models.AttendanceEntry, error)
	WorkTypes() []string
}

// ImageProcessor validates and normalizes an uploaded photo, returning the bytes to store
// and their content type.
type ImageProcessor interface {
	Process(data []byte) ([]byte, string, error)
}

// AccountManager is the subset of the auth provider the user service needs.
type AccountManager interface {
	PasswordResetLink(ctx context.Context, email string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}
