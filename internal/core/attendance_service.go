package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/db"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

// Check-in date and time are stored as display text in the configured time zone.
const (
	attendanceDateLayout = "2/1/2006"
	attendanceTimeLayout = "3:04:05 pm"
)

// attendanceService implements the AttendanceService interface.
type attendanceService struct {
	docs      db.DocumentStore
	users     UserService
	location  *time.Location
	now       func() time.Time
	workTypes map[string]bool
	logger    *zap.Logger
}

// NewAttendanceService creates a new AttendanceService that formats check-in times in loc.
func NewAttendanceService(docs db.DocumentStore, users UserService, loc *time.Location, logger *zap.Logger) AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	known := make(map[string]bool, len(models.WorkTypes))
	for _, w := range models.WorkTypes {
		known[w] = true
	}
	return &attendanceService{docs: docs, users: users, location: loc, now: time.Now, workTypes: known, logger: logger}
}

// CheckIn appends an attendance entry for userID, copying name and zone from the profile.
func (s *attendanceService) CheckIn(ctx context.Context, userID string, req models.CheckInRequest) (*models.AttendanceEntry, error) {
	workType := strings.TrimSpace(req.WorkType)
	if !s.workTypes[workType] {
		return nil, invalidInput("unknown work type %q", req.WorkType)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	at := s.now().In(s.location)
	entry := &models.AttendanceEntry{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Zone:      user.Zone,
		WorkType:  workType,
		Date:      at.Format(attendanceDateLayout),
		Time:      at.Format(attendanceTimeLayout),
		CreatedAt: at.UTC(),
	}
	key, err := s.docs.Create(ctx, db.AttendanceCollection, db.Fields{
		"userId":       entry.UserID,
		"firstname":    entry.FirstName,
		"lastname":     entry.LastName,
		"zone":         entry.Zone,
		"workType":     entry.WorkType,
		"date":         entry.Date,
		"time":         entry.Time,
		fieldCreatedAt: entry.CreatedAt,
	})
	if err != nil {
		return nil, storeError("record attendance", err)
	}
	entry.ID = key
	s.logger.Info("Attendance recorded", zap.String("userId", userID), zap.String("zone", entry.Zone))
	return entry, nil
}

// List returns entries newest first, filtered by zone and user when given.
func (s *attendanceService) List(ctx context.Context, zone, userID string) ([]*models.AttendanceEntry, error) {
	var args []interface{}
	if zone = strings.TrimSpace(zone); zone != "" {
		args = append(args, "zone", zone)
	}
	if userID = strings.TrimSpace(userID); userID != "" {
		args = append(args, "userId", userID)
	}
	docs, err := s.docs.Query(ctx, db.AttendanceCollection, db.Where(args...))
	if err != nil {
		return nil, storeError("list attendance", err)
	}
	entries := make([]*models.AttendanceEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, &models.AttendanceEntry{
			ID:        d.Key,
			UserID:    d.String("userId"),
			FirstName: d.String("firstname"),
			LastName:  d.String("lastname"),
			Zone:      d.String("zone"),
			WorkType:  d.String("workType"),
			Date:      d.String("date"),
			Time:      d.String("time"),
			CreatedAt: d.Time(fieldCreatedAt),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

// WorkTypes returns the known work types in display order.
func (s *attendanceService) WorkTypes() []string {
	return append([]string(nil), models.WorkTypes...)
}
