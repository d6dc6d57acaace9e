package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/db"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
	"github.com/YogindraChaudhari/plantationDrive/pkg/mailer"
)

const (
	userFieldEmail     = "email"
	userFieldFirstName = "firstname"
	userFieldLastName  = "lastname"
	userFieldPhone     = "phone"
	userFieldZone      = "zone"
	userFieldRole      = "role"
)

const passwordResetEmail = `Hello {{.FirstName}},

A password reset was requested for your Plantation Drive account ({{.Email}}).
Open the link below to choose a new password:

{{.Link}}

If you did not ask for this, you can ignore this message.
`

var passwordResetTemplate = template.Must(template.New("password-reset").Parse(passwordResetEmail))

// userService implements the UserService interface.
type userService struct {
	docs     db.DocumentStore
	accounts AccountManager
	mail     mailer.Mailer
	logger   *zap.Logger
}

// NewUserService creates a new UserService. accounts may be nil when no auth provider is
// configured; password resets then fail with ErrAccountsUnavailable.
func NewUserService(docs db.DocumentStore, accounts AccountManager, mail mailer.Mailer, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mail == nil {
		mail = mailer.LogMailer{Logger: logger}
	}
	return &userService{docs: docs, accounts: accounts, mail: mail, logger: logger}
}

func userFromDocument(doc *db.Document) *models.User {
	return &models.User{
		ID:        doc.Key,
		Email:     doc.String(userFieldEmail),
		FirstName: doc.String(userFieldFirstName),
		LastName:  doc.String(userFieldLastName),
		Phone:     doc.String(userFieldPhone),
		Zone:      doc.String(userFieldZone),
		Role:      models.Role(doc.String(userFieldRole)),
		CreatedAt: doc.Time(fieldCreatedAt),
		UpdatedAt: doc.Time(fieldUpdatedAt),
	}
}

func normalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

// ensurePhoneFree fails with ErrDuplicatePhone if another account than exceptUID uses phone.
func (s *userService) ensurePhoneFree(ctx context.Context, phone, exceptUID string) error {
	docs, err := s.docs.Query(ctx, db.UsersCollection, db.Where(userFieldPhone, phone))
	if err != nil {
		return storeError("check phone uniqueness", err)
	}
	for _, d := range docs {
		if d.Key != exceptUID {
			return fmt.Errorf("%w: %s", ErrDuplicatePhone, phone)
		}
	}
	return nil
}

// CreateProfile stores the profile of the authenticated user uid.
func (s *userService) CreateProfile(ctx context.Context, uid, email string, req models.CreateProfileRequest) (*models.User, error) {
	if uid == "" {
		return nil, invalidInput("user id is required")
	}
	role := req.Role
	if role == "" {
		role = models.RoleReadUser
	}
	if !models.ValidRole(role) {
		return nil, invalidInput("unknown role %q", role)
	}
	phone := normalizePhone(req.Phone)
	if phone == "" {
		return nil, invalidInput("phone is required")
	}
	if err := s.ensurePhoneFree(ctx, phone, uid); err != nil {
		return nil, err
	}

	fields := db.Fields{
		userFieldEmail:     strings.TrimSpace(email),
		userFieldFirstName: strings.TrimSpace(req.FirstName),
		userFieldLastName:  strings.TrimSpace(req.LastName),
		userFieldPhone:     phone,
		userFieldZone:      strings.TrimSpace(req.Zone),
		userFieldRole:      string(role),
		fieldCreatedAt:     db.ServerTimestamp,
	}
	if err := s.docs.CreateWithKey(ctx, db.UsersCollection, uid, fields); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrProfileExists, uid)
		}
		return nil, storeError("create profile", err)
	}
	s.logger.Info("User profile created", zap.String("uid", uid), zap.String("role", string(role)))
	return s.GetByID(ctx, uid)
}

// GetByID returns the profile of uid.
func (s *userService) GetByID(ctx context.Context, uid string) (*models.User, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrUserNotFound)
	}
	doc, err := s.docs.Get(ctx, db.UsersCollection, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return nil, storeError("get user", err)
	}
	return userFromDocument(doc), nil
}

// List returns profiles, optionally of one zone, ordered by zone then name.
func (s *userService) List(ctx context.Context, zone string) ([]*models.User, error) {
	var q db.Query
	if zone = strings.TrimSpace(zone); zone != "" {
		q = db.Where(userFieldZone, zone)
	}
	docs, err := s.docs.Query(ctx, db.UsersCollection, q)
	if err != nil {
		return nil, storeError("list users", err)
	}
	users := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, userFromDocument(d))
	}
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if a.Zone != b.Zone {
			return db.NaturalLess(a.Zone, b.Zone)
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.LastName < b.LastName
	})
	return users, nil
}

// Update changes the supplied profile fields.
func (s *userService) Update(ctx context.Context, uid string, req models.UpdateUserRequest) (*models.User, error) {
	current, err := s.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	fields := db.Fields{}
	for _, text := range []struct {
		name  string
		value *string
	}{
		{userFieldFirstName, req.FirstName},
		{userFieldLastName, req.LastName},
		{userFieldEmail, req.Email},
		{userFieldZone, req.Zone},
	} {
		if text.value != nil {
			fields[text.name] = strings.TrimSpace(*text.value)
		}
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, invalidInput("unknown role %q", *req.Role)
		}
		fields[userFieldRole] = string(*req.Role)
	}
	if req.Phone != nil {
		phone := normalizePhone(*req.Phone)
		if phone == "" {
			return nil, invalidInput("phone cannot be empty")
		}
		if phone != current.Phone {
			if err := s.ensurePhoneFree(ctx, phone, uid); err != nil {
				return nil, err
			}
		}
		fields[userFieldPhone] = phone
	}
	if len(fields) == 0 {
		return current, nil
	}

	fields[fieldUpdatedAt] = db.ServerTimestamp
	if err := s.docs.Update(ctx, db.UsersCollection, uid, fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return nil, storeError("update user", err)
	}
	return s.GetByID(ctx, uid)
}

// Delete removes the profile and, best-effort, the auth account.
func (s *userService) Delete(ctx context.Context, uid string) error {
	if err := s.docs.Delete(ctx, db.UsersCollection, uid); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return storeError("delete user", err)
	}
	if s.accounts != nil {
		if err := s.accounts.DeleteUser(ctx, uid); err != nil {
			s.logger.Warn("Profile deleted but auth account removal failed", zap.String("uid", uid), zap.Error(err))
		}
	}
	s.logger.Info("User deleted", zap.String("uid", uid))
	return nil
}

// SendPasswordReset mails a password reset link to the email on uid's profile.
func (s *userService) SendPasswordReset(ctx context.Context, uid string) error {
	if s.accounts == nil {
		return ErrAccountsUnavailable
	}
	user, err := s.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	if user.Email == "" {
		return invalidInput("user %s has no email address", uid)
	}

	link, err := s.accounts.PasswordResetLink(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to generate password reset link for %s: %w", uid, err)
	}

	var body bytes.Buffer
	data := struct{ FirstName, Email, Link string }{user.FirstName, user.Email, link}
	if err := passwordResetTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("while templating password reset email: %w", err)
	}
	if err := s.mail.Send(ctx, mailer.Message{To: user.Email, Subject: "Reset your Plantation Drive password", Body: body.String()}); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	s.logger.Info("Password reset email sent", zap.String("uid", uid))
	return nil
}
