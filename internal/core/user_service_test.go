package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/db"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
	"github.com/YogindraChaudhari/plantationDrive/pkg/mailer"
)

type fakeAccounts struct {
	deleted []string
	linkErr error
}

func (f *fakeAccounts) PasswordResetLink(ctx context.Context, email string) (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return "https://auth.example.com/reset?email=" + email, nil
}

func (f *fakeAccounts) DeleteUser(ctx context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (o *outbox) Send(ctx context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func profile(phone string) models.CreateProfileRequest {
	return models.CreateProfileRequest{FirstName: "Asha", LastName: "Patil", Phone: phone, Zone: "3"}
}

func TestCreateProfile(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(db.NewMemoryStore(), nil, nil, zap.NewNop())

	user, err := svc.CreateProfile(ctx, "uid-1", "asha@example.com", profile("98765 43210"))
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.ID)
	assert.Equal(t, "9876543210", user.Phone)
	assert.Equal(t, models.RoleReadUser, user.Role)
	assert.Equal(t, "asha@example.com", user.Email)

	_, err = svc.CreateProfile(ctx, "uid-2", "other@example.com", profile("9876543210"))
	assert.True(t, errors.Is(err, ErrDuplicatePhone))

	_, err = svc.CreateProfile(ctx, "uid-1", "asha@example.com", profile("1111111111"))
	assert.True(t, errors.Is(err, ErrProfileExists))

	req := profile("2222222222")
	req.Role = "Gardener"
	_, err = svc.CreateProfile(ctx, "uid-3", "x@example.com", req)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUserUpdateAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(db.NewMemoryStore(), nil, nil, nil)
	_, err := svc.CreateProfile(ctx, "a", "a@example.com", profile("1000000001"))
	require.NoError(t, err)
	req := profile("1000000002")
	req.FirstName = "Bala"
	req.Zone = "10"
	_, err = svc.CreateProfile(ctx, "b", "b@example.com", req)
	require.NoError(t, err)

	role := models.RoleZonalAdmin
	updated, err := svc.Update(ctx, "a", models.UpdateUserRequest{Role: &role, Zone: strPtr("2")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleZonalAdmin, updated.Role)
	assert.Equal(t, "2", updated.Zone)
	assert.Equal(t, "1000000001", updated.Phone)

	_, err = svc.Update(ctx, "a", models.UpdateUserRequest{Phone: strPtr("1000000002")})
	assert.True(t, errors.Is(err, ErrDuplicatePhone))

	_, err = svc.Update(ctx, "a", models.UpdateUserRequest{Phone: strPtr("1000000001")})
	assert.NoError(t, err, "keeping one's own phone is allowed")

	_, err = svc.Update(ctx, "ghost", models.UpdateUserRequest{Zone: strPtr("1")})
	assert.True(t, errors.Is(err, ErrUserNotFound))

	users, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].ID)
	assert.Equal(t, "b", users[1].ID)

	users, err = svc.List(ctx, "10")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Bala", users[0].FirstName)
}

func TestUserDelete(t *testing.T) {
	ctx := context.Background()
	accounts := &fakeAccounts{}
	svc := NewUserService(db.NewMemoryStore(), accounts, nil, nil)
	_, err := svc.CreateProfile(ctx, "a", "a@example.com", profile("1000000001"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "a"))
	assert.Equal(t, []string{"a"}, accounts.deleted)
	assert.True(t, errors.Is(svc.Delete(ctx, "a"), ErrUserNotFound))
}

func TestSendPasswordReset(t *testing.T) {
	ctx := context.Background()
	docs := db.NewMemoryStore()
	box := &outbox{}
	accounts := &fakeAccounts{}
	svc := NewUserService(docs, accounts, box, nil)
	_, err := svc.CreateProfile(ctx, "a", "asha@example.com", profile("1000000001"))
	require.NoError(t, err)

	require.NoError(t, svc.SendPasswordReset(ctx, "a"))
	require.Len(t, box.sent, 1)
	assert.Equal(t, "asha@example.com", box.sent[0].To)
	assert.Contains(t, box.sent[0].Body, "https://auth.example.com/reset?email=asha@example.com")
	assert.Contains(t, box.sent[0].Body, "Hello Asha")

	accounts.linkErr = errors.New("user disabled")
	assert.Error(t, svc.SendPasswordReset(ctx, "a"))

	assert.True(t, errors.Is(svc.SendPasswordReset(ctx, "ghost"), ErrUserNotFound))

	noAuth := NewUserService(docs, nil, box, nil)
	assert.True(t, errors.Is(noAuth.SendPasswordReset(ctx, "a"), ErrAccountsUnavailable))
}
