package services

import (
	"context"
	"testing"
	"time"

	"idcard.link/models"
	"idcard.link/pkg/testdb"
	"idcard.link/repositories"

	"github.com/stretchr/testify/require"
)

func TestUserServiceUpdate(t *testing.T) {
	db := testdb.Open(t)
	users := repositories.NewUserRepository(db)
	auth := NewAuthService(users, NewInMemoryRevocationStore(), AuthOptions{Secret: []byte("k"), TTL: time.Hour})
	svc := NewUserService(users, auth)
	ctx := context.Background()

	u := &models.User{Username: "clerk", PasswordHash: "x", IsActive: true}
	require.NoError(t, users.Create(ctx, u))

	name, inactive, pw := "Clerk One", false, "new-password-1"
	updated, err := svc.Update(ctx, u.ID, UpdateUserInput{FullName: &name, IsActive: &inactive, Password: &pw})
	require.NoError(t, err)
	require.Equal(t, "Clerk One", updated.FullName)
	require.False(t, updated.IsActive)
	require.NotEqual(t, "x", updated.PasswordHash)

	_, err = svc.Update(ctx, u.ID, UpdateUserInput{})
	require.ErrorIs(t, err, ErrUserInvalidInput)
	_, err = svc.Update(ctx, 999, UpdateUserInput{FullName: &name})
	require.ErrorIs(t, err, ErrUserNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCandidateSearch(t *testing.T) {
	db := testdb.Open(t)
	require.NoError(t, db.Create(&[]models.CandidateRecord{
		{IDNum: "V-1", FullName: "Juan Dela Cruz", Address: "Purok 1", Barangay: "Poblacion"},
		{IDNum: "V-2", FullName: "Juana Cruz", Barangay: "San Roque"},
		{IDNum: "V-3", FullName: "Pedro Reyes", Barangay: "San Roque"},
	}).Error)
	svc := NewCandidateService(repositories.NewCandidateRepository(db))
	ctx := context.Background()

	rows, err := svc.Search(ctx, "cruz")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Juan Dela Cruz", rows[0].FullName)

	rows, err = svc.Search(ctx, "   ")
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestQRDataURI(t *testing.T) {
	uri, err := QRDataURI("LC-SC-000001")
	require.NoError(t, err)
	require.Contains(t, uri, "data:image/png;base64,")

	layout, err := NewPrintLayout("senior", "Senior Citizen", "scpics", "LC-SC-000001", nil)
	require.NoError(t, err)
	require.Equal(t, "/api/scpics/Images/LC-SC-000001", layout.PhotoURL)
	require.Equal(t, "/api/scpics/Signature/LC-SC-000001", layout.SignatureURL)
}

func TestOperationReport(t *testing.T) {
	r := &OperationReport{}
	r.Add(StepResult{Step: "a", Target: "x", Status: StepOK})
	r.Add(StepResult{Step: "b", Target: "y", Status: StepAbsent})
	require.True(t, r.OK())
	require.Empty(t, r.Warnings)

	r.Add(StepResult{Step: "c", Target: "z", Status: StepFailed, Error: "boom"})
	require.False(t, r.OK())
	require.Equal(t, []string{"c z failed: boom"}, r.Warnings)
}
