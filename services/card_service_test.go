package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"idcard.link/models"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, category AssetCategory, name string) string {
	t.Helper()
	dir := filepath.Join(root, string(category))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func names(cards []models.SeniorCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.FullName
	}
	return out
}

func TestSearchCombinesTerms(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	ctx := context.Background()

	juanPrinted, err := f.svc.Create(ctx, seniorCard("Juan Dela Cruz"), "")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, seniorCard("Juan Santos"), "")
	require.NoError(t, err)
	maria, err := f.svc.Create(ctx, seniorCard("Maria Clara"), "")
	require.NoError(t, err)
	require.NoError(t, f.svc.SetStatus(ctx, juanPrinted.SCID, models.CardStatusPrinted))
	require.NoError(t, f.svc.SetStatus(ctx, maria.SCID, "printed"))

	got, err := f.svc.Search(ctx, "JUAN,PRINTED")
	require.NoError(t, err)
	require.Equal(t, []string{"Juan Dela Cruz"}, names(got))

	got, err = f.svc.Search(ctx, " juan , ")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Juan Dela Cruz", "Juan Santos"}, names(got))

	// newest first without a query
	got, err = f.svc.Search(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"Maria Clara", "Juan Santos", "Juan Dela Cruz"}, names(got))
}

func TestCreateDiscardsCallerKeyAndTimestamps(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	ctx := context.Background()

	first := seniorCard("Juan")
	first.ID = 777
	_, err := f.svc.Create(ctx, first, "")
	require.NoError(t, err)

	second := seniorCard("Juan")
	second.ID = 777
	second.CreatedAt = first.CreatedAt.AddDate(-20, 0, 0)
	got, err := f.svc.Create(ctx, second, "")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, got.ID)
	require.NotEqual(t, uint(777), got.ID)
	require.Equal(t, seniorPrefix+"000002", got.SCID)
	require.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Minute)
}

func TestSearchRanksExactMatchFirst(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, seniorCard("Ana Reyes"), "")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, seniorCard("Mariana"), "")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, seniorCard("Ana"), "")
	require.NoError(t, err)

	got, err := f.svc.Search(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, []string{"Ana", "Ana Reyes", "Mariana"}, names(got))
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	ctx := context.Background()
	_, err := f.svc.Create(ctx, seniorCard("Pedro 100% Real"), "")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, seniorCard("Pedro 1000"), "")
	require.NoError(t, err)

	got, err := f.svc.Search(ctx, "100%")
	require.NoError(t, err)
	require.Equal(t, []string{"Pedro 100% Real"}, names(got))
}

func TestSearchIsCapped(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	for i := 1; i <= 55; i++ {
		insertRaw(t, f.db, FormatCardNo(seniorPrefix, i), "Bulk")
	}
	got, err := f.svc.Search(context.Background(), "bulk")
	require.NoError(t, err)
	require.Len(t, got, 50)
	require.Equal(t, "LC-SC-000055", got[0].SCID)
}

func TestDeleteRemovesRecordAndFiles(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	ctx := context.Background()
	card, err := f.svc.Create(ctx, seniorCard("To Delete"), "")
	require.NoError(t, err)
	photo := touch(t, f.root, CategoryImages, card.SCID+".jpg")

	report, err := f.svc.Delete(ctx, card.SCID, 0)
	require.NoError(t, err)
	require.Empty(t, report.Warnings)
	require.Len(t, report.Steps, 3)
	require.Equal(t, StepOK, report.Steps[0].Status)
	require.Equal(t, StepOK, report.Steps[1].Status)
	require.Equal(t, StepAbsent, report.Steps[2].Status)

	_, statErr := os.Stat(photo)
	require.True(t, os.IsNotExist(statErr))

	got, err := f.svc.Search(ctx, "")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = f.svc.Delete(ctx, card.SCID, 0)
	require.ErrorIs(t, err, ErrCardNotFound)
}

func TestDeleteByID(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	ctx := context.Background()
	card, err := f.svc.Create(ctx, seniorCard("By Id"), "")
	require.NoError(t, err)

	report, err := f.svc.Delete(ctx, "", card.ID)
	require.NoError(t, err)
	require.Equal(t, card.SCID, report.Steps[0].Target)
}

func TestUpdateRenamesFiles(t *testing.T) {
	f := newFixture(t, CardServiceOptions{AllowCardNoEdit: true})
	ctx := context.Background()
	card, err := f.svc.Create(ctx, seniorCard("Rename Me"), "")
	require.NoError(t, err)
	touch(t, f.root, CategoryImages, card.SCID+".jpg")
	touch(t, f.root, CategorySignature, card.SCID+".png")

	edit := *card
	edit.SCID = "LC-SC-000050"
	edit.FullName = "Renamed"
	updated, report, err := f.svc.Update(ctx, &edit)
	require.NoError(t, err)
	require.Equal(t, "LC-SC-000050", updated.SCID)
	require.Equal(t, "Renamed", updated.FullName)
	require.Empty(t, report.Warnings)

	require.FileExists(t, filepath.Join(f.root, "Images", "LC-SC-000050.jpg"))
	require.FileExists(t, filepath.Join(f.root, "Signature", "LC-SC-000050.png"))
	require.NoFileExists(t, filepath.Join(f.root, "Images", card.SCID+".jpg"))

	// the next allocation continues after the edited number
	next, err := f.svc.Create(ctx, seniorCard("After Rename"), "")
	require.NoError(t, err)
	require.Equal(t, "LC-SC-000051", next.SCID)
}

type failingAssets struct {
	AssetStore
	renames int
}

func (a *failingAssets) Rename(ctx context.Context, oldKey, newKey string) []StepResult {
	a.renames++
	return []StepResult{
		{Step: "rename_asset", Target: "Images/" + oldKey, Status: StepFailed, Error: "disk full"},
		{Step: "rename_asset", Target: "Signature/" + oldKey, Status: StepAbsent},
	}
}

func TestUpdateKeepsRecordWhenRenameFails(t *testing.T) {
	f := newFixture(t, CardServiceOptions{AllowCardNoEdit: true})
	assets := &failingAssets{AssetStore: *f.assets}
	svc := newSeniorService(f.db, assets, CardServiceOptions{AllowCardNoEdit: true})
	ctx := context.Background()

	card, err := svc.Create(ctx, seniorCard("Keep Me"), "")
	require.NoError(t, err)
	edit := *card
	edit.SCID = "LC-SC-000077"

	updated, report, err := svc.Update(ctx, &edit)
	require.NoError(t, err)
	require.Equal(t, 1, assets.renames)
	require.Equal(t, "LC-SC-000077", updated.SCID)
	require.Len(t, report.Warnings, 1)
	require.Contains(t, report.Warnings[0], "disk full")
	require.False(t, report.OK())

	stored, err := svc.Get(ctx, "LC-SC-000077")
	require.NoError(t, err)
	require.Equal(t, card.ID, stored.ID)

	history, err := svc.History(ctx, "LC-SC-000077")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, models.AuditActionUpdate, history[0].Action)
	require.False(t, history[0].Success)
	var steps []StepResult
	require.NoError(t, json.Unmarshal(history[0].Steps, &steps))
	require.Len(t, steps, 3)
}

func TestUpdateWithoutRenameSkipsFiles(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	assets := &failingAssets{AssetStore: *f.assets}
	svc := newSeniorService(f.db, assets, CardServiceOptions{})
	ctx := context.Background()

	card, err := svc.Create(ctx, seniorCard("Same Number"), "")
	require.NoError(t, err)
	edit := *card
	edit.SCID = ""
	edit.ContactNum = "09171234567"
	edit.Status = ""

	updated, report, err := svc.Update(ctx, &edit)
	require.NoError(t, err)
	require.Zero(t, assets.renames)
	require.Equal(t, card.SCID, updated.SCID)
	require.Equal(t, "09171234567", updated.ContactNum)
	require.Equal(t, models.CardStatusID, updated.Status)
	require.True(t, report.OK())
}

func TestUpdateCardNoRules(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, CardServiceOptions{AllowCardNoEdit: false})
		card, err := f.svc.Create(ctx, seniorCard("A"), "")
		require.NoError(t, err)
		edit := *card
		edit.SCID = "LC-SC-000009"
		_, _, err = f.svc.Update(ctx, &edit)
		require.ErrorIs(t, err, ErrCardNoEditForbidden)
	})

	t.Run("printed", func(t *testing.T) {
		f := newFixture(t, CardServiceOptions{AllowCardNoEdit: true})
		card, err := f.svc.Create(ctx, seniorCard("A"), "")
		require.NoError(t, err)
		require.NoError(t, f.svc.SetStatus(ctx, card.SCID, models.CardStatusPrinted))
		edit := *card
		edit.SCID = "LC-SC-000009"
		edit.Status = models.CardStatusPrinted
		_, _, err = f.svc.Update(ctx, &edit)
		require.ErrorIs(t, err, ErrCardNoEditForbidden)
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newFixture(t, CardServiceOptions{AllowCardNoEdit: true})
		a, err := f.svc.Create(ctx, seniorCard("A"), "")
		require.NoError(t, err)
		b, err := f.svc.Create(ctx, seniorCard("B"), "")
		require.NoError(t, err)
		edit := *b
		edit.SCID = a.SCID
		_, _, err = f.svc.Update(ctx, &edit)
		require.ErrorIs(t, err, ErrCardDuplicate)
	})

	t.Run("wrong format", func(t *testing.T) {
		f := newFixture(t, CardServiceOptions{AllowCardNoEdit: true})
		card, err := f.svc.Create(ctx, seniorCard("A"), "")
		require.NoError(t, err)
		edit := *card
		edit.SCID = "LC-YMC-000001"
		_, _, err = f.svc.Update(ctx, &edit)
		require.ErrorIs(t, err, ErrCardInvalidInput)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t, CardServiceOptions{AllowCardNoEdit: true})
		edit := seniorCard("Ghost")
		edit.ID = 999
		_, _, err := f.svc.Update(ctx, edit)
		require.ErrorIs(t, err, ErrCardNotFound)
	})
}

func TestSetStatusValidation(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	ctx := context.Background()
	card, err := f.svc.Create(ctx, seniorCard("Status"), "")
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.SetStatus(ctx, card.SCID, "LOST"), ErrCardInvalidStatus)
	require.ErrorIs(t, f.svc.SetStatus(ctx, "LC-SC-000999", models.CardStatusPrinted), ErrCardNotFound)
	require.NoError(t, f.svc.SetStatus(ctx, card.SCID, models.CardStatusPrinted))
	// same value again is not a miss
	require.NoError(t, f.svc.SetStatus(ctx, card.SCID, models.CardStatusPrinted))

	got, err := f.svc.Get(ctx, card.SCID)
	require.NoError(t, err)
	require.Equal(t, models.CardStatusPrinted, got.Status)
}

func TestExists(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	ctx := context.Background()
	insertRaw(t, f.db, "LC-SC-000123", "Exists")

	ok, err := f.svc.Exists(ctx, "123")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.svc.Exists(ctx, "SC-000124")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.svc.Exists(ctx, "abc")
	require.ErrorIs(t, err, ErrCardInvalidInput)
}

func TestNormalizeSuffix(t *testing.T) {
	got, err := NormalizeSuffix("LC-SC-42")
	require.NoError(t, err)
	require.Equal(t, "000042", got)

	_, err = NormalizeSuffix("")
	require.Error(t, err)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t, CardServiceOptions{})
	card := seniorCard("  ")
	_, err := f.svc.Create(context.Background(), card, "")
	require.ErrorIs(t, err, ErrCardInvalidInput)

	card = seniorCard("Bad Date")
	card.BirthDate = "12/04/1950"
	_, err = f.svc.Create(context.Background(), card, "")
	require.ErrorIs(t, err, ErrCardInvalidInput)
}
