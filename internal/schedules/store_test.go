package schedules

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestScheduleStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "schedules.json"))
}

func TestCreateAndList(t *testing.T) {
	store := newTestScheduleStore(t)

	entry := &Entry{
		CronSpec: "0 9 * * *",
		Template: Template{Description: "review inbox", Priority: 2},
		Enabled:  true,
	}
	if err := store.Create(entry); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Fatalf("List: %+v", entries)
	}
	if entries[0].Template.Description != "review inbox" {
		t.Errorf("template lost: %+v", entries[0].Template)
	}
}

func TestCreateRejectsBadCron(t *testing.T) {
	store := newTestScheduleStore(t)

	err := store.Create(&Entry{CronSpec: "not valid", Enabled: true})
	if err == nil {
		t.Fatal("expected error for invalid cron")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	store := newTestScheduleStore(t)

	entry := &Entry{CronSpec: "* * * * *", Template: Template{Description: "x"}, Enabled: true}
	if err := store.Create(entry); err != nil {
		t.Fatal(err)
	}

	entry.RunCount = 4
	entry.Enabled = false
	if err := store.Update(entry); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RunCount != 4 || got.Enabled {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := store.Delete(entry.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(entry.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := store.Get(entry.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("Get after delete: %v", err)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.json")
	store := NewFileStore(path)

	entry := &Entry{CronSpec: "0 7 * * 1", Template: Template{Description: "weekly report"}, Enabled: true}
	if err := store.Create(entry); err != nil {
		t.Fatal(err)
	}

	reopened := NewFileStore(path)
	got, err := reopened.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.CronSpec != "0 7 * * 1" {
		t.Errorf("CronSpec: got %q", got.CronSpec)
	}
}
