package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/beaconsync/internal/domain"
)

func TestStateFileRepository_LoadMissing(t *testing.T) {
	repo := NewStateFileRepository(t.TempDir())

	state, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if !state.IsEmpty() {
		t.Errorf("Load() = %+v, want empty state", state)
	}
}

func TestStateFileRepository_SaveLoad(t *testing.T) {
	repo := NewStateFileRepository(t.TempDir())
	ctx := context.Background()

	want := domain.State{
		SessionID:        "b9c7a1de",
		SessionStartedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		FramesReceived:   1024,
		FramesRejected:   3,
		DroppedCount:     2,
		Alpha:            5.2e6,
		Beta:             1.000012,
		RMSResidualMs:    0.42,
		LastReportAt:     time.Date(2026, 3, 14, 9, 27, 3, 0, time.UTC),
	}

	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestStateFileRepository_SaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	repo := NewStateFileRepository(dir)

	if err := repo.Save(context.Background(), domain.State{SessionID: "x"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(repo.Path()); err != nil {
		t.Errorf("state file missing after Save: %v", err)
	}
}

func TestStateFileRepository_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewStateFileRepository(dir)

	if err := repo.Save(context.Background(), domain.State{SessionID: "x"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(repo.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after Save")
	}
}

func TestStateFileRepository_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	repo := NewStateFileRepository(dir)

	if err := os.WriteFile(repo.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("Load() = nil error on corrupt file, want error")
	}
}
