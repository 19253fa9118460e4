package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/infection/pkg/config"
	"github.com/matzehuels/infection/pkg/graph"
	"github.com/matzehuels/infection/pkg/propagate"
)

func sample(t *testing.T) (*graph.Graph, *Snapshot) {
	t.Helper()
	g := graph.New()
	coach := g.AddNamedNode("coach", 1)
	ann := g.AddNamedNode("ann", 1)
	g.AddNamedNode("loner", 1)
	g.Connect(coach, ann)

	res := propagate.New(g).PropagateLimited(coach, 2, 5)
	return g, NewSnapshot(g, res, 5)
}

func TestNewSnapshot(t *testing.T) {
	_, snap := sample(t)

	if snap.ID == uuid.Nil {
		t.Error("ID should be assigned")
	}
	if snap.Policy != propagate.PolicyLimited || snap.MaxCount != 5 {
		t.Errorf("Policy, MaxCount = %q, %d", snap.Policy, snap.MaxCount)
	}
	if snap.SeedName != "coach" {
		t.Errorf("SeedName = %q, want coach", snap.SeedName)
	}
	if !slices.Equal(snap.Infected, []graph.NodeID{0, 1}) {
		t.Errorf("Infected = %v, want [0 1]", snap.Infected)
	}
	want := []NodeState{{0, "coach", 2}, {1, "ann", 2}, {2, "loner", 1}}
	if !slices.Equal(snap.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", snap.Nodes, want)
	}
}

func TestNewSnapshotIDsAreUnique(t *testing.T) {
	_, a := sample(t)
	_, b := sample(t)
	if a.ID == b.ID {
		t.Error("two snapshots share an ID")
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	_, snap := sample(t)

	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := s.Get(ctx, snap.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	_, snap := sample(t)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, snap.ID.String()+".json"))
	if err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("file mode = %v, want 0644", info.Mode().Perm())
	}

	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != snap.ID || !got.CreatedAt.Equal(snap.CreatedAt) {
		t.Errorf("Get() = %v at %v, want %v at %v", got.ID, got.CreatedAt, snap.ID, snap.CreatedAt)
	}
	if !slices.Equal(got.Nodes, snap.Nodes) || got.Token != snap.Token {
		t.Errorf("Get() nodes/token mismatch: %+v", got)
	}

	if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, snap := sample(t)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	snap.Version = 9
	if err := s.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 9 {
		t.Errorf("Version = %v, want 9", got.Version)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.Store{Backend: config.BackendNone})
	if err != nil {
		t.Fatalf("Open(none) error = %v", err)
	}
	if _, ok := s.(*NullStore); !ok {
		t.Errorf("Open(none) = %T, want *NullStore", s)
	}

	dir := t.TempDir()
	s, err = Open(ctx, config.Store{Backend: config.BackendFile, Path: dir})
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	fs, ok := s.(*FileStore)
	if !ok || fs.Dir() != dir {
		t.Errorf("Open(file) = %T, want *FileStore in %s", s, dir)
	}

	t.Setenv("XDG_DATA_HOME", dir)
	s, err = Open(ctx, config.Store{Backend: config.BackendFile})
	if err != nil {
		t.Fatalf("Open(file, default path) error = %v", err)
	}
	if got := s.(*FileStore).Dir(); got != filepath.Join(dir, "infection", "snapshots") {
		t.Errorf("default Dir() = %s", got)
	}

	if _, err := Open(ctx, config.Store{Backend: "s3"}); err == nil {
		t.Error("Open(s3) error = nil, want error")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("INFECTION_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INFECTION_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisOptions{Addr: addr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()

	_, snap := sample(t)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != snap.ID || !slices.Equal(got.Infected, snap.Infected) {
		t.Errorf("Get() = %+v", got)
	}
	if ttl, err := s.TTL(ctx, snap.ID); err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL() = %v, %v", ttl, err)
	}
	if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("INFECTION_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("INFECTION_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "infection_test", "snapshots")
	if err != nil {
		t.Fatalf("NewMongoStore() error = %v", err)
	}
	defer s.Close()

	_, snap := sample(t)
	snap.Token = graph.Token(1 << 63)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != snap.ID || got.Token != snap.Token || !slices.Equal(got.Nodes, snap.Nodes) {
		t.Errorf("Get() = %+v, want %+v", got, snap)
	}
	if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestBadgerStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}

	_, snap := sample(t)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// reopen to check the snapshot was persisted
	s, err = NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.ID != snap.ID || !slices.Equal(got.Nodes, snap.Nodes) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestBadgerStoreInMemory(t *testing.T) {
	ctx := context.Background()
	s, err := NewBadgerStore("")
	if err != nil {
		t.Fatalf("NewBadgerStore(\"\") error = %v", err)
	}
	defer s.Close()

	_, snap := sample(t)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SeedName != "coach" {
		t.Errorf("SeedName = %q, want coach", got.SeedName)
	}
}

func TestOpenBadger(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), config.Store{Backend: config.BackendBadger, Path: dir})
	if err != nil {
		t.Fatalf("Open(badger) error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(*BadgerStore); !ok {
		t.Errorf("Open(badger) = %T, want *BadgerStore", s)
	}
}
