package sqlite

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/memorylane/memorylane-server/internal/domain"
	"github.com/memorylane/memorylane-server/internal/store"
)

func storeFilter(tag string) store.MemoryFilter {
	return store.MemoryFilter{Tag: tag}
}

// makeTestMemory creates a domain.Memory with sensible defaults for testing.
func makeTestMemory(name string, tags ...string) *domain.Memory {
	return &domain.Memory{
		Name:        name,
		Description: "description of " + name,
		Timestamp:   "2024-01-01",
		Image:       "data:image/png;base64,AAAA",
		Tags:        tags,
	}
}

// countRows returns the row count of table, bypassing the store API.
func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// failTagInsert installs a trigger that aborts any link to the named tag.
func failTagInsert(t *testing.T, s *Store, tag string) {
	t.Helper()
	_, err := s.db.Exec(`
		CREATE TRIGGER fail_tag_insert BEFORE INSERT ON memory_tags
		WHEN NEW.tag_id = (SELECT id FROM tags WHERE name = '` + tag + `')
		BEGIN
			SELECT RAISE(ABORT, 'simulated tag insert failure');
		END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}
}

func equalTags(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestCreateAndGetMemory(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	m := makeTestMemory("Beach day", "outdoors", "traveling")
	m.Timestamp = "2024-07-04T12:00:00.000Z"

	id, err := s.CreateMemory(ctx, m)
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	if id != 1 {
		t.Errorf("id: got %d, want 1", id)
	}
	if m.ID != id {
		t.Errorf("m.ID: got %d, want %d", m.ID, id)
	}

	got, err := s.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}

	if got.Name != m.Name {
		t.Errorf("Name: got %q, want %q", got.Name, m.Name)
	}
	if got.Description != m.Description {
		t.Errorf("Description: got %q, want %q", got.Description, m.Description)
	}
	// The timestamp is stored exactly as supplied.
	if got.Timestamp != "2024-07-04T12:00:00.000Z" {
		t.Errorf("Timestamp: got %q", got.Timestamp)
	}
	if got.Image != m.Image {
		t.Errorf("Image: got %q, want %q", got.Image, m.Image)
	}
	// Tags come back in catalog order.
	if !equalTags(got.Tags, []string{"traveling", "outdoors"}) {
		t.Errorf("Tags: got %v, want [traveling outdoors]", got.Tags)
	}
}

func TestCreateMemory_IDsIncrease(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		id, err := s.CreateMemory(ctx, makeTestMemory("m"))
		if err != nil {
			t.Fatalf("CreateMemory: %v", err)
		}
		if id <= last {
			t.Errorf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestCreateMemory_NoTags(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	id, err := s.CreateMemory(ctx, makeTestMemory("plain"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	got, err := s.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags: got %#v, want empty non-nil slice", got.Tags)
	}
}

func TestCreateMemory_UnknownTagsDropped(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	id, err := s.CreateMemory(ctx, makeTestMemory("m", "cooking", "skydiving"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	got, err := s.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if !equalTags(got.Tags, []string{"cooking"}) {
		t.Errorf("Tags: got %v, want [cooking]", got.Tags)
	}
}

func TestCreateMemory_DuplicateTagsCollapsed(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	id, err := s.CreateMemory(ctx, makeTestMemory("m", "cooking", "Cooking", "cooking"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	got, err := s.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if !equalTags(got.Tags, []string{"cooking"}) {
		t.Errorf("Tags: got %v, want [cooking]", got.Tags)
	}
}

func TestCreateMemory_TooManyTags(t *testing.T) {
	s := newSeededStore(t)
	if _, err := s.SeedTags(context.Background(), []string{"gardening"}); err != nil {
		t.Fatalf("SeedTags: %v", err)
	}

	_, err := s.CreateMemory(context.Background(),
		makeTestMemory("m", "cooking", "traveling", "outdoors", "gardening"))
	if !errors.Is(err, store.ErrTooManyTags) {
		t.Fatalf("expected ErrTooManyTags, got %v", err)
	}
	if n := countRows(t, s, "memories"); n != 0 {
		t.Errorf("expected no memories, got %d", n)
	}
}

func TestCreateMemory_RollbackOnTagFailure(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	failTagInsert(t, s, "outdoors")

	_, err := s.CreateMemory(ctx, makeTestMemory("doomed", "cooking", "outdoors"))
	if err == nil {
		t.Fatal("expected error from failing tag insert")
	}
	if !strings.Contains(err.Error(), "simulated tag insert failure") {
		t.Errorf("unexpected error: %v", err)
	}

	if n := countRows(t, s, "memories"); n != 0 {
		t.Errorf("memories: got %d rows, want 0", n)
	}
	if n := countRows(t, s, "memory_tags"); n != 0 {
		t.Errorf("memory_tags: got %d rows, want 0", n)
	}
	if _, err := s.GetMemory(ctx, 1); !errors.Is(err, store.ErrMemoryNotFound) {
		t.Errorf("GetMemory(1): expected ErrMemoryNotFound, got %v", err)
	}
}

func TestGetMemory_NotFound(t *testing.T) {
	s := newSeededStore(t)

	_, err := s.GetMemory(context.Background(), 42)
	if !errors.Is(err, store.ErrMemoryNotFound) {
		t.Fatalf("expected ErrMemoryNotFound, got %v", err)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound match, got %v", err)
	}
}

func TestListMemories(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	for _, m := range []*domain.Memory{
		makeTestMemory("first", "cooking"),
		makeTestMemory("second"),
		makeTestMemory("third", "outdoors", "cooking"),
	} {
		if _, err := s.CreateMemory(ctx, m); err != nil {
			t.Fatalf("CreateMemory: %v", err)
		}
	}

	memories, err := s.ListMemories(ctx, storeFilter(""))
	if err != nil {
		t.Fatalf("ListMemories: %v", err)
	}
	if len(memories) != 3 {
		t.Fatalf("expected 3 memories, got %d", len(memories))
	}

	want := map[string][]string{
		"first":  {"cooking"},
		"second": {},
		"third":  {"cooking", "outdoors"},
	}
	for _, m := range memories {
		if !equalTags(m.Tags, want[m.Name]) {
			t.Errorf("%s tags: got %v, want %v", m.Name, m.Tags, want[m.Name])
		}
	}
}

func TestListMemories_Empty(t *testing.T) {
	s := newSeededStore(t)

	memories, err := s.ListMemories(context.Background(), storeFilter(""))
	if err != nil {
		t.Fatalf("ListMemories: %v", err)
	}
	if memories == nil || len(memories) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", memories)
	}
}

func TestListMemories_FilterByTag(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	for _, m := range []*domain.Memory{
		makeTestMemory("a", "cooking"),
		makeTestMemory("b", "traveling"),
		makeTestMemory("c", "outdoors", "cooking"),
	} {
		if _, err := s.CreateMemory(ctx, m); err != nil {
			t.Fatalf("CreateMemory: %v", err)
		}
	}

	memories, err := s.ListMemories(ctx, storeFilter("Cooking"))
	if err != nil {
		t.Fatalf("ListMemories: %v", err)
	}
	if len(memories) != 2 || memories[0].Name != "a" || memories[1].Name != "c" {
		t.Fatalf("filtered: got %d memories", len(memories))
	}
	// The filter selects memories; each keeps its full tag set.
	if !equalTags(memories[1].Tags, []string{"cooking", "outdoors"}) {
		t.Errorf("c tags: got %v", memories[1].Tags)
	}
}

func TestUpdateMemory_ReplacesTags(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	id, err := s.CreateMemory(ctx, makeTestMemory("before", "cooking", "traveling"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	updated := makeTestMemory("after", "outdoors")
	updated.ID = id
	updated.Description = "new description"
	updated.Timestamp = "2025-02-02"
	updated.Image = "data:image/png;base64,BBBB"

	if err := s.UpdateMemory(ctx, updated); err != nil {
		t.Fatalf("UpdateMemory: %v", err)
	}

	got, err := s.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if got.Name != "after" || got.Description != "new description" ||
		got.Timestamp != "2025-02-02" || got.Image != "data:image/png;base64,BBBB" {
		t.Errorf("fields not updated: %+v", got)
	}
	if !equalTags(got.Tags, []string{"outdoors"}) {
		t.Errorf("Tags: got %v, want [outdoors]", got.Tags)
	}
	if n := countRows(t, s, "memory_tags"); n != 1 {
		t.Errorf("memory_tags: got %d rows, want 1", n)
	}
}

func TestUpdateMemory_ClearTags(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	id, err := s.CreateMemory(ctx, makeTestMemory("m", "cooking"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	m := makeTestMemory("m")
	m.ID = id
	if err := s.UpdateMemory(ctx, m); err != nil {
		t.Fatalf("UpdateMemory: %v", err)
	}

	got, err := s.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("Tags: got %v, want none", got.Tags)
	}
}

func TestUpdateMemory_NotFound(t *testing.T) {
	s := newSeededStore(t)

	m := makeTestMemory("ghost", "cooking")
	m.ID = 99

	err := s.UpdateMemory(context.Background(), m)
	if !errors.Is(err, store.ErrMemoryNotFound) {
		t.Fatalf("expected ErrMemoryNotFound, got %v", err)
	}
	if n := countRows(t, s, "memories"); n != 0 {
		t.Errorf("memories: got %d rows, want 0", n)
	}
	if n := countRows(t, s, "memory_tags"); n != 0 {
		t.Errorf("memory_tags: got %d rows, want 0", n)
	}
}

func TestUpdateMemory_RollbackOnTagFailure(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	id, err := s.CreateMemory(ctx, makeTestMemory("original", "cooking"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	failTagInsert(t, s, "outdoors")

	m := makeTestMemory("changed", "traveling", "outdoors")
	m.ID = id
	if err := s.UpdateMemory(ctx, m); err == nil {
		t.Fatal("expected error from failing tag insert")
	}

	got, err := s.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if got.Name != "original" {
		t.Errorf("Name: got %q, want original", got.Name)
	}
	if !equalTags(got.Tags, []string{"cooking"}) {
		t.Errorf("Tags: got %v, want [cooking]", got.Tags)
	}
}

func TestDeleteMemory(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	keep, err := s.CreateMemory(ctx, makeTestMemory("keep", "cooking"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	gone, err := s.CreateMemory(ctx, makeTestMemory("gone", "cooking", "outdoors"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	if err := s.DeleteMemory(ctx, gone); err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}

	if _, err := s.GetMemory(ctx, gone); !errors.Is(err, store.ErrMemoryNotFound) {
		t.Errorf("expected deleted memory to be gone, got %v", err)
	}

	var links int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM memory_tags WHERE memory_id = ?`, gone).Scan(&links); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 0 {
		t.Errorf("expected no links for deleted memory, got %d", links)
	}

	if _, err := s.GetMemory(ctx, keep); err != nil {
		t.Errorf("other memory affected: %v", err)
	}
}

func TestDeleteMemory_Idempotent(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	if err := s.DeleteMemory(ctx, 123); err != nil {
		t.Fatalf("DeleteMemory unknown id: %v", err)
	}

	id, err := s.CreateMemory(ctx, makeTestMemory("m"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.DeleteMemory(ctx, id); err != nil {
			t.Fatalf("DeleteMemory #%d: %v", i+1, err)
		}
	}
}

func TestMemoryTags_CascadeOnRawDelete(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	id, err := s.CreateMemory(ctx, makeTestMemory("m", "cooking", "outdoors"))
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	// Bypass the store so only the foreign key cascade can clean up.
	if _, err := s.db.Exec(`DELETE FROM memories WHERE id = ?`, id); err != nil {
		t.Fatalf("raw delete: %v", err)
	}
	if n := countRows(t, s, "memory_tags"); n != 0 {
		t.Errorf("memory_tags: got %d rows, want 0", n)
	}
}

func TestConcurrentWrites(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateMemory(ctx, makeTestMemory("m", "cooking", "outdoors")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent create: %v", err)
	}
	if n := countRows(t, s, "memories"); n != writers {
		t.Errorf("memories: got %d, want %d", n, writers)
	}
	if n := countRows(t, s, "memory_tags"); n != 2*writers {
		t.Errorf("memory_tags: got %d, want %d", n, 2*writers)
	}
}
