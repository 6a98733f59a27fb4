package scene

import (
	"context"
	"testing"

	"github.com/philipparndt/goresin/pkg/geometry"
	"github.com/philipparndt/goresin/pkg/mesh"
	"github.com/philipparndt/goresin/pkg/slicer"
)

func cubeMesh() *mesh.Mesh {
	vertices := []mesh.Vertex{
		{Position: geometry.NewVector3(0, 0, 0)},
		{Position: geometry.NewVector3(1, 0, 0)},
		{Position: geometry.NewVector3(1, 1, 0)},
		{Position: geometry.NewVector3(0, 1, 0)},
		{Position: geometry.NewVector3(0, 0, 1)},
		{Position: geometry.NewVector3(1, 0, 1)},
		{Position: geometry.NewVector3(1, 1, 1)},
		{Position: geometry.NewVector3(0, 1, 1)},
	}
	triangles := []mesh.Triangle{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
		{1, 2, 6}, {1, 6, 5},
	}
	return mesh.New("cube", vertices, triangles)
}

func layerConfig() slicer.LayerConfig {
	return slicer.LayerConfig{LayerHeight: 0.25}
}

func TestBodySliceCachesResult(t *testing.T) {
	b := NewBody("cube", cubeMesh())
	s := slicer.New()

	first, err := b.Slice(context.Background(), s, layerConfig())
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	second, err := b.Slice(context.Background(), s, layerConfig())
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	if first != second {
		t.Error("second slice should return the cached result")
	}
	if b.CachedResult() != first {
		t.Error("CachedResult should return the cached result")
	}
}

func TestBodyTransformInvalidatesCache(t *testing.T) {
	b := NewBody("cube", cubeMesh())
	s := slicer.New()

	first, err := b.Slice(context.Background(), s, layerConfig())
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	b.SetPosition(geometry.NewVector3(5, 0, 0))
	if b.CachedResult() != nil {
		t.Error("moving the body should discard the cached result")
	}

	second, err := b.Slice(context.Background(), s, layerConfig())
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if first == second {
		t.Error("slice after a move should recompute")
	}
}

func TestBodySetMeshInvalidatesCache(t *testing.T) {
	b := NewBody("cube", cubeMesh())
	s := slicer.New()

	if _, err := b.Slice(context.Background(), s, layerConfig()); err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	b.SetMesh(cubeMesh())
	if b.CachedResult() != nil {
		t.Error("replacing the mesh should discard the cached result")
	}
}

func TestBodySnapshotAppliesTransform(t *testing.T) {
	b := NewBody("cube", cubeMesh())
	b.SetPosition(geometry.NewVector3(10, 0, 0))
	b.SetScale(geometry.NewVector3(2, 2, 2))

	snapshot := b.Snapshot()
	bounds := snapshot.Bounds()
	if bounds.Min.X != 10 || bounds.Max.X != 12 {
		t.Errorf("snapshot bounds wrong: %v to %v", bounds.Min, bounds.Max)
	}

	// The original mesh stays untouched.
	if b.Mesh().Bounds().Max.X != 1 {
		t.Error("snapshot mutated the body mesh")
	}
}

func TestStoreAddGetRemove(t *testing.T) {
	store := NewStore()
	b := store.Add("cube", cubeMesh())

	got, ok := store.Get(b.ID())
	if !ok || got != b {
		t.Fatal("Get should return the added body")
	}
	if store.Len() != 1 {
		t.Errorf("Len: expected 1, got %d", store.Len())
	}

	store.Remove(b.ID())
	if _, ok := store.Get(b.ID()); ok {
		t.Error("body should be gone after Remove")
	}
	if store.Len() != 0 {
		t.Errorf("Len after Remove: expected 0, got %d", store.Len())
	}
}

func TestStoreBodiesInsertionOrder(t *testing.T) {
	store := NewStore()
	first := store.Add("a", cubeMesh())
	second := store.Add("b", cubeMesh())

	bodies := store.Bodies()
	if len(bodies) != 2 || bodies[0] != first || bodies[1] != second {
		t.Error("Bodies should preserve insertion order")
	}
}

func TestStoreSliceAll(t *testing.T) {
	store := NewStore()
	a := store.Add("a", cubeMesh())
	b := store.Add("b", cubeMesh())
	disabled := store.Add("c", cubeMesh())
	disabled.SetEnabled(false)

	results, err := store.SliceAll(context.Background(), slicer.New(), layerConfig())
	if err != nil {
		t.Fatalf("SliceAll failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[a.ID()] == nil || results[b.ID()] == nil {
		t.Error("enabled bodies missing from results")
	}
	if _, ok := results[disabled.ID()]; ok {
		t.Error("disabled body should not be sliced")
	}
}

func TestStoreInvalidateByName(t *testing.T) {
	store := NewStore()
	b := store.Add("model.stl", cubeMesh())

	if _, err := b.Slice(context.Background(), slicer.New(), layerConfig()); err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	matched := store.InvalidateByName("model.stl")
	if len(matched) != 1 {
		t.Fatalf("expected 1 matched body, got %d", len(matched))
	}
	if b.CachedResult() != nil {
		t.Error("cache should be discarded after invalidation")
	}
}

func TestHistoryUndoRedo(t *testing.T) {
	b := NewBody("cube", cubeMesh())
	var h History

	h.Push(&SetPositionAction{Body: b, To: geometry.NewVector3(1, 0, 0)})
	h.Push(&SetPositionAction{Body: b, To: geometry.NewVector3(2, 0, 0)})

	if b.Position().X != 2 {
		t.Fatalf("position after two moves: expected 2, got %v", b.Position().X)
	}

	if !h.Undo() {
		t.Fatal("Undo should succeed")
	}
	if b.Position().X != 1 {
		t.Errorf("position after undo: expected 1, got %v", b.Position().X)
	}

	if !h.Redo() {
		t.Fatal("Redo should succeed")
	}
	if b.Position().X != 2 {
		t.Errorf("position after redo: expected 2, got %v", b.Position().X)
	}
}

func TestHistoryPushClearsRedo(t *testing.T) {
	b := NewBody("cube", cubeMesh())
	var h History

	h.Push(&SetScaleAction{Body: b, To: geometry.NewVector3(2, 2, 2)})
	h.Undo()
	h.Push(&SetRotationAction{Body: b, To: geometry.NewVector3(0, 0, 90)})

	if h.CanRedo() {
		t.Error("a new action should clear the redo stack")
	}
	if !h.CanUndo() {
		t.Error("CanUndo should be true after a push")
	}
}

func TestHistoryEmpty(t *testing.T) {
	var h History
	if h.Undo() {
		t.Error("Undo on empty history should report false")
	}
	if h.Redo() {
		t.Error("Redo on empty history should report false")
	}
}
