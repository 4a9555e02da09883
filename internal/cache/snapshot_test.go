package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/checkin-api/internal/dto"
)

func TestMemorySnapshotStore_LoadMiss(t *testing.T) {
	store := NewMemorySnapshotStore()

	_, err := store.Load(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotCached)
}

func TestMemorySnapshotStore_SaveReplacesWholeAggregate(t *testing.T) {
	store := NewMemorySnapshotStore()
	ctx := context.Background()

	first := dto.ProjectDetailDTO{
		ProjectDTO: dto.ProjectDTO{ID: 1, Name: "Before"},
		Members:    []dto.ProjectMemberDTO{{ID: 1, Name: "alice"}},
	}
	require.NoError(t, store.Save(ctx, first))

	second := dto.ProjectDetailDTO{
		ProjectDTO: dto.ProjectDTO{ID: 1, Name: "After"},
	}
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "After", loaded.Name)
	require.Empty(t, loaded.Members)
}

func TestMemorySnapshotStore_Delete(t *testing.T) {
	store := NewMemorySnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, dto.ProjectDetailDTO{ProjectDTO: dto.ProjectDTO{ID: 3}}))
	require.NoError(t, store.Delete(ctx, 3))

	_, err := store.Load(ctx, 3)
	require.ErrorIs(t, err, ErrNotCached)
}

func TestMemorySnapshotStore_LoadReturnsCopy(t *testing.T) {
	store := NewMemorySnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, dto.ProjectDetailDTO{ProjectDTO: dto.ProjectDTO{ID: 5, Name: "Stable"}}))

	loaded, err := store.Load(ctx, 5)
	require.NoError(t, err)
	loaded.Name = "Mutated"

	again, err := store.Load(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, "Stable", again.Name)
}
