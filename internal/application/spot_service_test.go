package application

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
)

func newSpotTestService(repo *fakeLakeRepo) *SpotService {
	return NewSpotService(repo, nil)
}

func TestAddSpot(t *testing.T) {
	ctx := context.Background()

	t.Run("識別子を採番して釣り座を追加する", func(t *testing.T) {
		l := newTestLake()
		repo := newFakeLakeRepo(l)
		svc := newSpotTestService(repo)

		id, err := svc.AddSpot(ctx, "jezioro", &lake.Spot{Number: "7"})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "$LNJO."))
		require.Len(t, l.Spots, 1)
		assert.Equal(t, id, l.Spots[0].SpotID)
		assert.Equal(t, 1, repo.saveCount)
		assert.Equal(t, 1, repo.snapCount)
	})

	t.Run("存在しない釣り場", func(t *testing.T) {
		svc := newSpotTestService(newFakeLakeRepo())

		_, err := svc.AddSpot(ctx, "nieznane", &lake.Spot{Number: "1"})
		assert.ErrorIs(t, err, lake.ErrLakeNotFound)
	})
}

func TestUpdateSpot(t *testing.T) {
	ctx := context.Background()

	setup := func() (*SpotService, *lake.Lake) {
		l := newTestLake("S1")
		spot := l.FindSpot("S1")
		spot.Info = json.RawMessage(`{"depth":3}`)
		spot.Block("2024", "1700000000")
		return newSpotTestService(newFakeLakeRepo(l)), l
	}

	t.Run("指定された項目のみ更新し予約不可日程は保持する", func(t *testing.T) {
		svc, l := setup()

		updated, err := svc.UpdateSpot(ctx, "jezioro", &lake.Spot{
			SpotID: "S1",
			Number: "9",
		})

		require.NoError(t, err)
		assert.Equal(t, "9", updated.Number)
		// 未指定のInfoは変更されない
		assert.Equal(t, json.RawMessage(`{"depth":3}`), updated.Info)
		assert.True(t, l.FindSpot("S1").IsBlocked("2024", "1700000000"))
	})

	t.Run("Infoの置き換え", func(t *testing.T) {
		svc, _ := setup()

		updated, err := svc.UpdateSpot(ctx, "jezioro", &lake.Spot{
			SpotID: "S1",
			Info:   json.RawMessage(`{"depth":5}`),
		})

		require.NoError(t, err)
		assert.Equal(t, json.RawMessage(`{"depth":5}`), updated.Info)
	})

	t.Run("存在しない釣り座", func(t *testing.T) {
		svc, _ := setup()

		_, err := svc.UpdateSpot(ctx, "jezioro", &lake.Spot{SpotID: "S9"})
		assert.ErrorIs(t, err, lake.ErrSpotNotFound)
	})
}

func TestUpdateAllSpots(t *testing.T) {
	ctx := context.Background()
	l := newTestLake("S1", "S2")
	svc := newSpotTestService(newFakeLakeRepo(l))

	info := json.RawMessage(`{"season":"2025"}`)
	updated, err := svc.UpdateAllSpots(ctx, "jezioro", info, nil)

	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, spot := range updated {
		assert.Equal(t, info, spot.Info)
		// nilのOptionsは既存値を保持
		assert.Nil(t, spot.Options)
	}
}

func TestDeleteSpot(t *testing.T) {
	ctx := context.Background()

	t.Run("釣り座を削除する", func(t *testing.T) {
		l := newTestLake("S1", "S2")
		repo := newFakeLakeRepo(l)
		svc := newSpotTestService(repo)

		err := svc.DeleteSpot(ctx, "jezioro", "S1")

		require.NoError(t, err)
		require.Len(t, l.Spots, 1)
		assert.Equal(t, "S2", l.Spots[0].SpotID)
	})

	t.Run("存在しない釣り座", func(t *testing.T) {
		l := newTestLake("S1")
		repo := newFakeLakeRepo(l)
		svc := newSpotTestService(repo)

		err := svc.DeleteSpot(ctx, "jezioro", "S9")

		assert.ErrorIs(t, err, lake.ErrSpotNotFound)
		assert.Equal(t, 0, repo.saveCount)
	})
}

func TestGetSpotByID(t *testing.T) {
	ctx := context.Background()
	l := newTestLake("S1")
	svc := newSpotTestService(newFakeLakeRepo(l))

	spot, err := svc.GetSpotByID(ctx, "jezioro", "S1")
	require.NoError(t, err)
	assert.Equal(t, "S1", spot.SpotID)

	_, err = svc.GetSpotByID(ctx, "jezioro", "S9")
	assert.ErrorIs(t, err, lake.ErrSpotNotFound)
}
