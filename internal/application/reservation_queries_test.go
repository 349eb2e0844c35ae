package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
)

// storedReservation は暗号化済みで保存されている状態の予約を組み立てる
func storedReservation(id, name string, ts int64, mut func(*reservation.Reservation)) *reservation.Reservation {
	r := &reservation.Reservation{
		ID:        id,
		FullName:  "enc:" + name,
		Phone:     "enc:+48123456789",
		Email:     "enc:" + name + "@example.com",
		Timestamp: epoch(ts),
	}
	if mut != nil {
		mut(r)
	}
	return r
}

func queryFixture() (*ReservationService, *lake.Lake) {
	l := newTestLake("S1", "S2")
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local).Unix()

	l.AppendReservation("2024", storedReservation("r1", "Adam", base, nil))
	l.AppendReservation("2024", storedReservation("r2", "Beata", base+100, func(r *reservation.Reservation) {
		r.Confirmed = true
	}))
	l.AppendReservation("2024", storedReservation("r3", "Celina", base+200, func(r *reservation.Reservation) {
		r.IsDepositRequired = true
	}))
	l.AppendReservation("2024", storedReservation("r4", "Darek", base+300, func(r *reservation.Reservation) {
		r.IsDepositRequired = true
		r.IsDepositPaid = true
	}))

	repo := newFakeLakeRepo(l)
	return newTestService(repo), l
}

func ids(rs []*reservation.Reservation) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestGetNotConfirmedReservations(t *testing.T) {
	ctx := context.Background()
	svc, _ := queryFixture()

	t.Run("未確定かつ前払い不要の予約のみ古い順に返す", func(t *testing.T) {
		got, err := svc.GetNotConfirmedReservations(ctx, "jezioro", QueryOptions{Year: "2024"})

		require.NoError(t, err)
		assert.Equal(t, []string{"r1"}, ids(got))
		// 結果は復号済み
		assert.Equal(t, "Adam", got[0].FullName)
	})

	t.Run("存在しない年バケット", func(t *testing.T) {
		_, err := svc.GetNotConfirmedReservations(ctx, "jezioro", QueryOptions{Year: "1999"})
		assert.ErrorIs(t, err, lake.ErrYearNotFound)
	})

	t.Run("存在しない釣り場", func(t *testing.T) {
		_, err := svc.GetNotConfirmedReservations(ctx, "nieznane", QueryOptions{Year: "2024"})
		assert.ErrorIs(t, err, lake.ErrLakeNotFound)
	})
}

func TestGetAllReservationsByYear(t *testing.T) {
	ctx := context.Background()
	svc, _ := queryFixture()

	t.Run("新しい順に全件返す", func(t *testing.T) {
		got, err := svc.GetAllReservationsByYear(ctx, "jezioro", "2024", QueryOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"r4", "r3", "r2", "r1"}, ids(got))
	})

	t.Run("ページングは並べ替え後に適用される", func(t *testing.T) {
		got, err := svc.GetAllReservationsByYear(ctx, "jezioro", "2024", QueryOptions{Offset: 1, Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, []string{"r3", "r2"}, ids(got))
	})

	t.Run("末尾を超えるオフセットは空を返す", func(t *testing.T) {
		got, err := svc.GetAllReservationsByYear(ctx, "jezioro", "2024", QueryOptions{Offset: 10})

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("氏名フィルタは復号後に部分一致で適用される", func(t *testing.T) {
		got, err := svc.GetAllReservationsByYear(ctx, "jezioro", "2024", QueryOptions{Filter: "bea"})

		require.NoError(t, err)
		assert.Equal(t, []string{"r2"}, ids(got))
	})
}

func TestGetReservationsBySpotID(t *testing.T) {
	ctx := context.Background()
	svc, l := queryFixture()

	l.Reservations["2024"][0].Data = []reservation.SpotEntry{{SpotID: "S1"}}
	l.Reservations["2024"][1].Data = []reservation.SpotEntry{{SpotID: "S2"}}
	l.Reservations["2024"][2].Data = []reservation.SpotEntry{{SpotID: "S1"}, {SpotID: "S2"}}

	got, err := svc.GetReservationsBySpotID(ctx, "jezioro", "S1", QueryOptions{Year: "2024"})

	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1"}, ids(got))
}

func TestDepositQueries(t *testing.T) {
	ctx := context.Background()
	svc, _ := queryFixture()

	t.Run("前払い済み", func(t *testing.T) {
		got, err := svc.GetReservationsWithPaidDeposit(ctx, "jezioro", QueryOptions{Year: "2024"})

		require.NoError(t, err)
		assert.Equal(t, []string{"r4"}, ids(got))
	})

	t.Run("前払い待ち", func(t *testing.T) {
		got, err := svc.GetReservationsWithRequiredDeposit(ctx, "jezioro", QueryOptions{Year: "2024"})

		require.NoError(t, err)
		assert.Equal(t, []string{"r3"}, ids(got))
	})
}

func TestGetTodaysReservations(t *testing.T) {
	ctx := context.Background()

	day := time.Date(2024, 8, 10, 0, 0, 0, 0, time.Local)
	sameDayLater := day.Add(15 * time.Hour)
	nextDay := day.AddDate(0, 0, 1)

	build := func() *lake.Lake {
		l := newTestLake("S1", "S2")
		ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local).Unix()

		// S1 は当日開始、S2 は翌日開始
		l.AppendReservation("2024", storedReservation("r1", "Adam", ts, func(r *reservation.Reservation) {
			r.Data = []reservation.SpotEntry{
				{SpotID: "S1", Dates: []reservation.DateEntry{
					{Date: epoch(day.Unix())},
					{Date: epoch(nextDay.Unix())},
				}},
				{SpotID: "S2", Dates: []reservation.DateEntry{
					{Date: epoch(nextDay.Unix())},
				}},
			}
		}))
		return l
	}

	t.Run("当日開始の釣り座ごとの予約だけを返す", func(t *testing.T) {
		l := build()
		svc := newTestService(newFakeLakeRepo(l))

		got, err := svc.GetTodaysReservations(ctx, "jezioro", epoch(day.Unix()), QueryOptions{Year: "2024"})

		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Len(t, got[0].Data, 1)
		assert.Equal(t, "S1", got[0].Data[0].SpotID)
	})

	t.Run("同じ暦日なら時刻が違っても一致する", func(t *testing.T) {
		l := build()
		svc := newTestService(newFakeLakeRepo(l))

		got, err := svc.GetTodaysReservations(ctx, "jezioro", epoch(sameDayLater.Unix()), QueryOptions{Year: "2024"})

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("一致する予約が無い日", func(t *testing.T) {
		l := build()
		svc := newTestService(newFakeLakeRepo(l))

		got, err := svc.GetTodaysReservations(ctx, "jezioro", epoch(day.AddDate(0, 0, 7).Unix()), QueryOptions{Year: "2024"})

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGetTodaysReservationsCombined(t *testing.T) {
	ctx := context.Background()

	day := time.Date(2024, 8, 10, 0, 0, 0, 0, time.Local)
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local).Unix()

	entry := func(spotID string) []reservation.SpotEntry {
		return []reservation.SpotEntry{
			{SpotID: spotID, Dates: []reservation.DateEntry{{Date: epoch(day.Unix())}}},
		}
	}

	lakeA := &lake.Lake{Name: "jezioro-a"}
	lakeA.AppendReservation("2024", storedReservation("a1", "Adam", ts, func(r *reservation.Reservation) {
		r.Data = entry("A1")
	}))

	lakeB := &lake.Lake{Name: "jezioro-b"}
	lakeB.AppendReservation("2024", storedReservation("b1", "Beata", ts+100, func(r *reservation.Reservation) {
		r.Data = entry("B1")
	}))

	// 該当年のバケットを持たない釣り場はスキップされる
	lakeC := &lake.Lake{Name: "jezioro-c"}

	svc := newTestService(newFakeLakeRepo(lakeA, lakeB, lakeC))

	got, err := svc.GetTodaysReservationsCombined(ctx, epoch(day.Unix()), QueryOptions{Year: "2024"})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "b1"}, ids(got))
}

func TestPaginateDefaults(t *testing.T) {
	ctx := context.Background()

	l := newTestLake("S1")
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local).Unix()
	for i := 0; i < 25; i++ {
		l.AppendReservation("2024", storedReservation(
			epoch(int64(i)), "Gość", ts+int64(i), nil))
	}
	svc := newTestService(newFakeLakeRepo(l))

	got, err := svc.GetAllReservationsByYear(ctx, "jezioro", "2024", QueryOptions{})

	require.NoError(t, err)
	assert.Len(t, got, DefaultQueryLimit)
}
