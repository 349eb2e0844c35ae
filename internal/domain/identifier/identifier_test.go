package identifier

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	id := Build("jezioro", "1696150800")

	parts := strings.Split(id, ".")
	require.Len(t, parts, 3)
	assert.Equal(t, "$LNJO", parts[0])
	assert.Equal(t, "1696150800", parts[1])
	assert.NotEmpty(t, parts[2])
}

func TestBuild_Unique(t *testing.T) {
	a := Build("lake", "1696150800")
	b := Build("lake", "1696150800")
	assert.NotEqual(t, a, b)
}

func TestYearOf(t *testing.T) {
	t.Run("識別子から年を復元できる", func(t *testing.T) {
		ts := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local).Unix()
		id := Build("lake", strconv.FormatInt(ts, 10))

		year, err := YearOf(id)

		require.NoError(t, err)
		assert.Equal(t, "2024", year)
	})

	t.Run("任意のエポック秒で年が一致する", func(t *testing.T) {
		for _, ts := range []int64{0, 946684800, 1696150800, 4102444800} {
			id := Build("x", strconv.FormatInt(ts, 10))
			year, err := YearOf(id)
			require.NoError(t, err)
			assert.Equal(t, YearOfTimestamp(ts), year)
		}
	})

	t.Run("セグメント不足はエラー", func(t *testing.T) {
		_, err := YearOf("$LNXX.1696150800")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("タイムスタンプが数値でない場合はエラー", func(t *testing.T) {
		_, err := YearOf("$LNXX.abc.uuid")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("空文字はエラー", func(t *testing.T) {
		_, err := YearOf("")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}
