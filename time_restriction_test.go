package mapcycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRestriction(t *testing.T) {
	var at = func(hour, minute int) int {
		return minuteOfDay(time.Date(2026, time.January, 1, hour, minute, 0, 0, time.UTC))
	}

	t.Run("should parse HH:MM,HH:MM", func(t *testing.T) {
		// Act
		var restriction, err = ParseTimeRestriction("22:00,06:30")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 22*60, restriction.Start)
		assert.Equal(t, 6*60+30, restriction.End)
		assert.Equal(t, "22:00,06:30", restriction.String())
	})

	t.Run("should reject malformed values", func(t *testing.T) {
		for _, value := range []string{"", "22:00", "22:00,06:00,08:00", "24:00,06:00", "12:60,13:00", "noon,midnight"} {
			// Act
			var _, err = ParseTimeRestriction(value)

			// Assert
			assert.ErrorIs(t, err, ErrInvalidTimeRestriction, value)
		}
	})

	t.Run("should contain minutes of a plain interval", func(t *testing.T) {
		// Arrange
		var sut = TimeRestriction{Start: 9 * 60, End: 17 * 60}

		// Act & Assert
		assert.True(t, sut.Contains(at(9, 0)))
		assert.True(t, sut.Contains(at(12, 0)))
		assert.False(t, sut.Contains(at(17, 0)), "end is exclusive")
		assert.False(t, sut.Contains(at(8, 59)))
	})

	t.Run("should wrap past midnight when start is after end", func(t *testing.T) {
		// Arrange
		var sut, err = ParseTimeRestriction("22:00,06:00")
		require.NoError(t, err)

		// Act & Assert
		assert.True(t, sut.Contains(at(23, 30)))
		assert.True(t, sut.Contains(at(2, 0)))
		assert.True(t, sut.Contains(at(22, 0)))
		assert.False(t, sut.Contains(at(12, 0)))
		assert.False(t, sut.Contains(at(6, 0)))
	})

	t.Run("should cover the whole day when start equals end", func(t *testing.T) {
		// Arrange
		var sut = TimeRestriction{Start: 300, End: 300}

		// Act & Assert
		assert.True(t, sut.Contains(at(5, 0)))
		assert.True(t, sut.Contains(at(4, 59)))
		assert.True(t, sut.Contains(at(18, 0)))
	})
}
