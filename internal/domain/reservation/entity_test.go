//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/pkg/ptr"
	"table-reservation/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstruct(t *testing.T) {
	t.Run("rejects out of range stored values", func(t *testing.T) {
		_, err := builder.NewReservationBuilder().WithTable(7).BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrTableOutOfRange)
	})

	t.Run("normalises times to UTC", func(t *testing.T) {
		start := time.Date(2030, 6, 1, 19, 0, 0, 0, time.FixedZone("", 3600))
		r, err := builder.NewReservationBuilder().WithStart(start).BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, time.UTC, r.StartTime().Location())
		assert.True(t, r.StartTime().Equal(start))
	})
}

func TestReservation_Apply(t *testing.T) {
	original, err := builder.NewReservationBuilder().BuildDomain()
	require.NoError(t, err)
	later := original.CreatedAt().Add(time.Hour)

	t.Run("only supplied fields change", func(t *testing.T) {
		updated := original.Apply(reservation.Patch{PartySize: ptr.Of(2)}, later)

		assert.Equal(t, 2, updated.PartySize().Int())
		assert.Equal(t, original.Table(), updated.Table())
		assert.Equal(t, original.CustomerName(), updated.CustomerName())
		assert.Equal(t, later, updated.UpdatedAt())
		assert.Equal(t, original.CreatedAt(), updated.CreatedAt())
		assert.Equal(t, 4, original.PartySize().Int(), "original is untouched")
	})

	t.Run("empty patch keeps updated_at", func(t *testing.T) {
		updated := original.Apply(reservation.Patch{}, later)
		assert.Equal(t, original.UpdatedAt(), updated.UpdatedAt())
	})

	t.Run("moving the slot recomputes the end", func(t *testing.T) {
		updated := original.Apply(reservation.Patch{DurationHours: ptr.Of(3)}, later)
		assert.True(t, updated.EndTime().Equal(original.StartTime().Add(3*time.Hour)))
	})
}

func TestPatch_MovesSlot(t *testing.T) {
	r, err := builder.NewReservationBuilder().WithID(uuid.New()).BuildDomain()
	require.NoError(t, err)
	sameStart := r.StartTime().In(time.FixedZone("", 7200))

	tests := []struct {
		name  string
		patch reservation.Patch
		want  bool
	}{
		{name: "empty", patch: reservation.Patch{}, want: false},
		{name: "name only", patch: reservation.Patch{CustomerName: ptr.Of("Bob")}, want: false},
		{name: "same table", patch: reservation.Patch{Table: ptr.Of(r.Table().Int())}, want: false},
		{name: "same instant in another zone", patch: reservation.Patch{StartTime: &sameStart}, want: false},
		{name: "new table", patch: reservation.Patch{Table: ptr.Of(3)}, want: true},
		{name: "new duration", patch: reservation.Patch{DurationHours: ptr.Of(1)}, want: true},
		{name: "new start", patch: reservation.Patch{StartTime: ptr.Of(r.StartTime().Add(time.Hour))}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.patch.MovesSlot(r))
		})
	}

	assert.Equal(t, 3, reservation.Patch{Table: ptr.Of(3)}.TargetTable(r).Int())
	assert.Equal(t, r.Table(), reservation.Patch{}.TargetTable(r))
}
