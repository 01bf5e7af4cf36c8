package divestore_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dive-logbook/internal/divestore"
	"github.com/pkordes/dive-logbook/internal/domain"
)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func at(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

func TestNew_SortsAndIndexes(t *testing.T) {
	tbl := divestore.New([]domain.Dive{
		{Number: 3, When: at(30)},
		{Number: 1, When: at(0)},
		{Number: 2, When: at(10)},
	}, nil)

	require.Equal(t, 3, tbl.DiveCount())
	for i := range 3 {
		d, ok := tbl.GetDive(i)
		require.True(t, ok)
		assert.Equal(t, i, d.Index)
		assert.Equal(t, i+1, d.Number)
	}
	_, ok := tbl.GetDive(3)
	assert.False(t, ok)
	_, ok = tbl.GetDive(-1)
	assert.False(t, ok)
}

func TestRecordDive_KeepsTimeOrder(t *testing.T) {
	tbl := divestore.New([]domain.Dive{{When: at(0)}, {When: at(20)}}, nil)

	tbl.RecordDive(&domain.Dive{Number: 7, When: at(10)})

	d, ok := tbl.GetDive(1)
	require.True(t, ok)
	assert.Equal(t, 7, d.Number)
	assert.Equal(t, 1, d.Index)
	last, _ := tbl.GetDive(2)
	assert.Equal(t, 2, last.Index)
}

func TestReplace_MovesAndKeepsSelection(t *testing.T) {
	tbl := divestore.New([]domain.Dive{{Number: 1, When: at(0)}, {Number: 2, When: at(10)}}, nil)
	first, _ := tbl.GetDive(0)
	first.Selected = true

	ok := tbl.Replace(0, &domain.Dive{Number: 1, When: at(20)})

	require.True(t, ok)
	moved, _ := tbl.GetDive(1)
	assert.Equal(t, 1, moved.Number)
	assert.True(t, moved.Selected)
	assert.False(t, tbl.Replace(5, &domain.Dive{}))
}

func TestRemove(t *testing.T) {
	tbl := divestore.New([]domain.Dive{{Number: 1, When: at(0)}, {Number: 2, When: at(10)}}, nil)

	d, ok := tbl.Remove(0)

	require.True(t, ok)
	assert.Equal(t, 1, d.Number)
	assert.Equal(t, 1, tbl.DiveCount())
	rest, _ := tbl.GetDive(0)
	assert.Equal(t, 0, rest.Index)
}

func TestByIDAndHints(t *testing.T) {
	id := uuid.New()
	hints := []domain.TripHint{{ID: uuid.New(), StartedAt: at(0)}}
	tbl := divestore.New([]domain.Dive{{ID: id, When: at(0)}}, hints)

	d, ok := tbl.ByID(id)
	require.True(t, ok)
	assert.Equal(t, id, d.ID)
	_, ok = tbl.ByID(uuid.New())
	assert.False(t, ok)

	got := tbl.TripHints()
	got[0].Location = "changed"
	assert.Empty(t, tbl.TripHints()[0].Location, "hints are returned as a copy")
}
