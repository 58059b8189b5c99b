package eventstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leaseworks/rentledger/eventstore"
)

func Test_BuildReadSelection_Defaults(t *testing.T) {
	// act
	selection := eventstore.BuildReadSelection()

	// assert - unbounded, unlimited, descending
	assert.Zero(t, selection.AfterPosition)
	assert.Zero(t, selection.UpToPosition)
	assert.Zero(t, selection.Limit)
	assert.False(t, selection.Ascending)
}

func Test_BuildReadSelection_AppliesAllOptions(t *testing.T) {
	// act
	selection := eventstore.BuildReadSelection(
		eventstore.WithAfterPosition(10),
		eventstore.WithUpToPosition(20),
		eventstore.WithLimit(5),
		eventstore.Ascending(),
	)

	// assert
	assert.Equal(t, eventstore.LogPositionUint64(10), selection.AfterPosition)
	assert.Equal(t, eventstore.LogPositionUint64(20), selection.UpToPosition)
	assert.Equal(t, 5, selection.Limit)
	assert.True(t, selection.Ascending)
}

func Test_ReadSelection_Matches_AfterPositionIsExclusive(t *testing.T) {
	// arrange
	selection := eventstore.BuildReadSelection(eventstore.WithAfterPosition(5))

	// act + assert
	assert.False(t, selection.Matches(4))
	assert.False(t, selection.Matches(5))
	assert.True(t, selection.Matches(6))
}

func Test_ReadSelection_Matches_UpToPositionIsInclusive(t *testing.T) {
	// arrange
	selection := eventstore.BuildReadSelection(eventstore.WithUpToPosition(5))

	// act + assert
	assert.True(t, selection.Matches(4))
	assert.True(t, selection.Matches(5))
	assert.False(t, selection.Matches(6))
}

func Test_ReadSelection_Matches_CombinedBounds(t *testing.T) {
	// arrange
	selection := eventstore.BuildReadSelection(
		eventstore.WithAfterPosition(2),
		eventstore.WithUpToPosition(4),
	)

	// act + assert
	assert.False(t, selection.Matches(2))
	assert.True(t, selection.Matches(3))
	assert.True(t, selection.Matches(4))
	assert.False(t, selection.Matches(5))
}
