package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		stageType StageType
		want      Status
	}{
		{StageSourced, StatusApplied},
		{StageApplied, StatusApplied},
		{StageScreening, StatusScreening},
		{StageInterview, StatusInterview},
		{StageOffer, StatusOffer},
		{StageHired, StatusHired},
		{StageRejected, StatusRejected},
		{StageType("bogus"), StatusApplied},
	}
	for _, tt := range tests {
		t.Run(string(tt.stageType), func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.stageType))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusHired.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusWithdrawn.Terminal())

	assert.False(t, StatusApplied.Terminal())
	assert.False(t, StatusScreening.Terminal())
	assert.False(t, StatusInterview.Terminal())
	assert.False(t, StatusOffer.Terminal())
}

func TestRequisitionClosed(t *testing.T) {
	assert.False(t, Requisition{Status: "open", Headcount: 2, Filled: 1}.Closed())
	assert.True(t, Requisition{Status: "open", Headcount: 2, Filled: 2}.Closed())
	assert.True(t, Requisition{Status: "closed", Headcount: 2, Filled: 0}.Closed())
	// Zero headcount means uncapped.
	assert.False(t, Requisition{Status: "open", Headcount: 0, Filled: 5}.Closed())
}

func TestCodeOf(t *testing.T) {
	err := NewError(CodeTerminalStatus, "done")
	assert.Equal(t, CodeTerminalStatus, CodeOf(err))
	assert.True(t, IsCode(err, CodeTerminalStatus))
	assert.Equal(t, CodeUnknown, CodeOf(assert.AnError))
}
