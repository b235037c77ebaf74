package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateEntry(t *testing.T) {
	cases := []struct {
		name   string
		kind   string
		amount int64
		ok     bool
	}{
		{"earn positive", KindEarn, 100, true},
		{"earn zero", KindEarn, 0, false},
		{"earn negative", KindEarn, -5, false},
		{"spend negative", KindSpend, -150, true},
		{"spend zero", KindSpend, 0, false},
		{"spend positive", KindSpend, 10, false},
		{"adjust credit", KindAdjust, 30, true},
		{"adjust debit", KindAdjust, -30, true},
		{"adjust zero", KindAdjust, 0, false},
		{"unknown kind", "bonus", 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problem := ValidateEntry(tc.kind, tc.amount)
			if tc.ok {
				require.Empty(t, problem)
			} else {
				require.NotEmpty(t, problem)
			}
		})
	}
}

func TestEntryTransitions(t *testing.T) {
	statuses := []string{EntryPending, EntryApproved, EntryRejected}
	legal := map[[2]string]bool{
		{EntryPending, EntryApproved}: true,
		{EntryPending, EntryRejected}: true,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			require.Equal(t, legal[[2]string{from, to}], EntryCanTransition(from, to),
				"%s -> %s", from, to)
		}
	}
}

func TestRedemptionTransitions(t *testing.T) {
	statuses := []string{RedemptionPending, RedemptionApproved, RedemptionRejected, RedemptionIssued}
	legal := map[[2]string]bool{
		{RedemptionPending, RedemptionApproved}: true,
		{RedemptionPending, RedemptionRejected}: true,
		{RedemptionApproved, RedemptionIssued}:  true,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			require.Equal(t, legal[[2]string{from, to}], RedemptionCanTransition(from, to),
				"%s -> %s", from, to)
		}
	}
}

func TestIsApprover(t *testing.T) {
	require.True(t, IsApprover(RoleAdmin))
	require.True(t, IsApprover(RoleTeamLead))
	require.False(t, IsApprover(RoleMember))
	require.False(t, IsApprover(""))
}
