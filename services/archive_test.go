package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/models"
)

func TestArchiveProjectWithWithdrawals(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	developer := createUser(t, db, "dev", models.RoleDeveloper)
	project := createProject(t, db, developer, 1000, 10, models.ProjectStatusApproved)

	// One completed investment holding shares, one still pending review
	alice := createUser(t, db, "alice", models.RoleInvestor)
	completed, err := RequestInvestment(db, alice, project, 4, nil)
	require.NoError(t, err)
	require.NoError(t, ReviewInvestment(db, completed, "approve", admin, nil, 7))
	_, err = ProcessPayment(db, completed, alice, "card")
	require.NoError(t, err)
	require.NoError(t, CompleteInvestment(db, completed, admin, nil))

	bob := createUser(t, db, "bob", models.RoleInvestor)
	requested, err := RequestInvestment(db, bob, project, 2, nil)
	require.NoError(t, err)

	// And one already resolved, which the archive must leave alone
	carl := createUser(t, db, "carl", models.RoleInvestor)
	rejected, err := RequestInvestment(db, carl, project, 1, nil)
	require.NoError(t, err)
	require.NoError(t, ReviewInvestment(db, rejected, "reject", admin, nil, 7))

	require.NoError(t, ArchiveProjectWithWithdrawals(db, project, admin, nil))

	require.Equal(t, models.ProjectStatusArchived, reloadProject(t, db, project.ID).Status)
	require.Equal(t, models.InvestmentStatusWithdrawn, reloadInvestment(t, db, completed.ID).Status)
	require.Equal(t, models.InvestmentStatusWithdrawn, reloadInvestment(t, db, requested.ID).Status)
	require.Equal(t, models.InvestmentStatusRejected, reloadInvestment(t, db, rejected.ID).Status)

	// Completed shares released back to the pool
	require.Equal(t, 0, reloadProject(t, db, project.ID).SharesSold)

	// Every withdrawn investor made whole
	aliceWallet, err := GetOrCreateWallet(db, alice.ID)
	require.NoError(t, err)
	require.True(t, aliceWallet.Balance.Equal(completed.TotalAmount))
	bobWallet, err := GetOrCreateWallet(db, bob.ID)
	require.NoError(t, err)
	require.True(t, bobWallet.Balance.Equal(requested.TotalAmount))
	carlWallet, err := GetOrCreateWallet(db, carl.ID)
	require.NoError(t, err)
	require.True(t, carlWallet.Balance.IsZero())

	// Archiving again is a no-op
	require.NoError(t, ArchiveProjectWithWithdrawals(db, project, admin, nil))
}
