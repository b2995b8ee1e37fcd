package storage

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite runs storage operations against an in-memory SQLite database.
type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
	alice core.User
	bob   core.User
	food  int64
	pay   int64
}

func (suite *StoreTestSuite) SetupTest() {
	store, err := OpenSQLite(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.store = store
	suite.ctx = context.Background()

	suite.alice, err = store.CreateUser(suite.ctx, "alice", "hash-a")
	require.NoError(suite.T(), err)
	suite.bob, err = store.CreateUser(suite.ctx, "bob", "hash-b")
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), store.InsertCategories(suite.ctx, []string{"Salary", "Food"}))
	cats, err := store.ListCategories(suite.ctx)
	require.NoError(suite.T(), err)
	for _, c := range cats {
		switch c.Name {
		case "Food":
			suite.food = c.ID
		case "Salary":
			suite.pay = c.ID
		}
	}
}

func (suite *StoreTestSuite) TearDownTest() {
	if suite.store != nil {
		suite.store.Close()
	}
}

func (suite *StoreTestSuite) input(kind core.Kind, amount string, date core.Date, cat int64) core.TransactionInput {
	return core.TransactionInput{
		Kind:       kind,
		Amount:     decimal.RequireFromString(amount),
		Note:       "note",
		Date:       date,
		CategoryID: cat,
	}
}

func (suite *StoreTestSuite) TestDuplicateUsername() {
	_, err := suite.store.CreateUser(suite.ctx, "alice", "other")
	assert.ErrorIs(suite.T(), err, core.ErrUsernameTaken)

	exists, err := suite.store.UsernameExists(suite.ctx, "Alice")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), exists, "username match must be case-sensitive")
}

func (suite *StoreTestSuite) TestGetUser() {
	u, err := suite.store.GetUserByUsername(suite.ctx, "alice")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.alice.ID, u.ID)
	assert.Equal(suite.T(), "hash-a", u.PasswordHash)

	_, err = suite.store.GetUserByUsername(suite.ctx, "carol")
	assert.True(suite.T(), core.IsNotFound(err))

	require.NoError(suite.T(), suite.store.UpdatePasswordHash(suite.ctx, u.ID, "hash-new"))
	u, err = suite.store.GetUserByID(suite.ctx, u.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "hash-new", u.PasswordHash)

	users, err := suite.store.ListUsers(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), users, 2)
}

func (suite *StoreTestSuite) TestCategories() {
	n, err := suite.store.CountCategories(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, n)

	cats, err := suite.store.ListCategories(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), cats, 2)
	assert.Equal(suite.T(), "Food", cats[0].Name, "expected name order")

	ok, err := suite.store.CategoryExists(suite.ctx, suite.food)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	ok, err = suite.store.CategoryExists(suite.ctx, 9999)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *StoreTestSuite) TestInsertAndGet() {
	in := suite.input(core.Expense, "12.34", core.NewDate(2024, 3, 15), suite.food)
	id, err := suite.store.InsertTransaction(suite.ctx, suite.alice.ID, in)
	require.NoError(suite.T(), err)

	got, err := suite.store.GetTransaction(suite.ctx, suite.alice.ID, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), core.Expense, got.Kind)
	assert.True(suite.T(), in.Amount.Equal(got.Amount), "amount %s", got.Amount)
	assert.Equal(suite.T(), "2024-03-15", got.Date.String())
	assert.Equal(suite.T(), "note", got.Note)
	assert.Equal(suite.T(), "Food", got.CategoryName)
	assert.Equal(suite.T(), suite.alice.ID, got.UserID)

	_, err = suite.store.GetTransaction(suite.ctx, suite.bob.ID, id)
	assert.True(suite.T(), core.IsNotFound(err), "foreign row must look missing")
}

func (suite *StoreTestSuite) TestUpdateAndDeleteAreOwnerScoped() {
	in := suite.input(core.Expense, "10", core.NewDate(2024, 3, 1), suite.food)
	id, err := suite.store.InsertTransaction(suite.ctx, suite.alice.ID, in)
	require.NoError(suite.T(), err)

	changed := suite.input(core.Income, "99", core.NewDate(2024, 4, 1), suite.pay)
	err = suite.store.UpdateTransaction(suite.ctx, suite.bob.ID, id, changed)
	assert.True(suite.T(), core.IsNotFound(err))
	err = suite.store.DeleteTransaction(suite.ctx, suite.bob.ID, id)
	assert.True(suite.T(), core.IsNotFound(err))

	got, err := suite.store.GetTransaction(suite.ctx, suite.alice.ID, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), core.Expense, got.Kind, "row must be unchanged")

	require.NoError(suite.T(), suite.store.UpdateTransaction(suite.ctx, suite.alice.ID, id, changed))
	got, err = suite.store.GetTransaction(suite.ctx, suite.alice.ID, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), core.Income, got.Kind)
	assert.Equal(suite.T(), "2024-04-01", got.Date.String())
	assert.Equal(suite.T(), "Salary", got.CategoryName)

	require.NoError(suite.T(), suite.store.DeleteTransaction(suite.ctx, suite.alice.ID, id))
	_, err = suite.store.GetTransaction(suite.ctx, suite.alice.ID, id)
	assert.True(suite.T(), core.IsNotFound(err))
}

func (suite *StoreTestSuite) TestListOrderingAndFilters() {
	rows := []struct {
		owner int64
		kind  core.Kind
		date  core.Date
	}{
		{suite.alice.ID, core.Expense, core.NewDate(2024, 2, 29)},
		{suite.alice.ID, core.Expense, core.NewDate(2024, 3, 1)},
		{suite.alice.ID, core.Income, core.NewDate(2024, 3, 31)},
		{suite.alice.ID, core.Expense, core.NewDate(2024, 3, 31)},
		{suite.alice.ID, core.Expense, core.NewDate(2024, 4, 1)},
		{suite.bob.ID, core.Expense, core.NewDate(2024, 3, 10)},
	}
	ids := make([]int64, len(rows))
	for i, r := range rows {
		id, err := suite.store.InsertTransaction(suite.ctx, r.owner, suite.input(r.kind, "1", r.date, suite.food))
		require.NoError(suite.T(), err)
		ids[i] = id
	}

	march := &core.MonthRange{Year: 2024, Month: 3}
	got, err := suite.store.ListTransactions(suite.ctx, suite.alice.ID, TransactionFilter{Range: march})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), got, 3)
	assert.Equal(suite.T(), ids[3], got[0].ID, "same date orders by id desc")
	assert.Equal(suite.T(), ids[2], got[1].ID)
	assert.Equal(suite.T(), ids[1], got[2].ID)

	got, err = suite.store.ListTransactions(suite.ctx, suite.alice.ID, TransactionFilter{Limit: 2})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), got, 2)
	assert.Equal(suite.T(), ids[4], got[0].ID)

	got, err = suite.store.ListTransactions(suite.ctx, suite.alice.ID, TransactionFilter{Kind: core.Income})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), got, 1)
	assert.Equal(suite.T(), ids[2], got[0].ID)

	got, err = suite.store.ListTransactions(suite.ctx, suite.bob.ID, TransactionFilter{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 1)
}

func (suite *StoreTestSuite) TestSessions() {
	expires := time.Now().Add(time.Hour)
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, "tok", suite.alice.ID, expires))

	info, err := suite.store.GetSession(suite.ctx, "tok")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.alice.ID, info.User.ID)
	assert.WithinDuration(suite.T(), expires, info.Session.ExpiresAt, time.Second)

	later := time.Now().Add(2 * time.Hour)
	require.NoError(suite.T(), suite.store.RenewSession(suite.ctx, "tok", later))
	info, err = suite.store.GetSession(suite.ctx, "tok")
	require.NoError(suite.T(), err)
	assert.WithinDuration(suite.T(), later, info.Session.ExpiresAt, time.Second)

	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, "old", suite.bob.ID, time.Now().Add(-time.Hour)))
	n, err := suite.store.CleanExpiredSessions(suite.ctx, time.Now())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), n)

	require.NoError(suite.T(), suite.store.DeleteSession(suite.ctx, "tok"))
	_, err = suite.store.GetSession(suite.ctx, "tok")
	assert.True(suite.T(), core.IsNotFound(err))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestRebind(t *testing.T) {
	s := &Store{dialect: DialectPostgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", s.rebind("SELECT 1 WHERE a = ? AND b = ?"))
	s = &Store{dialect: DialectSQLite}
	assert.Equal(t, "a = ?", s.rebind("a = ?"))
}
