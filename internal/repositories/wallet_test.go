package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sbilibin2017/pf-wallet/internal/models"
)

func setupWalletPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	assert.NoError(t, err)

	schema := `
	CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

	CREATE TABLE IF NOT EXISTS users (
		user_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS wallets (
		wallet_id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		currency VARCHAR(3) NOT NULL,
		type VARCHAR(20) NOT NULL DEFAULT 'account',
		balance NUMERIC(20, 8) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS categories (
		category_id UUID PRIMARY KEY,
		user_id UUID REFERENCES users(user_id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		type VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		wallet_id UUID NOT NULL REFERENCES wallets(wallet_id),
		category_id UUID NOT NULL REFERENCES categories(category_id),
		amount NUMERIC(20, 8) NOT NULL,
		type VARCHAR(20) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`
	_, err = db.Exec(schema)
	assert.NoError(t, err)

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func seedWalletUser(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, err := db.Exec(
		"INSERT INTO users (user_id, username, email, password_hash) VALUES ($1, $2, $3, 'hash')",
		userID, "owner-"+userID.String()[:8], userID.String()[:8]+"@example.com")
	assert.NoError(t, err)
	return userID
}

func seedCategory(t *testing.T, db *sqlx.DB, userID uuid.UUID, name, categoryType string) uuid.UUID {
	t.Helper()
	categoryID := uuid.New()
	_, err := db.Exec(
		"INSERT INTO categories (category_id, user_id, name, type) VALUES ($1, $2, $3, $4)",
		categoryID, userID, name, categoryType)
	assert.NoError(t, err)
	return categoryID
}

func TestWalletRepository_SaveAndGet(t *testing.T) {
	db, teardown := setupWalletPostgresContainer(t)
	defer teardown()

	writeRepo := NewWalletWriteRepository(db, nil)
	readRepo := NewWalletReadRepository(db, nil)
	ctx := context.Background()

	userID := seedWalletUser(t, db)
	walletID := uuid.New()

	err := writeRepo.Save(ctx, models.WalletDB{
		WalletID: walletID,
		UserID:   userID,
		Name:     "Everyday spending",
		Currency: "USD",
		Type:     "account",
		Balance:  decimal.Zero,
	})
	assert.NoError(t, err)

	wallet, err := readRepo.GetByID(ctx, userID, walletID)
	assert.NoError(t, err)
	assert.NotNil(t, wallet)
	assert.Equal(t, "Everyday spending", wallet.Name)
	assert.Equal(t, "USD", wallet.Currency)
	assert.True(t, wallet.Balance.IsZero())

	// Another user cannot see the wallet.
	otherID := seedWalletUser(t, db)
	wallet, err = readRepo.GetByID(ctx, otherID, walletID)
	assert.Error(t, err)
	assert.Nil(t, wallet)
}

func TestWalletRepository_ApplyDelta(t *testing.T) {
	db, teardown := setupWalletPostgresContainer(t)
	defer teardown()

	writeRepo := NewWalletWriteRepository(db, nil)
	ctx := context.Background()

	userID := seedWalletUser(t, db)
	walletID := uuid.New()

	err := writeRepo.Save(ctx, models.WalletDB{
		WalletID: walletID,
		UserID:   userID,
		Name:     "Savings",
		Currency: "EUR",
		Type:     "savings",
		Balance:  decimal.Zero,
	})
	assert.NoError(t, err)

	balance, err := writeRepo.ApplyDelta(ctx, walletID, decimal.RequireFromString("150.25"))
	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("150.25")))

	balance, err = writeRepo.ApplyDelta(ctx, walletID, decimal.RequireFromString("-50.25"))
	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)))

	// Unknown wallet surfaces as an error.
	_, err = writeRepo.ApplyDelta(ctx, uuid.New(), decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestWalletRepository_UpdateAndDelete(t *testing.T) {
	db, teardown := setupWalletPostgresContainer(t)
	defer teardown()

	writeRepo := NewWalletWriteRepository(db, nil)
	readRepo := NewWalletReadRepository(db, nil)
	ctx := context.Background()

	userID := seedWalletUser(t, db)
	walletID := uuid.New()

	err := writeRepo.Save(ctx, models.WalletDB{
		WalletID: walletID,
		UserID:   userID,
		Name:     "Old name",
		Currency: "USD",
		Type:     "account",
		Balance:  decimal.Zero,
	})
	assert.NoError(t, err)

	rows, err := writeRepo.Update(ctx, userID, walletID, "New name", "savings")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	wallet, err := readRepo.GetByID(ctx, userID, walletID)
	assert.NoError(t, err)
	assert.Equal(t, "New name", wallet.Name)
	assert.Equal(t, "savings", wallet.Type)

	rows, err = writeRepo.Update(ctx, userID, uuid.New(), "x", "account")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = writeRepo.Delete(ctx, userID, walletID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	wallets, err := readRepo.ListByUserID(ctx, userID)
	assert.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestTransactionRepository_ListAndSum(t *testing.T) {
	db, teardown := setupWalletPostgresContainer(t)
	defer teardown()

	walletRepo := NewWalletWriteRepository(db, nil)
	walletReadRepo := NewWalletReadRepository(db, nil)
	writeRepo := NewTransactionWriteRepository(db, nil)
	readRepo := NewTransactionReadRepository(db, nil)
	ctx := context.Background()

	userID := seedWalletUser(t, db)
	walletID := uuid.New()
	groceriesID := seedCategory(t, db, userID, "Groceries", "expense")
	salaryID := seedCategory(t, db, userID, "Salary", "income")

	err := walletRepo.Save(ctx, models.WalletDB{
		WalletID: walletID,
		UserID:   userID,
		Name:     "Main",
		Currency: "USD",
		Type:     "account",
		Balance:  decimal.Zero,
	})
	assert.NoError(t, err)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rowsIn := []models.TransactionDB{
		{TransactionID: uuid.New(), UserID: userID, WalletID: walletID, CategoryID: salaryID,
			Amount: decimal.NewFromInt(1500), Type: "income", Description: "Salary", OccurredAt: base},
		{TransactionID: uuid.New(), UserID: userID, WalletID: walletID, CategoryID: groceriesID,
			Amount: decimal.RequireFromString("42.5"), Type: "expense", Description: "Groceries", OccurredAt: base.AddDate(0, 0, 3)},
		{TransactionID: uuid.New(), UserID: userID, WalletID: walletID, CategoryID: groceriesID,
			Amount: decimal.RequireFromString("17.5"), Type: "expense", Description: "More groceries", OccurredAt: base.AddDate(0, 0, 10)},
	}
	// Mirror each ledger entry onto the wallet balance the way the
	// transaction service does: expenses subtract, income adds.
	balance := decimal.Zero
	for _, txn := range rowsIn {
		assert.NoError(t, writeRepo.Save(ctx, txn))
		delta := txn.Amount
		if txn.Type == "expense" {
			delta = delta.Neg()
		}
		var err error
		balance, err = walletRepo.ApplyDelta(ctx, walletID, delta)
		assert.NoError(t, err)
	}

	t.Run("BalanceMatchesLedger", func(t *testing.T) {
		sum, err := walletReadRepo.SumTransactions(ctx, walletID)
		assert.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(1440)))
		assert.True(t, sum.Equal(balance))
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		txns, err := readRepo.List(ctx, userID, nil, nil, nil)
		assert.NoError(t, err)
		assert.Len(t, txns, 3)
		assert.Equal(t, "More groceries", txns[0].Description)
		assert.Equal(t, "Salary", txns[2].Description)
	})

	t.Run("ListWindow", func(t *testing.T) {
		from := base.AddDate(0, 0, 1)
		to := base.AddDate(0, 0, 5)
		txns, err := readRepo.List(ctx, userID, &walletID, &from, &to)
		assert.NoError(t, err)
		assert.Len(t, txns, 1)
		assert.Equal(t, "Groceries", txns[0].Description)
	})

	t.Run("SumInScope", func(t *testing.T) {
		sum, err := readRepo.SumInScope(ctx, userID, groceriesID, nil, nil, nil)
		assert.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(-60)))
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		txn := rowsIn[1]
		txn.Amount = decimal.NewFromInt(40)
		txn.Description = "Groceries (corrected)"
		rows, err := writeRepo.Update(ctx, txn)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		// Correcting a 42.50 expense down to 40 hands 2.50 back.
		balance, err = walletRepo.ApplyDelta(ctx, walletID, decimal.RequireFromString("2.5"))
		assert.NoError(t, err)
		sum, err := walletReadRepo.SumTransactions(ctx, walletID)
		assert.NoError(t, err)
		assert.True(t, sum.Equal(balance))

		got, err := readRepo.GetByID(ctx, userID, txn.TransactionID)
		assert.NoError(t, err)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(40)))

		rows, err = writeRepo.Delete(ctx, userID, txn.TransactionID)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		// Deleting the expense reverses its effect on the balance.
		balance, err = walletRepo.ApplyDelta(ctx, walletID, decimal.NewFromInt(40))
		assert.NoError(t, err)
		sum, err = walletReadRepo.SumTransactions(ctx, walletID)
		assert.NoError(t, err)
		assert.True(t, sum.Equal(balance))

		rows, err = writeRepo.Delete(ctx, userID, txn.TransactionID)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}
