package config

import (
	"context"
	"testing"

	"loanledger/internal/adapters/persistence/dbtest"
	"loanledger/internal/adapters/persistence/models"
	"loanledger/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 60, cfg.JWT.AccessTokenMins)
	assert.Equal(t, "@daily", cfg.ReportCron)
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
}

func TestLoadPostgresDefaultsPort(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN(), "dbname=loanledger")
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "oracle")
	_, err = Load()
	assert.Error(t, err)
}

func TestProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("PROD_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PROD_JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.JWT.Secret)
}

func TestSeeder(t *testing.T) {
	password.Cost = bcrypt.MinCost
	defer func() { password.Cost = password.DefaultCost }()

	ctx := context.Background()
	db := dbtest.Open(t)
	seeder := NewSeeder(db, SeedConfig{
		AdminUsername: "root",
		AdminPassword: "changeme123",
		DemoLoans:     8,
	}, zap.NewNop())

	require.NoError(t, seeder.Run(ctx))
	require.NoError(t, seeder.Run(ctx), "seeding twice is a no-op")

	var admins []models.User
	require.NoError(t, db.Where("role = ?", "Admin").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@localhost", admins[0].Email)
	assert.True(t, password.Verify("changeme123", admins[0].PasswordHash))

	var loans []models.Loan
	require.NoError(t, db.Order("id").Find(&loans).Error)
	require.Len(t, loans, 8)
	for _, loan := range loans {
		assert.Equal(t, loan.Status == "paid", loan.CurrentBalance.IsZero(), "loan %d", loan.ID)
		assert.False(t, loan.CurrentBalance.GreaterThan(loan.Amount))
	}
}
