package services

import (
	"context"
	"testing"

	"github.com/sjperalta/fintera-obligations/internal/config"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// dryRunDB builds statements against the postgres dialect without a server
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=fintera dbname=fintera_test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)
	return db
}

// captureAudits collects every audit entry handed to Create
func captureAudits(t *testing.T, db *gorm.DB) *[]models.AuditLog {
	t.Helper()
	var entries []models.AuditLog
	err := db.Callback().Create().After("gorm:create").Register("test:capture_audit", func(tx *gorm.DB) {
		if entry, ok := tx.Statement.Dest.(*models.AuditLog); ok {
			entries = append(entries, *entry)
		}
	})
	require.NoError(t, err)
	return &entries
}

func TestAuditService_LogRecordsCaller(t *testing.T) {
	db := dryRunDB(t)
	entries := captureAudits(t, db)
	svc := NewAuditService(db)

	ctx := WithAuditMeta(context.Background(), AuditMeta{
		Actor:     "ana.lopez",
		IPAddress: "10.0.0.7",
		UserAgent: "curl/8.5",
	})
	svc.Log(ctx, models.AuditActionCancel, models.AuditEntityObligation, 12, "Obligación cancelada")
	svc.Log(context.Background(), models.AuditActionSweep, models.AuditEntityInstallment, 0, "3 cuotas marcadas como vencidas")

	require.Len(t, *entries, 2)
	first := (*entries)[0]
	assert.Equal(t, "ana.lopez", first.Actor)
	assert.Equal(t, "10.0.0.7", first.IPAddress)
	assert.Equal(t, "curl/8.5", first.UserAgent)
	assert.Equal(t, models.AuditActionCancel, first.Action)
	assert.Equal(t, models.AuditEntityObligation, first.Entity)
	assert.Equal(t, uint(12), first.EntityID)
	assert.Equal(t, "Obligación cancelada", first.Details)

	// without caller metadata the entry is attributed to the system
	second := (*entries)[1]
	assert.Equal(t, "system", second.Actor)
	assert.Empty(t, second.IPAddress)
}

func TestAuditService_MutationsAreAudited(t *testing.T) {
	db := dryRunDB(t)
	entries := captureAudits(t, db)
	store := repotest.NewStore()
	svcs := NewServices(store.Repositories(), nil, &config.Config{RecurringHorizonMonths: 1}, db)

	ctx := WithAuditMeta(context.Background(), AuditMeta{Actor: "tesoreria", IPAddress: "192.168.1.20"})
	id := createObligation(t, svcs, finiteInput(models.KindBillPayable, "30.00", 3, 30, date(2025, 1, 1)))
	_, err := svcs.Obligation.Cancel(ctx, id, date(2025, 1, 2))
	require.NoError(t, err)

	require.Len(t, *entries, 2)
	assert.Equal(t, models.AuditActionCreate, (*entries)[0].Action)
	assert.Equal(t, "system", (*entries)[0].Actor)

	cancel := (*entries)[1]
	assert.Equal(t, models.AuditActionCancel, cancel.Action)
	assert.Equal(t, id, cancel.EntityID)
	assert.Equal(t, "tesoreria", cancel.Actor)
	assert.Equal(t, "192.168.1.20", cancel.IPAddress)
	assert.Equal(t, "Obligación cancelada, 0 cuotas anuladas", cancel.Details)
}

func TestAuditService_ListFilters(t *testing.T) {
	db := dryRunDB(t)
	var queries []string
	err := db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		queries = append(queries, tx.Statement.SQL.String())
	})
	require.NoError(t, err)

	_, _, err = NewAuditService(db).List(context.Background(), AuditQuery{
		Entity:   models.AuditEntityObligation,
		EntityID: 12,
		Limit:    10,
		Offset:   20,
	})
	require.NoError(t, err)

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "count(*)")
	for _, q := range queries {
		assert.Contains(t, q, "entity = $1")
		assert.Contains(t, q, "entity_id = $2")
	}
	assert.Contains(t, queries[1], "ORDER BY created_at desc")
	assert.Contains(t, queries[1], "LIMIT")
	assert.Contains(t, queries[1], "OFFSET")
}
