package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/config"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

const (
	// sensorsOrder sorts anchored readings by time and leaves payload-only rows last
	sensorsOrder  = `"time" IS NULL, "time" ASC, id ASC`
	handoffsOrder = `"time" ASC, id ASC`
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over a PostgreSQL or SQLite gorm connection
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Open opens the database described by cfg and applies the pool settings
func Open(cfg config.DatabaseConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{}
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if err := ConfigureConnectionPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime); err != nil {
		return nil, err
	}

	return db, nil
}

// sqliteDSN adds a busy timeout and WAL journaling unless the path sets its own options
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// InsertBatchIfAbsent inserts the batch unless one with the same id exists
func (s *gormStore) InsertBatchIfAbsent(ctx context.Context, batch *schema.Batch) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "batch_id"}},
			DoNothing: true,
		}).
		Create(batch)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert batch: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// InsertHandoffIfAbsent inserts the handoff unless an identical one exists
func (s *gormStore) InsertHandoffIfAbsent(ctx context.Context, handoff *schema.Handoff) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "batch_id"},
				{Name: "from_addr"},
				{Name: "to_addr"},
				{Name: "time"},
			},
			DoNothing: true,
		}).
		Create(handoff)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert handoff: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// MergeSensorAnchor sets batch, signer and time on the reading, creating it if needed.
// The anchor is authoritative for these columns so the merge order does not matter.
func (s *gormStore) MergeSensorAnchor(ctx context.Context, input SensorAnchorInput) error {
	signer := input.Signer
	anchoredAt := input.Time
	reading := schema.SensorReading{
		BatchID:     input.BatchID,
		ReadingHash: input.ReadingHash,
		Signer:      &signer,
		Time:        &anchoredAt,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reading_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"batch_id", "signer", "time"}),
		}).
		Create(&reading).Error
	if err != nil {
		return fmt.Errorf("failed to merge sensor anchor: %w", err)
	}

	return nil
}

// MergeSensorPayload fills payload fields on the reading, creating it if needed.
// The batch id of an existing row is kept.
func (s *gormStore) MergeSensorPayload(ctx context.Context, input SensorPayloadInput) error {
	reading := schema.SensorReading{
		BatchID:     input.BatchID,
		ReadingHash: input.ReadingHash,
		RawPayload:  input.RawPayload,
		TempC:       input.TempC,
		PayloadTS:   input.PayloadTS,
		Nonce:       input.Nonce,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "reading_hash"}},
			DoUpdates: clause.Set{
				coalesceExcluded("raw_payload"),
				coalesceExcluded("temp_c"),
				coalesceExcluded("payload_ts"),
				coalesceExcluded("nonce"),
			},
		}).
		Create(&reading).Error
	if err != nil {
		return fmt.Errorf("failed to merge sensor payload: %w", err)
	}

	return nil
}

// coalesceExcluded keeps the stored value unless the incoming one is non-null
func coalesceExcluded(column string) clause.Assignment {
	return clause.Assignment{
		Column: clause.Column{Name: column},
		Value:  gorm.Expr(fmt.Sprintf("COALESCE(excluded.%s, sensors.%s)", column, column)),
	}
}

// GetBatch returns the batch or nil when it does not exist
func (s *gormStore) GetBatch(ctx context.Context, batchID string) (*schema.Batch, error) {
	var batch schema.Batch
	err := s.db.WithContext(ctx).Where("batch_id = ?", batchID).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	return &batch, nil
}

// GetHandoffsByBatchID returns handoffs ordered by time ascending
func (s *gormStore) GetHandoffsByBatchID(ctx context.Context, batchID string) ([]schema.Handoff, error) {
	var handoffs []schema.Handoff
	err := s.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order(handoffsOrder).
		Find(&handoffs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get handoffs: %w", err)
	}

	return handoffs, nil
}

// GetSensorsByBatchID returns readings ordered by anchor time ascending, unanchored last
func (s *gormStore) GetSensorsByBatchID(ctx context.Context, batchID string) ([]schema.SensorReading, error) {
	var sensors []schema.SensorReading
	err := s.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order(sensorsOrder).
		Find(&sensors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sensors: %w", err)
	}

	return sensors, nil
}

// GetSensorByReadingHash returns the reading or nil when it does not exist
func (s *gormStore) GetSensorByReadingHash(ctx context.Context, readingHash string) (*schema.SensorReading, error) {
	var sensor schema.SensorReading
	err := s.db.WithContext(ctx).Where("reading_hash = ?", readingHash).First(&sensor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}

	return &sensor, nil
}

// GetActorName returns the display name for an address or nil when unknown
func (s *gormStore) GetActorName(ctx context.Context, address string) (*string, error) {
	var actor schema.Actor
	err := s.db.WithContext(ctx).Where("address = ?", domain.NormalizeAddress(address)).First(&actor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	return &actor.Name, nil
}

// UpsertActors inserts or renames actors
func (s *gormStore) UpsertActors(ctx context.Context, actors []schema.Actor) error {
	if len(actors) == 0 {
		return nil
	}

	// a single upsert statement must not touch the same address twice
	index := make(map[string]int, len(actors))
	rows := make([]schema.Actor, 0, len(actors))
	for _, a := range actors {
		address := domain.NormalizeAddress(a.Address)
		if i, ok := index[address]; ok {
			rows[i].Name = a.Name
			continue
		}
		index[address] = len(rows)
		rows = append(rows, schema.Actor{Address: address, Name: a.Name})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		CreateInBatches(rows, 500).Error
	if err != nil {
		return fmt.Errorf("failed to upsert actors: %w", err)
	}

	return nil
}

// Ping checks the database connection
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
