package bandstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("band set not found")

// BandSetRecord is the persisted form of a named threshold configuration.
type BandSetRecord struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	Name        string         `gorm:"column:name;uniqueIndex:idx_band_set_name_version"`
	Version     int            `gorm:"column:version;uniqueIndex:idx_band_set_name_version"`
	Description string         `gorm:"column:description"`
	Spec        datatypes.JSON `gorm:"column:spec"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

// TableName overrides gorm naming.
func (BandSetRecord) TableName() string {
	return "risk_band_sets"
}

func (r BandSetRecord) BandSet() (risk.BandSet, error) {
	var spec risk.BandSetSpec
	if err := json.Unmarshal(r.Spec, &spec); err != nil {
		return risk.BandSet{}, risk.NewConfigurationError("band set %s@%d: decode spec: %w", r.Name, r.Version, err)
	}
	return spec.Build()
}

// Repository stores band set configurations in Postgres.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&BandSetRecord{})
}

// Upsert inserts the set or replaces the spec stored under the same name and version.
func (r *Repository) Upsert(ctx context.Context, set risk.BandSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	spec, err := json.Marshal(set.Spec())
	if err != nil {
		return fmt.Errorf("encode band set %s: %w", set.ID(), err)
	}
	now := time.Now().UTC()
	record := BandSetRecord{
		ID:          uuid.New(),
		Name:        set.Name,
		Version:     set.Version,
		Description: set.Description,
		Spec:        datatypes.JSON(spec),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "version"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "spec", "updated_at"}),
	}).Create(&record).Error
}

func (r *Repository) Get(ctx context.Context, name string, version int) (risk.BandSet, error) {
	var record BandSetRecord
	result := r.db.WithContext(ctx).First(&record, "name = ? AND version = ?", name, version)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return risk.BandSet{}, ErrNotFound
	}
	if result.Error != nil {
		return risk.BandSet{}, result.Error
	}
	return record.BandSet()
}

// List returns every stored set ordered by name and version.
func (r *Repository) List(ctx context.Context) ([]risk.BandSet, error) {
	var records []BandSetRecord
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Order("version ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	sets := make([]risk.BandSet, 0, len(records))
	for _, record := range records {
		set, err := record.BandSet()
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}
