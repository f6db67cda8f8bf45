package dataset

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// observation is one stored row.
type observation struct {
	ID     uint               `gorm:"primaryKey"`
	Entity string             `gorm:"not null;uniqueIndex:idx_entity_year"`
	Year   int                `gorm:"not null;uniqueIndex:idx_entity_year"`
	Values map[string]float64 `gorm:"serializer:json"`
}

// measureColumn keeps the source column order.
type measureColumn struct {
	Position int    `gorm:"primaryKey;autoIncrement:false"`
	Name     string `gorm:"not null"`
}

// Store persists a Table in SQLite.
type Store struct {
	db *gorm.DB
}

// OpenStore opens or creates the SQLite database at path.
func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := db.AutoMigrate(&observation{}, &measureColumn{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	return &Store{db: db}, nil
}

// Save replaces the stored rows with the contents of t in one transaction.
func (s *Store) Save(ctx context.Context, t *Table) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&observation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&measureColumn{}).Error; err != nil {
			return err
		}

		columns := make([]measureColumn, 0, len(t.columns))
		for i, name := range t.columns {
			columns = append(columns, measureColumn{Position: i, Name: name})
		}
		if len(columns) > 0 {
			if err := tx.Create(&columns).Error; err != nil {
				return err
			}
		}

		rows := t.All()
		if len(rows) == 0 {
			return nil
		}
		records := make([]observation, len(rows))
		for i, r := range rows {
			records[i] = observation{Entity: r.Entity, Year: r.Year, Values: r.Values}
		}
		return tx.CreateInBatches(records, 500).Error
	})
}

// Load reads the stored rows back into a Table.
func (s *Store) Load(ctx context.Context) (*Table, error) {
	db := s.db.WithContext(ctx)

	var columns []measureColumn
	if err := db.Order("position").Find(&columns).Error; err != nil {
		return nil, fmt.Errorf("load columns: %w", err)
	}
	var records []observation
	if err := db.Order("entity, year").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	rows := make([]Row, len(records))
	for i, rec := range records {
		values := rec.Values
		if values == nil {
			values = map[string]float64{}
		}
		rows[i] = Row{Entity: rec.Entity, Year: rec.Year, Values: values}
	}

	return NewTable(names, rows)
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
