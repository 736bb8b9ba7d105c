package main

import (
	"encoding/hex"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/zeebo/blake3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/soft_delete"

	computor "github.com/njchilds90/computor"
)

// historyLimit caps how many history rows are loaded at start.
const historyLimit = 1000

type VariableRecord struct {
	Name      string `gorm:"primaryKey"`
	Param     string
	Body      string // postfix tokens as JSON
	Digest    string
	UpdatedAt int64
	/* 0 false 1 true */
	Deleted soft_delete.DeletedAt `gorm:"softDelete:flag;default:0"`
}

func (VariableRecord) TableName() string {
	return "variables"
}

type HistoryRecord struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Line      string
	CreatedAt int64
	Deleted   soft_delete.DeletedAt `gorm:"softDelete:flag;default:0"`
}

func (HistoryRecord) TableName() string {
	return "history"
}

type store struct {
	db *gorm.DB
}

func openStore(path string) (*store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&VariableRecord{}, &HistoryRecord{}); err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func digest(param, body string) string {
	sum := blake3.Sum256([]byte(param + "\x00" + body))
	return hex.EncodeToString(sum[:])
}

// SaveVariable upserts v. Rows whose digest is unchanged are left alone.
func (s *store) SaveVariable(v computor.Variable) error {
	body, err := computor.TokensToJSON(v.Body)
	if err != nil {
		return err
	}
	rec := VariableRecord{Name: v.Name, Param: v.Param, Body: string(body), Digest: digest(v.Param, string(body))}

	var existing VariableRecord
	if err := s.db.Unscoped().Where("`name`=?", v.Name).Limit(1).Find(&existing).Error; err != nil {
		return err
	}
	if existing.Name != "" && existing.Deleted == 0 && existing.Digest == rec.Digest {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"param", "body", "digest", "updated_at", "deleted"}),
	}).Create(&rec).Error
}

// DeleteVariables soft-deletes the named rows, or every row when names is
// empty.
func (s *store) DeleteVariables(names ...string) error {
	q := s.db.Where("1 = 1")
	if len(names) > 0 {
		q = s.db.Where("`name` IN ?", names)
	}
	return q.Delete(&VariableRecord{}).Error
}

// LoadInto defines every live row in sess. Rows that no longer resolve
// are soft-deleted and returned.
func (s *store) LoadInto(sess *computor.Session) (loaded int, dropped []string, err error) {
	var rows []*VariableRecord
	if err := s.db.Model(&VariableRecord{}).Order("name").Find(&rows).Error; err != nil {
		return 0, nil, err
	}
	for _, row := range rows {
		body, err := computor.TokensFromJSON([]byte(row.Body))
		if err == nil {
			err = sess.Define(computor.Variable{Name: row.Name, Param: row.Param, Body: body})
		}
		if err != nil {
			dropped = append(dropped, fmt.Sprintf("%s: %v", row.Name, err))
			if err := s.DeleteVariables(row.Name); err != nil {
				return loaded, dropped, err
			}
			continue
		}
		loaded++
	}
	return loaded, dropped, nil
}

func (s *store) AppendHistory(line string) error {
	return s.db.Create(&HistoryRecord{Line: line}).Error
}

// History returns the newest historyLimit lines, oldest first.
func (s *store) History() ([]string, error) {
	var rows []*HistoryRecord
	if err := s.db.Model(&HistoryRecord{}).Order("id desc").Limit(historyLimit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row.Line
	}
	return out, nil
}

func (s *store) ClearHistory() error {
	return s.db.Where("1 = 1").Delete(&HistoryRecord{}).Error
}
