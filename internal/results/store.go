package results

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"energyhub/internal/hydro"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// StoredRun is one persisted solved unit.
type StoredRun struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"uniqueIndex:idx_run_unit"`
	Node       string `gorm:"uniqueIndex:idx_run_unit"`
	Technology string `gorm:"uniqueIndex:idx_run_unit"`
	Carrier    string
	Size       float64
	CreatedAt  time.Time
}

// StoredValue is one value of one result series.
type StoredValue struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index:idx_series"`
	Node       string `gorm:"index:idx_series"`
	Technology string `gorm:"index:idx_series"`
	Series     string `gorm:"index:idx_series"`
	Timestep   int
	Value      float64
}

const insertBatchSize = 500

// Store persists solved operations to a local SQLite file.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	err = db.AutoMigrate(&StoredRun{}, &StoredValue{})
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Unit is one solved technology at one node.
type Unit struct {
	Node      string
	Operation *hydro.Operation
}

// Save stores a single unit under runID.
func (s *Store) Save(runID, node string, op *hydro.Operation) error {
	return s.SaveRun(runID, []Unit{{Node: node, Operation: op}})
}

// SaveRun writes the header and every result series of each unit in one
// transaction. Nothing of the run is kept if any unit fails.
func (s *Store) SaveRun(runID string, units []Unit) error {
	if runID == "" {
		return errors.New("run id is required")
	}
	if len(units) == 0 {
		return errors.New("no units to save")
	}
	runs := make([]StoredRun, 0, len(units))
	var values []StoredValue
	for _, u := range units {
		op := u.Operation
		if op == nil {
			return fmt.Errorf("node %s: operation is nil", u.Node)
		}
		runs = append(runs, StoredRun{RunID: runID, Node: u.Node, Technology: op.Technology, Carrier: op.Carrier, Size: op.Size})
		values = append(values, seriesRows(runID, u.Node, op)...)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range runs {
			if err := tx.Create(&runs[i]).Error; err != nil {
				return fmt.Errorf("save run %s unit %s.%s: %w", runID, runs[i].Node, runs[i].Technology, err)
			}
		}
		if len(values) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(values, insertBatchSize).Error; err != nil {
			return fmt.Errorf("save series for run %s: %w", runID, err)
		}
		return nil
	})
}

func seriesRows(runID, node string, op *hydro.Operation) []StoredValue {
	series := op.Series()
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	var values []StoredValue
	for _, name := range names {
		for t, v := range series[name] {
			values = append(values, StoredValue{
				RunID:      runID,
				Node:       node,
				Technology: op.Technology,
				Series:     name,
				Timestep:   t + 1,
				Value:      v,
			})
		}
	}
	return values
}

// Series returns one stored series ordered by timestep.
func (s *Store) Series(runID, node, technology, name string) ([]float64, error) {
	var rows []StoredValue
	result := s.db.
		Where("run_id = ? AND node = ? AND technology = ? AND series = ?", runID, node, technology, name).
		Order("timestep asc").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("series %s of %s.%s not found in run %s", name, node, technology, runID)
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Value
	}
	return out, nil
}

// Runs lists the stored units of a run.
func (s *Store) Runs(runID string) ([]StoredRun, error) {
	var runs []StoredRun
	result := s.db.Where("run_id = ?", runID).Order("node asc, technology asc").Find(&runs)
	if result.Error != nil {
		return nil, result.Error
	}
	return runs, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
