// Package sqlite provides SQLite persistence for combined mobilograms and comparison results
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/CIUKit/pkg/compare"
	"github.com/ChrisMcGann/CIUKit/pkg/core"
	"github.com/ChrisMcGann/CIUKit/pkg/profile"
)

const (
	// Schema version written to HeaderTable
	schemaVersion = 1
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Timestamp format for row creation dates
	rowDateFormat = time.RFC3339
)

// ErrNotFound is returned when a named mobilogram is not stored
var ErrNotFound = errors.New("not found")

// MobilogramSummary describes a stored mobilogram without its data
type MobilogramSummary struct {
	Name         string
	DriftBins    int
	VoltageSteps int
	ProfileMode  string
	CreationDate string
}

// ComparisonSummary describes a stored comparison result
type ComparisonSummary struct {
	ID           int64
	Kind         compare.Kind
	Labels       []string
	Value        float64
	Parameters   string
	CreationDate string
}

// Store reads and writes mobilograms in a SQLite database file
type Store struct {
	db             *sql.DB
	path           string
	mobilogramStmt *sql.Stmt
	comparisonStmt *sql.Stmt
}

// Open opens or creates the database at path
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.writeHeader(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.prepareStatements(ctx); err != nil {
		s.closeStatements()
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// createTables creates the required database schema
func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS MobilogramTable (
		MobilogramId INTEGER PRIMARY KEY,
		Name TEXT NOT NULL UNIQUE,
		DriftBins INTEGER NOT NULL,
		VoltageSteps INTEGER NOT NULL,
		ProfileMode TEXT,
		Profile TEXT,
		blobMatrix BLOB NOT NULL,
		blobVoltageAxis BLOB NOT NULL,
		blobDriftAxis BLOB NOT NULL,
		blobPlan BLOB,
		CreationDate TEXT
	);

	CREATE TABLE IF NOT EXISTS ComparisonTable (
		ComparisonId INTEGER PRIMARY KEY,
		Kind TEXT NOT NULL,
		Labels TEXT,
		Value DOUBLE,
		Rows INTEGER,
		Cols INTEGER,
		blobResult BLOB,
		Parameters TEXT,
		CreationDate TEXT
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// writeHeader inserts the header row once per database file
func (s *Store) writeHeader(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM HeaderTable`).Scan(&n); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if n > 0 {
		return nil
	}

	today := time.Now().Format(headerDateFormat)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO HeaderTable (version, CreationDate, LastModifiedDate, Description)
		VALUES (?, ?, ?, ?)
	`, schemaVersion, today, today, "CIU mobilograms")
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	return nil
}

// prepareStatements prepares the insert statements
func (s *Store) prepareStatements(ctx context.Context) error {
	var err error

	s.mobilogramStmt, err = s.db.PrepareContext(ctx, `
		INSERT INTO MobilogramTable (
			Name, DriftBins, VoltageSteps, ProfileMode, Profile,
			blobMatrix, blobVoltageAxis, blobDriftAxis, blobPlan, CreationDate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(Name) DO UPDATE SET
			DriftBins = excluded.DriftBins,
			VoltageSteps = excluded.VoltageSteps,
			ProfileMode = excluded.ProfileMode,
			Profile = excluded.Profile,
			blobMatrix = excluded.blobMatrix,
			blobVoltageAxis = excluded.blobVoltageAxis,
			blobDriftAxis = excluded.blobDriftAxis,
			blobPlan = excluded.blobPlan,
			CreationDate = excluded.CreationDate
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mobilogram statement: %w", err)
	}

	s.comparisonStmt, err = s.db.PrepareContext(ctx, `
		INSERT INTO ComparisonTable (
			Kind, Labels, Value, Rows, Cols, blobResult, Parameters, CreationDate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare comparison statement: %w", err)
	}

	return nil
}

// SaveMobilogram stores cim under its name, replacing any earlier entry of that name
func (s *Store) SaveMobilogram(ctx context.Context, cim *core.CombinedIonMobilogram) error {
	if cim.Name == "" {
		return &core.ValidationError{Field: "Name", Message: "mobilogram name is required"}
	}
	if err := cim.Validate(); err != nil {
		return err
	}

	// Profile is kept as a YAML document
	var mode, profileDoc interface{}
	if cim.Profile != nil {
		cfg, err := profile.ConfigFrom(cim.Profile)
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		mode = cim.Profile.Mode()
		profileDoc = string(out)
	}

	var planBlob interface{}
	if len(cim.Plan) > 0 {
		planBlob = encodePlan(cim.Plan)
	}

	rows, cols := cim.Matrix.Dims()
	_, err := s.mobilogramStmt.ExecContext(ctx,
		cim.Name,                               // Name
		rows,                                   // DriftBins
		cols,                                   // VoltageSteps
		mode,                                   // ProfileMode
		profileDoc,                             // Profile
		encodeMatrix(cim.Matrix),               // blobMatrix
		encodeFloat64(cim.VoltageAxis),         // blobVoltageAxis
		encodeFloat64(cim.DriftAxis),           // blobDriftAxis
		planBlob,                               // blobPlan
		time.Now().UTC().Format(rowDateFormat), // CreationDate
	)
	if err != nil {
		return fmt.Errorf("failed to insert mobilogram: %w", err)
	}

	return nil
}

// LoadMobilogram reads the mobilogram stored under name
func (s *Store) LoadMobilogram(ctx context.Context, name string) (*core.CombinedIonMobilogram, error) {
	var (
		rows, cols           int
		profileDoc           sql.NullString
		matrixBlob, voltBlob []byte
		driftBlob, planBlob  []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT DriftBins, VoltageSteps, Profile, blobMatrix, blobVoltageAxis, blobDriftAxis, blobPlan
		FROM MobilogramTable WHERE Name = ?
	`, name).Scan(&rows, &cols, &profileDoc, &matrixBlob, &voltBlob, &driftBlob, &planBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mobilogram %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mobilogram %q: %w", name, err)
	}

	m, err := decodeMatrix(matrixBlob, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("mobilogram %q: %w", name, err)
	}
	volts, err := decodeFloat64(voltBlob)
	if err != nil {
		return nil, fmt.Errorf("mobilogram %q voltage axis: %w", name, err)
	}
	drift, err := decodeFloat64(driftBlob)
	if err != nil {
		return nil, fmt.Errorf("mobilogram %q drift axis: %w", name, err)
	}

	cim, err := core.NewCombinedIonMobilogram(name, m, volts, drift)
	if err != nil {
		return nil, err
	}

	if profileDoc.Valid && profileDoc.String != "" {
		var cfg profile.Config
		if err := yaml.Unmarshal([]byte(profileDoc.String), &cfg); err != nil {
			return nil, fmt.Errorf("mobilogram %q: failed to decode profile: %w", name, err)
		}
		p, err := cfg.Profile()
		if err != nil {
			return nil, fmt.Errorf("mobilogram %q: %w", name, err)
		}
		cim.Profile = p
	}

	if len(planBlob) > 0 {
		plan, err := decodePlan(planBlob)
		if err != nil {
			return nil, fmt.Errorf("mobilogram %q plan: %w", name, err)
		}
		cim.Plan = plan
	}

	return cim, nil
}

// ListMobilograms returns summaries of every stored mobilogram ordered by name
func (s *Store) ListMobilograms(ctx context.Context) ([]MobilogramSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT Name, DriftBins, VoltageSteps, ProfileMode, CreationDate
		FROM MobilogramTable ORDER BY Name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list mobilograms: %w", err)
	}
	defer rows.Close()

	var out []MobilogramSummary
	for rows.Next() {
		var (
			sum  MobilogramSummary
			mode sql.NullString
		)
		if err := rows.Scan(&sum.Name, &sum.DriftBins, &sum.VoltageSteps, &mode, &sum.CreationDate); err != nil {
			return nil, fmt.Errorf("failed to read mobilogram row: %w", err)
		}
		sum.ProfileMode = mode.String
		out = append(out, sum)
	}

	return out, rows.Err()
}

// SaveComparison stores a comparison result with the labels of its inputs.
// params is a free-form description of the settings used, e.g. "sigma=1".
func (s *Store) SaveComparison(ctx context.Context, res compare.Result, labels []string, params string) (int64, error) {
	var (
		value interface{}
		data  *mat.Dense
	)

	switch r := res.(type) {
	case *compare.RMSDResult:
		value = r.RMSD
		data = r.Diff
	case *compare.RMSFResult:
		value = r.RMSD
		data = mat.NewDense(1, len(r.Profile), append([]float64(nil), r.Profile...))
	case *compare.AggregateResult:
		data = r.Matrix
		if params == "" {
			params = "stat=" + string(r.Stat)
		}
	case *compare.DistanceMatrixResult:
		data = r.Distances
		labels = r.Labels
	default:
		return 0, fmt.Errorf("unsupported comparison result %T", res)
	}

	// Labels are kept as a YAML list so names may hold any character
	var labelDoc interface{}
	if len(labels) > 0 {
		out, err := yaml.Marshal(labels)
		if err != nil {
			return 0, fmt.Errorf("failed to encode labels: %w", err)
		}
		labelDoc = string(out)
	}

	rows, cols := data.Dims()
	result, err := s.comparisonStmt.ExecContext(ctx,
		string(res.Kind()),                     // Kind
		labelDoc,                               // Labels
		value,                                  // Value
		rows,                                   // Rows
		cols,                                   // Cols
		encodeMatrix(data),                     // blobResult
		params,                                 // Parameters
		time.Now().UTC().Format(rowDateFormat), // CreationDate
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert comparison: %w", err)
	}

	return result.LastInsertId()
}

// ListComparisons returns every stored comparison, oldest first
func (s *Store) ListComparisons(ctx context.Context) ([]ComparisonSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ComparisonId, Kind, Labels, Value, Parameters, CreationDate
		FROM ComparisonTable ORDER BY ComparisonId
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}
	defer rows.Close()

	var out []ComparisonSummary
	for rows.Next() {
		var (
			sum    ComparisonSummary
			kind   string
			labels sql.NullString
			value  sql.NullFloat64
			params sql.NullString
		)
		if err := rows.Scan(&sum.ID, &kind, &labels, &value, &params, &sum.CreationDate); err != nil {
			return nil, fmt.Errorf("failed to read comparison row: %w", err)
		}
		sum.Kind = compare.Kind(kind)
		if labels.String != "" {
			if err := yaml.Unmarshal([]byte(labels.String), &sum.Labels); err != nil {
				return nil, fmt.Errorf("failed to decode labels of comparison %d: %w", sum.ID, err)
			}
		}
		sum.Value = value.Float64
		sum.Parameters = params.String
		out = append(out, sum)
	}

	return out, rows.Err()
}

// LoadComparisonData returns the stored result matrix of comparison id
func (s *Store) LoadComparisonData(ctx context.Context, id int64) (*mat.Dense, error) {
	var (
		rows, cols int
		blob       []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT Rows, Cols, blobResult FROM ComparisonTable WHERE ComparisonId = ?
	`, id).Scan(&rows, &cols, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comparison %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison %d: %w", id, err)
	}

	return decodeMatrix(blob, rows, cols)
}

func (s *Store) closeStatements() {
	if s.mobilogramStmt != nil {
		s.mobilogramStmt.Close()
	}
	if s.comparisonStmt != nil {
		s.comparisonStmt.Close()
	}
}

// Close updates the header modification date and closes the database.
// Statements and the database are closed even when the update fails; the first
// error is returned.
func (s *Store) Close() error {
	var firstErr error
	_, err := s.db.Exec(`UPDATE HeaderTable SET LastModifiedDate = ?`, time.Now().Format(headerDateFormat))
	if err != nil {
		firstErr = fmt.Errorf("failed to update header: %w", err)
	}

	// Close prepared statements
	s.closeStatements()

	// Close database
	if err := s.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close database: %w", err)
	}

	return firstErr
}
