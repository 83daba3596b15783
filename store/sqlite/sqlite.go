/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements forecast.Store (PhaseStore, ProjectStore, AllocationStore)
  using SQLite. In production, the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  projects:            Project records with status
  project_schedules:   One schedule per project with its date range
  schedule_phases:     Phases with date range and labor input
  crew_types:          Crew type tags for breakdown reporting
  labor_plans:         Per-project aggregate hour plans
  monthly_allocations: Flat per-month allocation rows (always replaced
                       as a whole set, never patched)

ALLOCATION REPLACE:
  ReplaceAllocations runs delete-all-then-insert-all inside a single
  SQL transaction under the write lock. A failure mid-operation rolls
  back, so the table never holds a stale partial set. The write lock
  also serializes concurrent recomputes for the same project.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/sprinksync.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := forecast.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - forecast/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Futilediploma/SprinkSync/forecast"
)

// Store implements forecast.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_status
		ON projects(status);

	CREATE TABLE IF NOT EXISTS project_schedules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_schedules_project
		ON project_schedules(project_id);

	CREATE TABLE IF NOT EXISTS crew_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS schedule_phases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		schedule_id INTEGER NOT NULL REFERENCES project_schedules(id) ON DELETE CASCADE,
		phase_name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		estimated_man_hours TEXT,
		crew_size TEXT,
		crew_type_id INTEGER REFERENCES crew_types(id) ON DELETE SET NULL,
		sort_order INTEGER DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_phases_schedule
		ON schedule_phases(schedule_id);

	-- Hot path: company-wide overlap queries
	CREATE INDEX IF NOT EXISTS idx_phases_dates
		ON schedule_phases(start_date, end_date);

	CREATE INDEX IF NOT EXISTS idx_phases_crew_type
		ON schedule_phases(crew_type_id);

	CREATE TABLE IF NOT EXISTS labor_plans (
		project_id INTEGER PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		total_labor_hours TEXT NOT NULL,
		hours_completed TEXT NOT NULL,
		start_month TEXT NOT NULL,
		end_month TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS monthly_allocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		month TEXT NOT NULL,
		forecast_hours TEXT NOT NULL,
		UNIQUE(project_id, month)
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_project
		ON monthly_allocations(project_id, month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROJECT STORE (forecast.ProjectStore interface)
// =============================================================================

// CreateProject inserts a project and returns its id.
func (s *Store) CreateProject(ctx context.Context, p forecast.Project) (forecast.ProjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := p.Status
	if status == "" {
		status = forecast.StatusActive
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, status, created_at) VALUES (?, ?, ?)`,
		p.Name, string(status), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create project: %w", err)
	}
	id, err := res.LastInsertId()
	return forecast.ProjectID(id), err
}

// GetProject returns a project by id, or nil when absent.
func (s *Store) GetProject(ctx context.Context, id forecast.ProjectID) (*forecast.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p forecast.Project
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, status FROM projects WHERE id = ?`, int64(id),
	).Scan(&p.ID, &p.Name, &status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.Status = forecast.ProjectStatus(status)
	return &p, nil
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]forecast.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status FROM projects ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []forecast.Project
	for rows.Next() {
		var p forecast.Project
		var status string
		if err := rows.Scan(&p.ID, &p.Name, &status); err != nil {
			return nil, err
		}
		p.Status = forecast.ProjectStatus(status)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectNames resolves display names for the given ids.
func (s *Store) ProjectNames(ctx context.Context, ids []forecast.ProjectID) (map[forecast.ProjectID]string, error) {
	names := make(map[forecast.ProjectID]string)
	if len(ids) == 0 {
		return names, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM projects WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query project names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id forecast.ProjectID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// CreateSchedule inserts a project's schedule and returns its id.
func (s *Store) CreateSchedule(ctx context.Context, sched forecast.Schedule) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO project_schedules (project_id, start_date, end_date) VALUES (?, ?, ?)`,
		int64(sched.ProjectID), sched.StartDate.String(), sched.EndDate.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create schedule: %w", err)
	}
	return res.LastInsertId()
}

// GetSchedule returns a project's schedule, or nil when absent.
func (s *Store) GetSchedule(ctx context.Context, projectID forecast.ProjectID) (*forecast.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sched forecast.Schedule
	var start, end string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, start_date, end_date FROM project_schedules WHERE project_id = ?`,
		int64(projectID),
	).Scan(&sched.ID, &sched.ProjectID, &start, &end)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if sched.StartDate, err = forecast.ParseDate(start); err != nil {
		return nil, err
	}
	if sched.EndDate, err = forecast.ParseDate(end); err != nil {
		return nil, err
	}
	return &sched, nil
}

// CreatePhase inserts a phase. A phase with neither hours nor crew
// size gets the default crew (foreman + helper) at this boundary.
func (s *Store) CreatePhase(ctx context.Context, scheduleID int64, p forecast.Phase) (forecast.PhaseID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	crewSize := p.CrewSize
	if p.EstimatedHours == nil && crewSize == nil {
		def := forecast.DefaultCrewSize
		crewSize = &def
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_phases
		 (schedule_id, phase_name, start_date, end_date, estimated_man_hours, crew_size, crew_type_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		scheduleID,
		p.Name,
		p.StartDate.String(),
		p.EndDate.String(),
		nullDecimal(p.EstimatedHours),
		nullDecimal(crewSize),
		nullCrewType(p.CrewTypeID),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create phase: %w", err)
	}
	id, err := res.LastInsertId()
	return forecast.PhaseID(id), err
}

// SchedulePhases returns all phases of a schedule in sort order.
func (s *Store) SchedulePhases(ctx context.Context, scheduleID int64) ([]forecast.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT p.id, s.project_id, p.phase_name, p.start_date, p.end_date,
		       p.estimated_man_hours, p.crew_size, p.crew_type_id
		FROM schedule_phases p
		JOIN project_schedules s ON s.id = p.schedule_id
		WHERE p.schedule_id = ?
		ORDER BY p.sort_order ASC, p.start_date ASC, p.id ASC
	`
	return s.queryPhases(ctx, query, scheduleID)
}

// ListCrewTypes returns all crew types ordered by name.
func (s *Store) ListCrewTypes(ctx context.Context) ([]forecast.CrewType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM crew_types ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew types: %w", err)
	}
	defer rows.Close()

	var types []forecast.CrewType
	for rows.Next() {
		var ct forecast.CrewType
		if err := rows.Scan(&ct.ID, &ct.Name); err != nil {
			return nil, err
		}
		types = append(types, ct)
	}
	return types, rows.Err()
}

// CreateCrewType inserts a crew type and returns its id.
func (s *Store) CreateCrewType(ctx context.Context, name string) (forecast.CrewTypeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO crew_types (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create crew type: %w", err)
	}
	id, err := res.LastInsertId()
	return forecast.CrewTypeID(id), err
}

// =============================================================================
// PHASE STORE (forecast.PhaseStore interface)
// =============================================================================

// ActivePhasesInRange returns phases overlapping [start, end] whose
// project status is forecastable, optionally restricted by the filter.
func (s *Store) ActivePhasesInRange(ctx context.Context, start, end forecast.Date, filter forecast.PhaseFilter) ([]forecast.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(`
		SELECT p.id, s.project_id, p.phase_name, p.start_date, p.end_date,
		       p.estimated_man_hours, p.crew_size, p.crew_type_id
		FROM schedule_phases p
		JOIN project_schedules s ON s.id = p.schedule_id
		JOIN projects pr ON pr.id = s.project_id
		WHERE pr.status IN (`)

	args := make([]any, 0, 8)
	for i, status := range forecast.ForecastableStatuses {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
		args = append(args, string(status))
	}
	sb.WriteString(`) AND p.start_date <= ? AND p.end_date >= ?`)
	args = append(args, end.String(), start.String())

	if len(filter.ProjectIDs) > 0 {
		placeholders, ids := inClause(filter.ProjectIDs)
		sb.WriteString(` AND s.project_id IN (` + placeholders + `)`)
		args = append(args, ids...)
	}
	if len(filter.CrewTypeIDs) > 0 {
		placeholders, ids := inClause(filter.CrewTypeIDs)
		sb.WriteString(` AND p.crew_type_id IN (` + placeholders + `)`)
		args = append(args, ids...)
	}
	sb.WriteString(` ORDER BY p.start_date ASC, p.id ASC`)

	return s.queryPhases(ctx, sb.String(), args...)
}

func (s *Store) queryPhases(ctx context.Context, query string, args ...any) ([]forecast.Phase, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query phases: %w", err)
	}
	defer rows.Close()

	var phases []forecast.Phase
	for rows.Next() {
		var p forecast.Phase
		var start, end string
		var hours, crew sql.NullString
		var crewType sql.NullInt64

		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &start, &end, &hours, &crew, &crewType); err != nil {
			return nil, err
		}

		if p.StartDate, err = forecast.ParseDate(start); err != nil {
			return nil, err
		}
		if p.EndDate, err = forecast.ParseDate(end); err != nil {
			return nil, err
		}
		if p.EstimatedHours, err = scanDecimal(hours); err != nil {
			return nil, err
		}
		if p.CrewSize, err = scanDecimal(crew); err != nil {
			return nil, err
		}
		if crewType.Valid {
			ct := forecast.CrewTypeID(crewType.Int64)
			p.CrewTypeID = &ct
		}

		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// =============================================================================
// ALLOCATION STORE (forecast.AllocationStore interface)
// =============================================================================

// GetLaborPlan returns a project's labor plan, or nil when absent.
func (s *Store) GetLaborPlan(ctx context.Context, projectID forecast.ProjectID) (*forecast.LaborPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total, completed, startMonth, endMonth string
	err := s.db.QueryRowContext(ctx,
		`SELECT total_labor_hours, hours_completed, start_month, end_month
		 FROM labor_plans WHERE project_id = ?`, int64(projectID),
	).Scan(&total, &completed, &startMonth, &endMonth)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get labor plan: %w", err)
	}

	plan := forecast.LaborPlan{ProjectID: projectID}
	if plan.TotalLaborHours, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("corrupt total_labor_hours: %w", err)
	}
	if plan.HoursCompleted, err = decimal.NewFromString(completed); err != nil {
		return nil, fmt.Errorf("corrupt hours_completed: %w", err)
	}
	if plan.StartMonth, err = forecast.ParseMonth(startMonth); err != nil {
		return nil, err
	}
	if plan.EndMonth, err = forecast.ParseMonth(endMonth); err != nil {
		return nil, err
	}
	return &plan, nil
}

// SaveLaborPlan upserts a project's labor plan.
func (s *Store) SaveLaborPlan(ctx context.Context, plan forecast.LaborPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO labor_plans (project_id, total_labor_hours, hours_completed, start_month, end_month, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET
		   total_labor_hours = excluded.total_labor_hours,
		   hours_completed = excluded.hours_completed,
		   start_month = excluded.start_month,
		   end_month = excluded.end_month,
		   updated_at = excluded.updated_at`,
		int64(plan.ProjectID),
		plan.TotalLaborHours.String(),
		plan.HoursCompleted.String(),
		plan.StartMonth.String(),
		plan.EndMonth.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save labor plan: %w", err)
	}
	return nil
}

// ReplaceAllocations swaps a project's allocation rows atomically.
// The write lock serializes concurrent recomputes for the same
// project; the SQL transaction guarantees no partial set survives a
// mid-operation failure.
func (s *Store) ReplaceAllocations(ctx context.Context, projectID forecast.ProjectID, allocations []forecast.MonthlyAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM monthly_allocations WHERE project_id = ?`, int64(projectID)); err != nil {
		return fmt.Errorf("failed to clear allocations: %w", err)
	}

	for _, a := range allocations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_allocations (project_id, month, forecast_hours) VALUES (?, ?, ?)`,
			int64(projectID), a.Month, a.ForecastHours.String()); err != nil {
			return fmt.Errorf("failed to insert allocation: %w", err)
		}
	}

	return tx.Commit()
}

// Allocations returns a project's allocation rows ordered by month.
func (s *Store) Allocations(ctx context.Context, projectID forecast.ProjectID) ([]forecast.MonthlyAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, month, forecast_hours
		 FROM monthly_allocations WHERE project_id = ? ORDER BY month ASC`,
		int64(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var allocations []forecast.MonthlyAllocation
	for rows.Next() {
		var a forecast.MonthlyAllocation
		var hours string
		if err := rows.Scan(&a.ProjectID, &a.Month, &hours); err != nil {
			return nil, err
		}
		if a.ForecastHours, err = decimal.NewFromString(hours); err != nil {
			return nil, fmt.Errorf("corrupt forecast_hours: %w", err)
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullCrewType(id *forecast.CrewTypeID) any {
	if id == nil {
		return nil
	}
	return int64(*id)
}

func scanDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt decimal value %q: %w", ns.String, err)
	}
	return &d, nil
}

func inClause[T ~int64](ids []T) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = int64(id)
	}
	return placeholders, args
}
