package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quayline/terminal-backend/internal/models"
	"github.com/quayline/terminal-backend/internal/service"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// --- vessels ---

const vesselColumns = `id, name, imo_number, call_sign, vessel_type, length_overall, draft,
	status, current_berth, brv_target, brv_completed, zee_target, zee_completed,
	sou_target, sou_completed, total_discharge_target, total_discharged,
	eta, arrived_at, departed_at, created_at, updated_at`

func scanVessel(row pgx.Row) (models.Vessel, error) {
	var v models.Vessel
	err := row.Scan(
		&v.ID, &v.Name, &v.IMONumber, &v.CallSign, &v.VesselType, &v.LengthOverall, &v.Draft,
		&v.Status, &v.CurrentBerth, &v.BRVTarget, &v.BRVCompleted, &v.ZEETarget, &v.ZEECompleted,
		&v.SOUTarget, &v.SOUCompleted, &v.TotalDischargeTarget, &v.TotalDischarged,
		&v.ETA, &v.ArrivedAt, &v.DepartedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Vessel{}, service.ErrNoRecord
	}
	return v, err
}

func (s *Store) CreateVessel(ctx context.Context, v models.Vessel) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO vessels (`+vesselColumns+`)
		VALUES (`+placeholders(22)+`)
	`, v.ID, v.Name, v.IMONumber, v.CallSign, v.VesselType, v.LengthOverall, v.Draft,
		v.Status, v.CurrentBerth, v.BRVTarget, v.BRVCompleted, v.ZEETarget, v.ZEECompleted,
		v.SOUTarget, v.SOUCompleted, v.TotalDischargeTarget, v.TotalDischarged,
		v.ETA, v.ArrivedAt, v.DepartedAt, v.CreatedAt, v.UpdatedAt)
	return err
}

func (s *Store) GetVessel(ctx context.Context, id string) (models.Vessel, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+vesselColumns+` FROM vessels WHERE id = $1`, id)
	return scanVessel(row)
}

func (s *Store) SaveVessel(ctx context.Context, v models.Vessel) error {
	return saveVessel(ctx, s.Pool, v)
}

func saveVessel(ctx context.Context, q queryer, v models.Vessel) error {
	_, err := q.Exec(ctx, `
		UPDATE vessels SET
			name = $2, imo_number = $3, call_sign = $4, vessel_type = $5,
			length_overall = $6, draft = $7, status = $8, current_berth = $9,
			brv_target = $10, brv_completed = $11, zee_target = $12, zee_completed = $13,
			sou_target = $14, sou_completed = $15, total_discharge_target = $16,
			total_discharged = $17, eta = $18, arrived_at = $19, departed_at = $20,
			updated_at = $21
		WHERE id = $1
	`, v.ID, v.Name, v.IMONumber, v.CallSign, v.VesselType,
		v.LengthOverall, v.Draft, v.Status, v.CurrentBerth,
		v.BRVTarget, v.BRVCompleted, v.ZEETarget, v.ZEECompleted,
		v.SOUTarget, v.SOUCompleted, v.TotalDischargeTarget,
		v.TotalDischarged, v.ETA, v.ArrivedAt, v.DepartedAt, v.UpdatedAt)
	return err
}

func (s *Store) ListVessels(ctx context.Context, status string) ([]models.Vessel, error) {
	query := `SELECT ` + vesselColumns + ` FROM vessels`
	var args []any
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Vessel
	for rows.Next() {
		v, err := scanVessel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// --- berths ---

func (s *Store) GetBerth(ctx context.Context, number string) (models.Berth, error) {
	row := s.Pool.QueryRow(ctx, `SELECT number, berth_type, max_length, max_draft, status FROM berths WHERE number = $1`, number)
	var b models.Berth
	err := row.Scan(&b.Number, &b.BerthType, &b.MaxLength, &b.MaxDraft, &b.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Berth{}, service.ErrNoRecord
	}
	return b, err
}

func (s *Store) ListBerths(ctx context.Context) ([]models.Berth, error) {
	rows, err := s.Pool.Query(ctx, `SELECT number, berth_type, max_length, max_draft, status FROM berths ORDER BY number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Berth
	for rows.Next() {
		var b models.Berth
		if err := rows.Scan(&b.Number, &b.BerthType, &b.MaxLength, &b.MaxDraft, &b.Status); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// --- operations ---

const operationColumns = `operation_id, vessel_id, operation_type, current_step, status, priority,
	step_1_completed, pilot_embarked, customs_clearance, immigration_clearance,
	port_health_clearance, manifest_submitted,
	step_2_completed, berth_assigned, berth_assigned_at, mooring_completed, safety_briefing_completed,
	step_3_completed, total_cargo_quantity, processed_cargo_quantity, assigned_team_id, assigned_equipment,
	step_4_completed, cargo_completion_confirmed, final_customs_clearance, port_dues_paid,
	departure_clearance_issued, pilot_disembarked,
	created_at, updated_at, completed_at`

func scanOperation(row pgx.Row) (models.Operation, error) {
	var op models.Operation
	err := row.Scan(
		&op.OperationID, &op.VesselID, &op.OperationType, &op.CurrentStep, &op.Status, &op.Priority,
		&op.Step1Completed, &op.PilotEmbarked, &op.CustomsClearance, &op.ImmigrationClearance,
		&op.PortHealthClearance, &op.ManifestSubmitted,
		&op.Step2Completed, &op.BerthAssigned, &op.BerthAssignedAt, &op.MooringCompleted, &op.SafetyBriefingCompleted,
		&op.Step3Completed, &op.TotalCargoQuantity, &op.ProcessedCargoQuantity, &op.AssignedTeamID, &op.AssignedEquipment,
		&op.Step4Completed, &op.CargoCompletionConfirmed, &op.FinalCustomsClearance, &op.PortDuesPaid,
		&op.DepartureClearanceIssued, &op.PilotDisembarked,
		&op.CreatedAt, &op.UpdatedAt, &op.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Operation{}, service.ErrNoRecord
	}
	return op, err
}

func operationValues(op models.Operation) []any {
	return []any{
		op.OperationID, op.VesselID, op.OperationType, op.CurrentStep, op.Status, op.Priority,
		op.Step1Completed, op.PilotEmbarked, op.CustomsClearance, op.ImmigrationClearance,
		op.PortHealthClearance, op.ManifestSubmitted,
		op.Step2Completed, op.BerthAssigned, op.BerthAssignedAt, op.MooringCompleted, op.SafetyBriefingCompleted,
		op.Step3Completed, op.TotalCargoQuantity, op.ProcessedCargoQuantity, op.AssignedTeamID, op.AssignedEquipment,
		op.Step4Completed, op.CargoCompletionConfirmed, op.FinalCustomsClearance, op.PortDuesPaid,
		op.DepartureClearanceIssued, op.PilotDisembarked,
		op.CreatedAt, op.UpdatedAt, op.CompletedAt,
	}
}

const saveOperationSQL = `
	UPDATE operations SET
		vessel_id = $2, operation_type = $3, current_step = $4, status = $5, priority = $6,
		step_1_completed = $7, pilot_embarked = $8, customs_clearance = $9,
		immigration_clearance = $10, port_health_clearance = $11, manifest_submitted = $12,
		step_2_completed = $13, berth_assigned = $14, berth_assigned_at = $15,
		mooring_completed = $16, safety_briefing_completed = $17,
		step_3_completed = $18, total_cargo_quantity = $19, processed_cargo_quantity = $20,
		assigned_team_id = $21, assigned_equipment = $22,
		step_4_completed = $23, cargo_completion_confirmed = $24, final_customs_clearance = $25,
		port_dues_paid = $26, departure_clearance_issued = $27, pilot_disembarked = $28,
		created_at = $29, updated_at = $30, completed_at = $31
	WHERE operation_id = $1
`

func (s *Store) CreateOperation(ctx context.Context, op models.Operation) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO operations (`+operationColumns+`)
		VALUES (`+placeholders(31)+`)
	`, operationValues(op)...)
	return err
}

func (s *Store) GetOperation(ctx context.Context, id string) (models.Operation, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+operationColumns+` FROM operations WHERE operation_id = $1`, id)
	return scanOperation(row)
}

func (s *Store) SaveOperation(ctx context.Context, op models.Operation) error {
	_, err := s.Pool.Exec(ctx, saveOperationSQL, operationValues(op)...)
	return err
}

// SaveOperationAndVessel writes both records in one transaction so berth
// and workflow mutations affecting the same entities stay consistent.
func (s *Store) SaveOperationAndVessel(ctx context.Context, op models.Operation, v models.Vessel) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, saveOperationSQL, operationValues(op)...); err != nil {
			return err
		}
		return saveVessel(ctx, tx, v)
	})
}

func (s *Store) ListOperations(ctx context.Context, vesselID, status string) ([]models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations`
	var args []any
	var wheres []string
	if vesselID != "" {
		args = append(args, vesselID)
		wheres = append(wheres, fmt.Sprintf("vessel_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, rows.Err()
}

func (s *Store) FindBerthHolder(ctx context.Context, berthNumber string) (*models.Operation, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT `+operationColumns+` FROM operations
		WHERE berth_assigned = $1 AND status = $2
		ORDER BY berth_assigned_at ASC
		LIMIT 1
	`, berthNumber, models.OpStatusInProgress)
	op, err := scanOperation(row)
	if errors.Is(err, service.ErrNoRecord) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// --- stevedore teams ---

const teamColumns = `id, name, leader, supervisor, status, zone_assignment,
	cargo_specialization, certified_equipment, shift_pattern, shift_start, shift_end,
	productivity_rating, safety_record, current_assignment, last_assignment,
	created_at, updated_at`

func scanTeam(row pgx.Row) (models.StevedoreTeam, error) {
	var t models.StevedoreTeam
	err := row.Scan(
		&t.ID, &t.Name, &t.Leader, &t.Supervisor, &t.Status, &t.ZoneAssignment,
		&t.CargoSpecialization, &t.CertifiedEquipment, &t.ShiftPattern, &t.ShiftStart, &t.ShiftEnd,
		&t.ProductivityRating, &t.SafetyRecord, &t.CurrentAssignment, &t.LastAssignment,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StevedoreTeam{}, service.ErrNoRecord
	}
	return t, err
}

func (s *Store) CreateTeam(ctx context.Context, t models.StevedoreTeam) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO stevedore_teams (`+teamColumns+`)
		VALUES (`+placeholders(17)+`)
	`, t.ID, t.Name, t.Leader, t.Supervisor, t.Status, t.ZoneAssignment,
		t.CargoSpecialization, t.CertifiedEquipment, t.ShiftPattern, t.ShiftStart, t.ShiftEnd,
		t.ProductivityRating, t.SafetyRecord, t.CurrentAssignment, t.LastAssignment,
		t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *Store) GetTeam(ctx context.Context, id string) (models.StevedoreTeam, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM stevedore_teams WHERE id = $1`, id)
	return scanTeam(row)
}

func (s *Store) SaveTeam(ctx context.Context, t models.StevedoreTeam) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE stevedore_teams SET
			name = $2, leader = $3, supervisor = $4, status = $5, zone_assignment = $6,
			cargo_specialization = $7, certified_equipment = $8, shift_pattern = $9,
			shift_start = $10, shift_end = $11, productivity_rating = $12, safety_record = $13,
			current_assignment = $14, last_assignment = $15, updated_at = $16
		WHERE id = $1
	`, t.ID, t.Name, t.Leader, t.Supervisor, t.Status, t.ZoneAssignment,
		t.CargoSpecialization, t.CertifiedEquipment, t.ShiftPattern,
		t.ShiftStart, t.ShiftEnd, t.ProductivityRating, t.SafetyRecord,
		t.CurrentAssignment, t.LastAssignment, t.UpdatedAt)
	return err
}

func (s *Store) ListTeams(ctx context.Context, status, zone string) ([]models.StevedoreTeam, error) {
	query := `SELECT ` + teamColumns + ` FROM stevedore_teams`
	var args []any
	var wheres []string
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if zone != "" {
		args = append(args, zone)
		wheres = append(wheres, fmt.Sprintf("(zone_assignment IS NULL OR zone_assignment = $%d)", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY productivity_rating DESC, safety_record DESC, id ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StevedoreTeam
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ClaimTeam is a compare-and-set on the available status; the WHERE
// clause guarantees two concurrent claims cannot both update the row.
func (s *Store) ClaimTeam(ctx context.Context, id, description string, at time.Time) (models.StevedoreTeam, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE stevedore_teams
		SET status = $2, current_assignment = $3, last_assignment = $4, updated_at = $4
		WHERE id = $1 AND status = $5
		RETURNING `+teamColumns+`
	`, id, models.TeamAssigned, description, at, models.TeamAvailable)
	t, err := scanTeam(row)
	if errors.Is(err, service.ErrNoRecord) {
		var exists bool
		if probeErr := s.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM stevedore_teams WHERE id = $1)`, id).Scan(&exists); probeErr != nil {
			return models.StevedoreTeam{}, probeErr
		}
		if !exists {
			return models.StevedoreTeam{}, service.ErrNoRecord
		}
		return models.StevedoreTeam{}, service.ErrNotClaimed
	}
	return t, err
}

// --- assignment ledger ---

const assignmentColumns = `id, operation_id, vessel_id, assignee_id, assignee_kind, role, status,
	scheduled_start, scheduled_end, actual_start, actual_end, created_at, updated_at`

func scanAssignment(row pgx.Row) (models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(
		&a.ID, &a.OperationID, &a.VesselID, &a.AssigneeID, &a.AssigneeKind, &a.Role, &a.Status,
		&a.ScheduledStart, &a.ScheduledEnd, &a.ActualStart, &a.ActualEnd, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Assignment{}, service.ErrNoRecord
	}
	return a, err
}

func (s *Store) CreateAssignment(ctx context.Context, a models.Assignment) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`)
		VALUES (`+placeholders(13)+`)
	`, a.ID, a.OperationID, a.VesselID, a.AssigneeID, a.AssigneeKind, a.Role, a.Status,
		a.ScheduledStart, a.ScheduledEnd, a.ActualStart, a.ActualEnd, a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *Store) GetAssignment(ctx context.Context, id string) (models.Assignment, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
	return scanAssignment(row)
}

func (s *Store) SaveAssignment(ctx context.Context, a models.Assignment) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE assignments SET
			operation_id = $2, vessel_id = $3, assignee_id = $4, assignee_kind = $5,
			role = $6, status = $7, scheduled_start = $8, scheduled_end = $9,
			actual_start = $10, actual_end = $11, updated_at = $12
		WHERE id = $1
	`, a.ID, a.OperationID, a.VesselID, a.AssigneeID, a.AssigneeKind,
		a.Role, a.Status, a.ScheduledStart, a.ScheduledEnd,
		a.ActualStart, a.ActualEnd, a.UpdatedAt)
	return err
}

func (s *Store) ListAssignments(ctx context.Context, operationID string) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments`
	var args []any
	if operationID != "" {
		args = append(args, operationID)
		query += " WHERE operation_id = $1"
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ",")
}
