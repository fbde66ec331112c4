package db

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS vessels (
	id                     TEXT PRIMARY KEY,
	name                   TEXT NOT NULL,
	imo_number             TEXT NOT NULL DEFAULT '',
	call_sign              TEXT NOT NULL DEFAULT '',
	vessel_type            TEXT NOT NULL DEFAULT '',
	length_overall         DOUBLE PRECISION NOT NULL DEFAULT 0,
	draft                  DOUBLE PRECISION NOT NULL DEFAULT 0,
	status                 TEXT NOT NULL,
	current_berth          TEXT,
	brv_target             INTEGER NOT NULL DEFAULT 0,
	brv_completed          INTEGER NOT NULL DEFAULT 0,
	zee_target             INTEGER NOT NULL DEFAULT 0,
	zee_completed          INTEGER NOT NULL DEFAULT 0,
	sou_target             INTEGER NOT NULL DEFAULT 0,
	sou_completed          INTEGER NOT NULL DEFAULT 0,
	total_discharge_target INTEGER NOT NULL DEFAULT 0,
	total_discharged       INTEGER NOT NULL DEFAULT 0,
	eta                    TIMESTAMPTZ,
	arrived_at             TIMESTAMPTZ,
	departed_at            TIMESTAMPTZ,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS berths (
	number     TEXT PRIMARY KEY,
	berth_type TEXT NOT NULL DEFAULT 'general',
	max_length DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_draft  DOUBLE PRECISION NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS operations (
	operation_id               TEXT PRIMARY KEY,
	vessel_id                  TEXT NOT NULL REFERENCES vessels(id),
	operation_type             TEXT NOT NULL,
	current_step               INTEGER NOT NULL DEFAULT 1,
	status                     TEXT NOT NULL,
	priority                   TEXT NOT NULL DEFAULT 'medium',
	step_1_completed           BOOLEAN NOT NULL DEFAULT FALSE,
	pilot_embarked             BOOLEAN NOT NULL DEFAULT FALSE,
	customs_clearance          BOOLEAN NOT NULL DEFAULT FALSE,
	immigration_clearance      BOOLEAN NOT NULL DEFAULT FALSE,
	port_health_clearance      BOOLEAN NOT NULL DEFAULT FALSE,
	manifest_submitted         BOOLEAN NOT NULL DEFAULT FALSE,
	step_2_completed           BOOLEAN NOT NULL DEFAULT FALSE,
	berth_assigned             TEXT,
	berth_assigned_at          TIMESTAMPTZ,
	mooring_completed          BOOLEAN NOT NULL DEFAULT FALSE,
	safety_briefing_completed  BOOLEAN NOT NULL DEFAULT FALSE,
	step_3_completed           BOOLEAN NOT NULL DEFAULT FALSE,
	total_cargo_quantity       INTEGER,
	processed_cargo_quantity   INTEGER,
	assigned_team_id           TEXT,
	assigned_equipment         TEXT[],
	step_4_completed           BOOLEAN NOT NULL DEFAULT FALSE,
	cargo_completion_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
	final_customs_clearance    BOOLEAN NOT NULL DEFAULT FALSE,
	port_dues_paid             BOOLEAN NOT NULL DEFAULT FALSE,
	departure_clearance_issued BOOLEAN NOT NULL DEFAULT FALSE,
	pilot_disembarked          BOOLEAN NOT NULL DEFAULT FALSE,
	created_at                 TIMESTAMPTZ NOT NULL,
	updated_at                 TIMESTAMPTZ NOT NULL,
	completed_at               TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS operations_berth_idx ON operations (berth_assigned) WHERE status = 'in_progress';
CREATE INDEX IF NOT EXISTS operations_vessel_idx ON operations (vessel_id);

CREATE TABLE IF NOT EXISTS stevedore_teams (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	leader               TEXT NOT NULL DEFAULT '',
	supervisor           TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL,
	zone_assignment      TEXT,
	cargo_specialization TEXT[] NOT NULL DEFAULT '{}',
	certified_equipment  TEXT[] NOT NULL DEFAULT '{}',
	shift_pattern        TEXT NOT NULL DEFAULT 'day',
	shift_start          TEXT,
	shift_end            TEXT,
	productivity_rating  DOUBLE PRECISION NOT NULL DEFAULT 0,
	safety_record        DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_assignment   TEXT,
	last_assignment      TIMESTAMPTZ,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id              TEXT PRIMARY KEY,
	operation_id    TEXT NOT NULL REFERENCES operations(operation_id),
	vessel_id       TEXT NOT NULL,
	assignee_id     TEXT NOT NULL,
	assignee_kind   TEXT NOT NULL,
	role            TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	scheduled_start TIMESTAMPTZ,
	scheduled_end   TIMESTAMPTZ,
	actual_start    TIMESTAMPTZ,
	actual_end      TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS assignments_operation_idx ON assignments (operation_id);
`

// EnsureSchema creates the tables on startup. Statements are idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

// SeedBerths inserts the configured berth set, leaving existing rows
// untouched so operator changes to berth status survive restarts.
func (s *Store) SeedBerths(ctx context.Context, numbers []string) error {
	for _, number := range numbers {
		if _, err := s.Pool.Exec(ctx, `
			INSERT INTO berths (number, berth_type, status)
			VALUES ($1, 'general', 'active')
			ON CONFLICT (number) DO NOTHING
		`, number); err != nil {
			return err
		}
	}
	return nil
}
