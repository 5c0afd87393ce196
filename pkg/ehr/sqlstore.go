package ehr

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/medassist/medassist/pkg/errors"
	"github.com/medassist/medassist/pkg/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLStore is a Store backed by a relational database. It supports the
// sqlite3 and postgres drivers.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// NewSQLStore opens a database connection, runs any pending schema
// migrations, and returns a ready Store. driver must be "sqlite3" or
// "postgres".
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("%w: unsupported ehr driver %q", errors.ErrInvalidConfig, driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to ehr database")
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "failed to load ehr migrations")
	}

	var m *migrate.Migrate
	switch s.driver {
	case "sqlite3":
		d, err := migratesqlite.WithInstance(s.db.DB, &migratesqlite.Config{})
		if err != nil {
			return errors.Wrap(err, "failed to prepare sqlite migration driver")
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite3", d)
		if err != nil {
			return errors.Wrap(err, "failed to initialize migrations")
		}
	case "postgres":
		d, err := migratepg.WithInstance(s.db.DB, &migratepg.Config{})
		if err != nil {
			return errors.Wrap(err, "failed to prepare postgres migration driver")
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", d)
		if err != nil {
			return errors.Wrap(err, "failed to initialize migrations")
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "failed to apply ehr migrations")
	}
	return nil
}

// GetPatient retrieves a patient's complete record: demographics, active
// conditions, active medications formatted as "name dosage frequency",
// and the most recent vitals snapshot.
func (s *SQLStore) GetPatient(ctx context.Context, patientID string) (*PatientRecord, error) {
	var rec PatientRecord
	query := s.db.Rebind(`SELECT id, name, age, gender, blood_type, allergies FROM patients WHERE id = ?`)
	if err := s.db.GetContext(ctx, &rec, query, patientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrPatientNotFound
		}
		return nil, errors.Wrap(err, "failed to query patient")
	}

	query = s.db.Rebind(`SELECT condition_name FROM conditions WHERE patient_id = ? AND status = 'active' ORDER BY id`)
	if err := s.db.SelectContext(ctx, &rec.Conditions, query, patientID); err != nil {
		return nil, errors.Wrap(err, "failed to query conditions")
	}

	var meds []struct {
		Name      string         `db:"medication_name"`
		Dosage    string         `db:"dosage"`
		Frequency sql.NullString `db:"frequency"`
	}
	query = s.db.Rebind(`SELECT medication_name, dosage, frequency FROM medications WHERE patient_id = ? AND status = 'active' ORDER BY id`)
	if err := s.db.SelectContext(ctx, &meds, query, patientID); err != nil {
		return nil, errors.Wrap(err, "failed to query medications")
	}
	for _, m := range meds {
		entry := m.Name + " " + m.Dosage
		if m.Frequency.Valid && m.Frequency.String != "" {
			entry += " " + m.Frequency.String
		}
		rec.Medications = append(rec.Medications, entry)
	}

	var v Vitals
	query = s.db.Rebind(`SELECT blood_pressure, heart_rate, temperature, spo2, weight, recorded_date
		FROM vitals WHERE patient_id = ? ORDER BY recorded_date DESC LIMIT 1`)
	err := s.db.GetContext(ctx, &v, query, patientID)
	switch err {
	case nil:
		rec.Vitals = &v
	case sql.ErrNoRows:
		// no vitals recorded yet
	default:
		return nil, errors.Wrap(err, "failed to query vitals")
	}

	return &rec, nil
}

// GetHistory retrieves a patient's visit history, most recent first.
func (s *SQLStore) GetHistory(ctx context.Context, patientID string) ([]Visit, error) {
	var visits []Visit
	query := s.db.Rebind(`SELECT visit_date, reason, summary, provider
		FROM visit_history WHERE patient_id = ? ORDER BY visit_date DESC`)
	if err := s.db.SelectContext(ctx, &visits, query, patientID); err != nil {
		return nil, errors.Wrap(err, "failed to query visit history")
	}
	if len(visits) == 0 {
		return nil, errors.ErrPatientNotFound
	}
	return visits, nil
}

// Seed inserts the sample patient dataset if the patients table is empty.
// It is safe to call on every startup.
func (s *SQLStore) Seed(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM patients`); err != nil {
		return errors.Wrap(err, "failed to check seed state")
	}
	if count > 0 {
		log.DebugContext(ctx, "ehr store already populated, skipping seed", "patients", count)
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin seed transaction")
	}
	defer tx.Rollback()

	exec := func(query string, args ...interface{}) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		return err
	}

	patients := []struct {
		id, name            string
		age                 int
		gender, blood, alrg string
	}{
		{"P001", "Sarah Johnson", 62, "Female", "A+", "Penicillin"},
		{"P002", "Michael Chen", 54, "Male", "O+", "None"},
		{"P003", "Emily Rodriguez", 38, "Female", "B-", "Sulfa drugs"},
		{"12345", "John Doe", 45, "Male", "AB+", "None"},
	}
	for _, p := range patients {
		if err := exec(`INSERT INTO patients (id, name, age, gender, blood_type, allergies) VALUES (?, ?, ?, ?, ?, ?)`,
			p.id, p.name, p.age, p.gender, p.blood, p.alrg); err != nil {
			return errors.Wrap(err, "failed to seed patient %s", p.id)
		}
	}

	conditions := []struct {
		patient, name, diagnosed string
	}{
		{"P001", "Hypertension", "2018-03-12"},
		{"P001", "Type 2 Diabetes", "2019-07-25"},
		{"P001", "Chronic Kidney Disease Stage 3", "2022-11-02"},
		{"P002", "Asthma", "2005-06-18"},
		{"P002", "Hyperlipidemia", "2017-02-09"},
		{"P003", "Migraine", "2015-09-30"},
		{"P003", "Anxiety Disorder", "2020-01-14"},
		{"12345", "Hypertension", "2016-05-20"},
		{"12345", "Type 2 Diabetes", "2018-10-08"},
	}
	for _, c := range conditions {
		if err := exec(`INSERT INTO conditions (patient_id, condition_name, diagnosed_date, status) VALUES (?, ?, ?, 'active')`,
			c.patient, c.name, c.diagnosed); err != nil {
			return errors.Wrap(err, "failed to seed conditions for %s", c.patient)
		}
	}

	medications := []struct {
		patient, name, dosage, frequency string
	}{
		{"P001", "Lisinopril", "10mg", "Once daily"},
		{"P001", "Metformin", "1000mg", "Twice daily"},
		{"P001", "Atorvastatin", "40mg", "Once daily at bedtime"},
		{"P002", "Albuterol", "90mcg", "As needed"},
		{"P002", "Rosuvastatin", "20mg", "Once daily"},
		{"P003", "Sumatriptan", "100mg", "As needed for migraine"},
		{"P003", "Sertraline", "50mg", "Once daily"},
		{"12345", "Lisinopril", "20mg", "Once daily"},
		{"12345", "Metformin", "500mg", "Twice daily"},
	}
	for _, m := range medications {
		if err := exec(`INSERT INTO medications (patient_id, medication_name, dosage, frequency, status) VALUES (?, ?, ?, ?, 'active')`,
			m.patient, m.name, m.dosage, m.frequency); err != nil {
			return errors.Wrap(err, "failed to seed medications for %s", m.patient)
		}
	}

	vitals := []struct {
		patient, date, bp string
		hr                int
		temp              float64
		spo2              int
		weight            float64
	}{
		{"P001", "2025-10-28", "142/88", 76, 98.6, 97, 165.2},
		{"P001", "2025-09-30", "138/86", 74, 98.4, 97, 166.0},
		{"P002", "2025-10-25", "128/82", 68, 98.2, 99, 178.5},
		{"P002", "2025-09-20", "130/84", 70, 98.3, 98, 179.1},
		{"P003", "2025-10-20", "118/76", 74, 98.1, 99, 132.4},
		{"12345", "2025-10-15", "135/85", 78, 98.5, 96, 185.0},
	}
	for _, v := range vitals {
		if err := exec(`INSERT INTO vitals (patient_id, recorded_date, blood_pressure, heart_rate, temperature, spo2, weight) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			v.patient, v.date, v.bp, v.hr, v.temp, v.spo2, v.weight); err != nil {
			return errors.Wrap(err, "failed to seed vitals for %s", v.patient)
		}
	}

	visits := []struct {
		patient, date, reason, summary, provider string
	}{
		{"P001", "2025-10-15", "Diabetes follow-up", "HbA1c 7.8%, up from 7.4%. Discussed diet adherence. Metformin continued at current dose.", "Dr. Smith"},
		{"P001", "2025-08-02", "Hypertension check", "BP trending high at home readings. Lisinopril increased to 10mg.", "Dr. Smith"},
		{"P002", "2025-10-10", "Asthma review", "Well controlled on current regimen. Peak flow stable. Refilled Albuterol.", "Dr. Patel"},
		{"P003", "2025-09-22", "Migraine consultation", "Frequency increased to 3 per month. Discussed triggers and prophylaxis options.", "Dr. Nguyen"},
		{"12345", "2025-10-01", "Annual physical", "Overall stable. Labs ordered. Continue current medications.", "Dr. Adams"},
	}
	for _, v := range visits {
		if err := exec(`INSERT INTO visit_history (patient_id, visit_date, reason, summary, provider) VALUES (?, ?, ?, ?, ?)`,
			v.patient, v.date, v.reason, v.summary, v.provider); err != nil {
			return errors.Wrap(err, "failed to seed visit history for %s", v.patient)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit seed transaction")
	}
	log.InfoContext(ctx, "seeded ehr store with sample patients", "patients", len(patients))
	return nil
}
