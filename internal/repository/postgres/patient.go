package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("patient %s: %w", id, model.ErrReferenceDataMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) UpdateInsurance(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET payer = $1, payer_id = $2, member_id = $3, subscriber = $4,
		    relationship_to_insured = $5, group_name = $6, plan_name = $7,
		    copay = $8, co_insurance_in_net = $9,
		    indiv_deductible_in_net = $10, indiv_deductible_in_net_remaining = $11,
		    fam_deductible_in_net = $12, fam_deductible_in_net_remaining = $13,
		    insurance_modified = $14, updated_at = $15
		WHERE id = $16
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.Payer,
		patient.PayerID,
		patient.MemberID,
		patient.Subscriber,
		patient.RelationshipToInsured,
		patient.GroupName,
		patient.PlanName,
		patient.Copay,
		patient.CoInsuranceInNet,
		patient.IndivDeductibleInNet,
		patient.IndivDeductibleInNetRemaining,
		patient.FamDeductibleInNet,
		patient.FamDeductibleInNetRemaining,
		patient.InsuranceModified,
		time.Now(),
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient insurance: %w", err)
	}
	return nil
}
