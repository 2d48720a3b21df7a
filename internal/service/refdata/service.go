package refdata

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/repository"
)

// maxSupervisorDepth bounds supervisor-chain resolution. Chains deeper than
// this indicate mis-provisioned clinician records.
const maxSupervisorDepth = 10

// Resolver serves reference data for claim generation. CPT charges and the
// template set change rarely, so they are cached for the process lifetime;
// payer mappings and clinicians are read through.
type Resolver struct {
	refRepo       repository.ReferenceRepository
	clinicianRepo repository.ClinicianRepository
	cache         *gocache.Cache
	templateVer   string
	logger        zerolog.Logger
}

func NewResolver(refRepo repository.ReferenceRepository, clinicianRepo repository.ClinicianRepository, templateVersion string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		refRepo:       refRepo,
		clinicianRepo: clinicianRepo,
		cache:         gocache.New(gocache.NoExpiration, 0),
		templateVer:   templateVersion,
		logger:        logger.With().Str("component", "refdata").Logger(),
	}
}

// CPTCharge returns the standard charge in cents for a procedure code.
func (r *Resolver) CPTCharge(ctx context.Context, code string) (int64, error) {
	cacheKey := "cpt:" + code
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(int64), nil
	}

	cpt, err := r.refRepo.GetCPTCode(ctx, code)
	if err != nil {
		return 0, err
	}

	r.cache.Set(cacheKey, cpt.ChargeCents, gocache.NoExpiration)
	return cpt.ChargeCents, nil
}

// Templates returns the claim template set for the configured format version.
func (r *Resolver) Templates(ctx context.Context) (*model.ClaimTemplates, error) {
	cacheKey := "templates:" + r.templateVer
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*model.ClaimTemplates), nil
	}

	templates, err := r.refRepo.GetTemplates(ctx, r.templateVer)
	if err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, templates, gocache.NoExpiration)
	return templates, nil
}

// InsuranceMapping resolves a payer identifier to its clearinghouse record.
func (r *Resolver) InsuranceMapping(ctx context.Context, payerID string) (*model.InsuranceMapping, error) {
	return r.refRepo.GetInsuranceMapping(ctx, payerID)
}

// BillingClinician resolves the clinician whose identity goes on the claim:
// the clinician itself, or the top of its supervisor chain. The walk keeps a
// visited set so cyclic supervisor data surfaces as a configuration error
// instead of looping.
func (r *Resolver) BillingClinician(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	visited := make(map[uuid.UUID]bool)

	current, err := r.clinicianRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	for depth := 0; current.SupervisorID != nil; depth++ {
		if depth >= maxSupervisorDepth || visited[current.ID] {
			return nil, fmt.Errorf("clinician %s: %w", id, model.ErrSupervisorCycle)
		}
		visited[current.ID] = true

		supervisor, err := r.clinicianRepo.Get(ctx, *current.SupervisorID)
		if err != nil {
			return nil, fmt.Errorf("supervisor of %s: %w", current.ID, err)
		}
		current = supervisor
	}

	return current, nil
}
