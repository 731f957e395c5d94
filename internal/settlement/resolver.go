package settlement

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/config"
	"github.com/revenue-collection-core/internal/domain/shared"
)

// BeneficiaryResolver maps roles to concrete beneficiary accounts. Government,
// platform and consultant accounts are well-known and fixed by configuration;
// collector and association resolve per transaction.
type BeneficiaryResolver struct {
	government uuid.UUID
	platform   uuid.UUID
	consultant uuid.UUID
}

// NewBeneficiaryResolver parses the configured well-known account IDs.
// Unset accounts stay nil and simply cannot satisfy their role.
func NewBeneficiaryResolver(cfg *config.BeneficiariesConfig) (*BeneficiaryResolver, error) {
	r := &BeneficiaryResolver{}

	parse := func(name, value string) (uuid.UUID, error) {
		if value == "" {
			return uuid.Nil, nil
		}
		id, err := uuid.Parse(value)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid %s beneficiary account ID %q: %w", name, value, err)
		}
		return id, nil
	}

	var err error
	if r.government, err = parse("government", cfg.GovernmentAccountID); err != nil {
		return nil, err
	}
	if r.platform, err = parse("platform", cfg.PlatformAccountID); err != nil {
		return nil, err
	}
	if r.consultant, err = parse("consultant", cfg.ConsultantAccountID); err != nil {
		return nil, err
	}

	return r, nil
}

// Resolve builds the role-to-account map for one transaction. Nil entries
// are omitted so the distribution engine reports the missing role.
func (r *BeneficiaryResolver) Resolve(collector, association uuid.UUID) map[shared.BeneficiaryRole]uuid.UUID {
	accounts := make(map[shared.BeneficiaryRole]uuid.UUID, 5)
	if r.government != uuid.Nil {
		accounts[shared.RoleGovernment] = r.government
	}
	if r.platform != uuid.Nil {
		accounts[shared.RolePlatform] = r.platform
	}
	if r.consultant != uuid.Nil {
		accounts[shared.RoleConsultant] = r.consultant
	}
	if collector != uuid.Nil {
		accounts[shared.RoleCollector] = collector
	}
	if association != uuid.Nil {
		accounts[shared.RoleAssociation] = association
	}
	return accounts
}
