package domain

import "github.com/google/uuid"

// IdentityKind - вариант результата разрешения личности агента.
type IdentityKind int

const (
	IdentityIneligible IdentityKind = iota
	IdentityHasAgent
	IdentityCompanyNoAgent
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityHasAgent:
		return "has_agent"
	case IdentityCompanyNoAgent:
		return "eligible_company_no_agent"
	default:
		return "ineligible"
	}
}

// Identity - тегированный результат: HasAgent(agentID), EligibleCompanyNoAgent(companyID) или Ineligible.
// CompanyID у HasAgent заполнен, только если агент был только что создан из компании.
type Identity struct {
	Kind      IdentityKind
	AgentID   uuid.UUID
	CompanyID uuid.UUID
}

func HasAgent(agentID uuid.UUID) Identity {
	return Identity{Kind: IdentityHasAgent, AgentID: agentID}
}

func ProvisionedAgent(agentID, companyID uuid.UUID) Identity {
	return Identity{Kind: IdentityHasAgent, AgentID: agentID, CompanyID: companyID}
}

func EligibleCompanyNoAgent(companyID uuid.UUID) Identity {
	return Identity{Kind: IdentityCompanyNoAgent, CompanyID: companyID}
}

func Ineligible() Identity {
	return Identity{Kind: IdentityIneligible}
}

// CanOwnListings - true для HasAgent и EligibleCompanyNoAgent.
func (i Identity) CanOwnListings() bool {
	return i.Kind != IdentityIneligible
}

// OwnerRefs возвращает значения agent_id и company_id для нового объявления.
func (i Identity) OwnerRefs() (agentID, companyID *uuid.UUID) {
	switch i.Kind {
	case IdentityHasAgent:
		a := i.AgentID
		agentID = &a
		if i.CompanyID != uuid.Nil {
			c := i.CompanyID
			companyID = &c
		}
	case IdentityCompanyNoAgent:
		c := i.CompanyID
		companyID = &c
	}
	return agentID, companyID
}
