package rest

import (
	"net/http"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"
)

type AdminHandlers struct {
	overviewUC      usecases_port.GetAdminOverviewUseCasePort
	changeRoleUC    usecases_port.ChangeUserRoleUseCasePort
	createCompanyUC usecases_port.CreateCompanyUseCasePort
	listCompaniesUC usecases_port.ListCompaniesUseCasePort
	updateCompanyUC usecases_port.UpdateCompanyUseCasePort
	deleteCompanyUC usecases_port.DeleteCompanyUseCasePort
}

func NewAdminHandlers(
	overviewUC usecases_port.GetAdminOverviewUseCasePort,
	changeRoleUC usecases_port.ChangeUserRoleUseCasePort,
	createCompanyUC usecases_port.CreateCompanyUseCasePort,
	listCompaniesUC usecases_port.ListCompaniesUseCasePort,
	updateCompanyUC usecases_port.UpdateCompanyUseCasePort,
	deleteCompanyUC usecases_port.DeleteCompanyUseCasePort,
) *AdminHandlers {
	return &AdminHandlers{
		overviewUC:      overviewUC,
		changeRoleUC:    changeRoleUC,
		createCompanyUC: createCompanyUC,
		listCompaniesUC: listCompaniesUC,
		updateCompanyUC: updateCompanyUC,
		deleteCompanyUC: deleteCompanyUC,
	}
}

func (h *AdminHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AdminOverview"})

	overview, err := h.overviewUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, "Admin overview failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toAdminOverviewResponse(overview))
}

// ChangeRole обрабатывает PATCH /api/v1/admin/users/{id}/role
func (h *AdminHandlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ChangeUserRole"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	userID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid user id", err)
		return
	}

	var req ChangeRoleRequest
	if err := decodeJSON(r, contracts.ChangeRoleRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid change role request", err)
		return
	}

	if err := h.changeRoleUC.Execute(r.Context(), caller.UserID, userID, req.Role); err != nil {
		writeUseCaseError(w, logger, "Change user role failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) CreateCompany(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateCompany"})

	var req CompanyRequest
	if err := decodeJSON(r, contracts.CreateCompanyRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid create company request", err)
		return
	}

	onboarding, err := h.createCompanyUC.Execute(r.Context(), domain.CompanyRegistration{
		CompanyContactInput: req.toContactInput(),
		Password:            req.Password,
	})
	if err != nil {
		writeUseCaseError(w, logger, "Create company failed", err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, CompanyOnboardingResponse{
		Company: toCompanyResponse(onboarding.Company),
		Agent:   toAgentResponse(onboarding.Agent),
		User:    toProfileResponse(onboarding.Profile),
	})
}

func (h *AdminHandlers) ListCompanies(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListCompanies"})

	companies, err := h.listCompaniesUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, "List companies failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toCompanyList(companies))
}

func (h *AdminHandlers) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdateCompany"})
	companyID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid company id", err)
		return
	}

	var req CompanyRequest
	if err := decodeJSON(r, contracts.UpdateCompanyRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid update company request", err)
		return
	}

	company, err := h.updateCompanyUC.Execute(r.Context(), companyID, req.toContactInput())
	if err != nil {
		writeUseCaseError(w, logger, "Update company failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toCompanyResponse(company))
}

func (h *AdminHandlers) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteCompany"})
	companyID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid company id", err)
		return
	}

	if err := h.deleteCompanyUC.Execute(r.Context(), companyID); err != nil {
		writeUseCaseError(w, logger, "Delete company failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
