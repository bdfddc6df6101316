package rest

import (
	"net/http"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"
)

// AgentHandlers обслуживают кабинеты пользователя и агента и публичную страницу агента.
type AgentHandlers struct {
	identityUC      usecases_port.ResolveIdentityUseCasePort
	userDashboardUC usecases_port.GetUserDashboardUseCasePort
	dashboardUC     usecases_port.GetAgentDashboardUseCasePort
	profileUC       usecases_port.GetAgentProfileUseCasePort
	upsertProfileUC usecases_port.UpsertAgentProfileUseCasePort
	pageUC          usecases_port.GetAgentPageUseCasePort
}

func NewAgentHandlers(
	identityUC usecases_port.ResolveIdentityUseCasePort,
	userDashboardUC usecases_port.GetUserDashboardUseCasePort,
	dashboardUC usecases_port.GetAgentDashboardUseCasePort,
	profileUC usecases_port.GetAgentProfileUseCasePort,
	upsertProfileUC usecases_port.UpsertAgentProfileUseCasePort,
	pageUC usecases_port.GetAgentPageUseCasePort,
) *AgentHandlers {
	return &AgentHandlers{
		identityUC:      identityUC,
		userDashboardUC: userDashboardUC,
		dashboardUC:     dashboardUC,
		profileUC:       profileUC,
		upsertProfileUC: upsertProfileUC,
		pageUC:          pageUC,
	}
}

// Identity обрабатывает GET /api/v1/agent/identity. Может создать агента для компании.
func (h *AgentHandlers) Identity(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ResolveIdentity"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	identity, err := h.identityUC.Execute(r.Context(), caller.UserID)
	if err != nil {
		writeUseCaseError(w, logger, "Resolve identity failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toIdentityResponse(identity))
}

func (h *AgentHandlers) UserDashboard(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UserDashboard"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	dashboard, err := h.userDashboardUC.Execute(r.Context(), caller.UserID)
	if err != nil {
		writeUseCaseError(w, logger, "User dashboard failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toUserDashboardResponse(dashboard))
}

func (h *AgentHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AgentDashboard"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	dashboard, err := h.dashboardUC.Execute(r.Context(), caller.UserID)
	if err != nil {
		writeUseCaseError(w, logger, "Agent dashboard failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, AgentDashboardResponse{
		Identity:   toIdentityResponse(dashboard.Identity),
		Agent:      toAgentResponse(dashboard.Agent),
		Company:    toCompanyResponse(dashboard.Company),
		Properties: toPropertyList(dashboard.Properties),
		Stats: ListingStatsResponse{
			Total:     dashboard.Stats.Total,
			Published: dashboard.Stats.Published,
			Draft:     dashboard.Stats.Draft,
			Views:     dashboard.Stats.Views,
		},
	})
}

func (h *AgentHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetAgentProfile"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	agent, err := h.profileUC.Execute(r.Context(), caller.UserID)
	if err != nil {
		writeUseCaseError(w, logger, "Get agent profile failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toAgentResponse(agent))
}

func (h *AgentHandlers) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpsertAgentProfile"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	var req AgentProfileRequest
	if err := decodeJSON(r, contracts.AgentProfileRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid agent profile request", err)
		return
	}

	agent, err := h.upsertProfileUC.Execute(r.Context(), caller.UserID, domain.AgentProfileInput{
		CompanyName: req.CompanyName,
		Bio:         req.Bio,
		Phone:       req.Phone,
		Website:     req.Website,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		writeUseCaseError(w, logger, "Upsert agent profile failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toAgentResponse(agent))
}

// AgentPage обрабатывает GET /api/v1/agents/{id}
func (h *AgentHandlers) AgentPage(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AgentPage"})
	agentID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid agent id", err)
		return
	}

	page, err := h.pageUC.Execute(r.Context(), agentID)
	if err != nil {
		writeUseCaseError(w, logger, "Agent page failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, AgentPageResponse{
		Agent:      toAgentResponse(page.Agent),
		Properties: toPropertyList(page.Properties),
	})
}
