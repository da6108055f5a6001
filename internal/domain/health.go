package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// OperationsMetrics is returned by GET /v1/admin/metrics.
type OperationsMetrics struct {
	FundRequestsCreated   int64   `json:"fundRequestsCreated"`
	FundRequestsApproved  int64   `json:"fundRequestsApproved"`
	FundRequestsRejected  int64   `json:"fundRequestsRejected"`
	Distributions         int64   `json:"distributions"`
	BalanceConflicts      int64   `json:"balanceConflicts"`
	CompensationFailures  int64   `json:"compensationFailures"`
	ExternalErrors        int64   `json:"externalErrors"`
	DashboardCacheHitRate float64 `json:"dashboardCacheHitRate"`
	Period                string  `json:"period"`
}
