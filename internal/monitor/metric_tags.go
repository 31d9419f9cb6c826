package monitor

type MetricTag string

const (
	HttpRequestDurationTag MetricTag = "requests_duration_seconds"
	// Onboarding:
	CustomersCreatedCounterTag            MetricTag = "customers_created_counter"
	LiquidationAddressesCreatedCounterTag MetricTag = "liquidation_addresses_created_counter"
	// Drain reconciliation:
	DrainsDetectedCounterTag       MetricTag = "drains_detected_counter"
	DrainReconciliationDurationTag MetricTag = "drain_reconciliation_duration_seconds"
)

func (m MetricTag) ListAll() []MetricTag {
	return []MetricTag{
		HttpRequestDurationTag,
		CustomersCreatedCounterTag,
		LiquidationAddressesCreatedCounterTag,
		DrainsDetectedCounterTag,
		DrainReconciliationDurationTag,
	}
}
