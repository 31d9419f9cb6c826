package monitor

type HttpRequestLabels struct {
	Status string
	Route  string
	Method string
}

type DrainLabels struct {
	Chain    string
	Currency string
}

func (d DrainLabels) ToMap() map[string]string {
	return map[string]string{
		"chain":    d.Chain,
		"currency": d.Currency,
	}
}

var DrainLabelNames = []string{"chain", "currency"}
