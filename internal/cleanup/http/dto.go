package http

type SweepResponse struct {
	ExpiredCount int      `json:"expired_count"`
	OrderIDs     []string `json:"order_ids"`
}

type StatsResponse struct {
	Total     int `json:"total"`
	Reserved  int `json:"reserved"`
	Confirmed int `json:"confirmed"`
	Expired   int `json:"expired"`
}
