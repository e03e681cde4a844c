package model

// AdminStats is the dashboard summary of the back office
type AdminStats struct {
	TotalUsers        int64   `json:"total_users"`
	TotalOrders       int64   `json:"total_orders"`
	TotalProducts     int64   `json:"total_products"`
	PendingOrders     int64   `json:"pending_orders"`
	ActiveUsers       int64   `json:"active_users"`
	NewUsersThisMonth int64   `json:"new_users_this_month"`
	AdminCount        int64   `json:"admin_count"`
	TotalRevenue      float64 `json:"total_revenue"`
}
